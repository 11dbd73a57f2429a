package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/pkg/store"
)

func TestJanitorExpiresInvitations(t *testing.T) {
	f := newProjectFixture(t)

	resp := f.mustDo("POST", "/projects/"+f.project.ID+"/invitations", map[string]interface{}{
		"email":     "slow@acme.test",
		"expiresIn": "1ms",
	})
	inv := resp.Data.(*store.ProjectInvitation)

	janitor, err := NewJanitor(f.srv, "@every 1m", nil)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	janitor.RunOnce()

	expired, getErr := f.srv.store.GetInvitation(inv.ID)
	require.NoError(t, getErr)
	assert.Equal(t, store.InvitationExpired, expired.Status)

	// An expired invitation cannot be accepted.
	f.register("slow@acme.test", "Slow", "Slow Personal")
	_, apiErr := f.do("POST", "/projects/"+f.project.ID+"/invitations/"+inv.ID+"/accept", nil)
	require.NotNil(t, apiErr)
	assert.Equal(t, CodeConflict, apiErr.Code)
}

func TestJanitorRejectsBadSchedule(t *testing.T) {
	f := newProjectFixture(t)
	_, err := NewJanitor(f.srv, "not a schedule", nil)
	require.Error(t, err)
}

func TestJanitorStartStop(t *testing.T) {
	f := newProjectFixture(t)
	janitor, err := NewJanitor(f.srv, "@every 1h", nil)
	require.NoError(t, err)
	janitor.Start()
	janitor.Stop()
}
