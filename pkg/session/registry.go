package session

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoActiveSession is returned when an operation requires an
	// authenticated principal and none is set
	ErrNoActiveSession = errors.New("no active session")
	// ErrSessionNotFound is returned when a session identity does not resolve
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotSessionOwner is returned when a caller attempts to revoke a
	// session belonging to another user
	ErrNotSessionOwner = errors.New("session belongs to another user")
)

// Session represents an authenticated device session
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token,omitempty"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

func (s *Session) clone() *Session {
	c := *s
	return &c
}

// Registry tracks the active principal and the set of device sessions
type Registry struct {
	activeID string
	sessions map[string]*Session
	nowFn    func() time.Time
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		nowFn:    time.Now,
	}
}

// Login creates a device session for the user and makes it the active
// principal
func (r *Registry) Login(userID, device string) *Session {
	now := r.nowFn().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     uuid.NewString(),
		Device:    device,
		CreatedAt: now,
		LastSeen:  now,
	}
	r.sessions[s.ID] = s
	r.activeID = s.ID
	return s.clone()
}

// Logout clears the active principal and removes its device session
func (r *Registry) Logout() {
	if r.activeID != "" {
		delete(r.sessions, r.activeID)
		r.activeID = ""
	}
}

// ActiveUserID returns the user ID of the active principal, or "" when
// unauthenticated
func (r *Registry) ActiveUserID() string {
	if s, ok := r.sessions[r.activeID]; ok {
		return s.UserID
	}
	return ""
}

// Active returns the active session, or an error when unauthenticated
func (r *Registry) Active() (*Session, error) {
	s, ok := r.sessions[r.activeID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s.clone(), nil
}

// Refresh rotates the active session's token, preserving its identity
func (r *Registry) Refresh() (*Session, error) {
	s, ok := r.sessions[r.activeID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	s.Token = uuid.NewString()
	s.LastSeen = r.nowFn().UTC()
	return s.clone(), nil
}

// List returns the user's device sessions ordered by creation. Tokens are
// redacted: a session listing must never disclose credentials.
func (r *Registry) List(userID string) []*Session {
	var out []*Session
	for _, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		c := s.clone()
		c.Token = ""
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Revoke removes a session by identity. The session must belong to the
// caller: cross-session revocation fails with ErrNotSessionOwner.
func (r *Registry) Revoke(callerUserID, sessionID string) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if s.UserID != callerUserID {
		return ErrNotSessionOwner
	}
	delete(r.sessions, sessionID)
	if r.activeID == sessionID {
		r.activeID = ""
	}
	return nil
}
