// Package session tracks the authenticated principal and device sessions for
// the Lattice control plane.
//
// The registry holds zero or one active principal per logical session plus a
// registry of device sessions used for "active sessions" listing and
// revocation. Login and registration set the active principal, logout clears
// it, and refresh rotates the active session's token while preserving its
// identity. Revoking a session that belongs to another user is an
// authorization violation, not a not-found.
package session
