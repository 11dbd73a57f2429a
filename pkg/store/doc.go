// Package store provides the in-memory resource store for the Lattice control
// plane: users, organizations, memberships, projects, teams, invitations,
// activity, connectors and sync jobs.
//
// # Identity and ordering
//
// Every entity is assigned a ULID on insert. ULIDs are unique and
// lexicographically sortable, so identity order doubles as creation order for
// tie-breaking. Entities also carry created/updated timestamps and a
// monotonically increasing revision; updates may be made conditional on an
// expected revision to surface lost-update conflicts.
//
// # Concurrency
//
// The store is an explicitly constructed object with no hidden globals. It
// performs no internal locking: the dispatcher serializes mutating requests
// behind a single writer lock and runs read-only requests under a shared
// read lock. Accessors return copies, so a snapshot taken under the read
// lock stays consistent after the lock is released.
//
// # Removal semantics
//
// Remove is irreversible. Archiving a project is a status mutation, not a
// removal, and is reversed by restore.
package store
