// Package api implements the path-routed CRUD dispatcher and domain handlers
// for the Lattice control plane.
//
// A request is an abstract (method, path, body) triple; there is no network
// transport. The dispatcher resolves the path against an explicit route
// table, authorizes the active principal through the rbac checker, invokes
// the matching domain handler against the resource store and returns a typed
// response envelope or a typed failure. Failures are data: nothing escapes
// the dispatch boundary as a panic.
//
// # Routing
//
// The first path segment selects a resource family, subsequent literal
// segments select nested sub-resources and capture segments bind entity
// identities. Literal matches always outrank captures, and a segment that
// looks like an identity (ULID, UUID or numeric) never matches a literal
// keyword. Unresolved identities are deterministic not-found failures; the
// sync-job polling endpoint is the one idempotent-by-design exception and
// synthesizes an in-progress placeholder instead.
//
// # Concurrency
//
// Mutating routes are serialized behind a single writer lock; read-only
// routes run concurrently under a shared read lock and observe
// snapshot-consistent state.
package api
