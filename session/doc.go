// Package session provides the process-wide Registry mapping session ids to
// live core.Session instances. The Registry owns creation, lookup, deletion,
// per-user quota enforcement and time-based expiry; it is the only shared
// mutable structure between concurrently running pipelines.
package session
