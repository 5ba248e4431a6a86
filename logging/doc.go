// Package logging provides a small abstraction over slog so the rest of
// PlayForge depends on a minimal Logger interface while callers can plug in
// any structured logger. ForgeLogger adds contextual helpers (component,
// session) plus domain-specific helpers for pipeline steps and provider
// calls.
package logging
