// Package core defines the domain model of the PlayForge generation
// pipeline: the Session record tracking one generation request end-to-end,
// the pipeline state machine with its progress policy, the per-session
// listener mechanism, and the shared result types produced by the
// collaborator steps (analysis, palette, asset bundle, artifact).
//
// Everything in this package is safe for concurrent use unless noted
// otherwise. Higher layers (session registry, pipeline orchestrator,
// providers) build on these types without adding their own copies.
package core
