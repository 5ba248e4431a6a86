// Package provider defines the collaborator contracts consumed by the
// pipeline orchestrator. Each collaborator is a single async operation
// behind a small interface; concrete implementations live in the
// subpackages (anthropic, openai, palette, webstock, clipdrop, assemble).
// The package also owns the process-wide fallbacks substituted when a
// degradable collaborator fails: the themed default palettes and the local
// sound set.
package provider
