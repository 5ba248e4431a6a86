// Package pipeline drives a session through the generation states, calling
// one collaborator per step and writing results into the session's slots.
// The step sequence per mechanic is declared as data (an ordered list of
// step descriptors), so a new mechanic is added by declaring a new plan.
//
// The orchestrator preserves the failure taxonomy exactly: fatal steps
// (analysis, code generation, assembly, and visual asset generation for
// asset-bearing mechanics) move the session to StateError and stop the run;
// degradable steps (reference lookup, palette extraction, background
// removal, sound lookup) fall back to a default and continue.
package pipeline
