package core

import "errors"

var (
	// ErrNotFound is returned when a session id is unknown, expired or deleted.
	ErrNotFound = errors.New("session not found")

	// ErrPipelineActive is returned when a second pipeline run is requested
	// against a session that already owns an active or finished run.
	ErrPipelineActive = errors.New("pipeline already running for session")

	// ErrTerminalState is returned when a transition is attempted out of
	// StateComplete or StateError.
	ErrTerminalState = errors.New("session is in a terminal state")

	// ErrInvalidTransition is returned when a transition is not in the legal
	// transition table.
	ErrInvalidTransition = errors.New("illegal state transition")

	// ErrProgressRegression is returned when a transition carries a progress
	// value below the session's current progress. Regressions are programming
	// defects and are rejected, never silently corrected.
	ErrProgressRegression = errors.New("progress must not decrease")

	// ErrInvalidUserID is returned when a user identifier cannot be
	// normalized to its canonical form.
	ErrInvalidUserID = errors.New("invalid user id")
)
