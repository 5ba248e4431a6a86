package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/playforge/playforge/logging"
)

// Session tracks one generation request's lifecycle: current state,
// monotonically increasing progress, accumulated results and subscriber
// list. It is safe for concurrent access.
//
// Contract:
//   - progress never decreases; a transition carrying a lower value fails
//     with ErrProgressRegression
//   - StateComplete and StateError are terminal
//   - every SetState call dispatches all registered listeners synchronously,
//     in registration order, before returning
//   - mutations on a closed (deleted) session are silent no-ops.
type Session struct {
	ID        string
	UserID    UserID
	CreatedAt time.Time

	mu        sync.Mutex
	emitMu    sync.Mutex
	state     State
	progress  int
	message   string
	errText   string
	analysis  *Analysis
	palette   *Palette
	assets    *AssetBundle
	updatedAt time.Time
	running   bool
	closed    bool
	listeners *listenerSet
	logger    logging.Logger
}

// NewSession creates a session in StateIdle with progress 0 and a fresh id.
func NewSession(userID UserID, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	now := time.Now()
	return &Session{
		ID:        NewID(),
		UserID:    userID,
		CreatedAt: now,
		updatedAt: now,
		state:     StateIdle,
		message:   StateMessage(StateIdle, ""),
		listeners: newListenerSet(),
		logger:    logger,
	}
}

// TransitionOptions carries the optional parameters of a state transition.
type TransitionOptions struct {
	progress    int
	hasProgress bool
	message     string
	errText     string
}

// WithProgress sets an explicit progress value for the transition. Values
// below the session's current progress are rejected.
func WithProgress(p int) func(o *TransitionOptions) {
	return func(o *TransitionOptions) { o.progress = p; o.hasProgress = true }
}

// WithMessage overrides the default status message derived from the state.
func WithMessage(msg string) func(o *TransitionOptions) {
	return func(o *TransitionOptions) { o.message = msg }
}

// WithError records the error description; meaningful only for StateError.
func WithError(errText string) func(o *TransitionOptions) {
	return func(o *TransitionOptions) { o.errText = errText }
}

// SetState transitions the session to next, validating the transition
// against the legal table and the monotonic progress invariant. Without an
// explicit progress the state's default applies, except that re-entering a
// state never lowers progress. Every successful call notifies all listeners
// synchronously before returning. On a closed session SetState is a no-op.
func (s *Session) SetState(next State, optFns ...func(o *TransitionOptions)) error {
	var o TransitionOptions
	for _, fn := range optFns {
		fn(&o)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if IsTerminal(s.state) {
		cur := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTerminalState, cur)
	}
	if !CanTransition(s.state, next) {
		cur := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, next)
	}

	progress := s.progress
	if o.hasProgress {
		if o.progress < s.progress {
			cur := s.progress
			s.mu.Unlock()
			return fmt.Errorf("%w: %d -> %d", ErrProgressRegression, cur, o.progress)
		}
		progress = o.progress
	} else if dp := DefaultProgress(next); dp > progress {
		progress = dp
	}

	s.state = next
	s.progress = progress
	if o.message != "" {
		s.message = o.message
	} else {
		s.message = StateMessage(next, o.errText)
	}
	if next == StateError {
		s.errText = o.errText
	}
	s.updatedAt = time.Now()

	ev := Event{
		SessionID: s.ID,
		State:     next,
		Progress:  progress,
		Message:   s.message,
		Analysis:  s.analysis,
	}
	fns := s.listeners.snapshot()
	s.mu.Unlock()

	// emitMu keeps dispatch for this session serialized so listeners observe
	// transitions in issue order even if a caller bypasses the run guard.
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	for _, fn := range fns {
		s.dispatch(fn, ev)
	}
	return nil
}

// dispatch isolates listener panics: a failing subscriber must not abort the
// pipeline step that triggered it.
func (s *Session) dispatch(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("session listener panicked session_id=%s: %v", s.ID, r)
		}
	}()
	fn(ev)
}

// AddListener subscribes fn to state-change events and returns its
// unsubscribe handle. The handle is idempotent.
func (s *Session) AddListener(fn Listener) func() {
	return s.listeners.add(fn)
}

// ListenerCount reports the number of active subscriptions.
func (s *Session) ListenerCount() int { return s.listeners.len() }

// Begin claims the session's single pipeline run slot. It fails with
// ErrPipelineActive when the session is past StateIdle or already owns a
// run, and with ErrNotFound when the session has been deleted. It never
// mutates observable state.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	if s.running || s.state != StateIdle {
		return ErrPipelineActive
	}
	s.running = true
	return nil
}

// End releases the run slot claimed by Begin.
func (s *Session) End() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Close marks the session deleted and drops its listeners. Subsequent
// SetState calls become no-ops so an in-flight pipeline run can finish
// harmlessly. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.listeners.clear()
}

// Closed reports whether the session has been deleted.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the current progress value (0-100).
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Message returns the last status message, explicit or derived.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Err returns the stored error description; empty unless in StateError.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errText
}

// StateMessage derives the user-facing status line for the current state,
// embedding the stored error text when in StateError.
func (s *Session) StateMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateMessage(s.state, s.errText)
}

// UpdatedAt returns the time of the last mutation.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Analysis returns the analysis result slot; nil until analysis completes.
func (s *Session) Analysis() *Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis
}

// SetAnalysis populates the analysis result slot.
func (s *Session) SetAnalysis(a *Analysis) {
	s.mu.Lock()
	s.analysis = a
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Palette returns the palette result slot; nil until extraction completes.
func (s *Session) Palette() *Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette
}

// SetPalette populates the palette result slot.
func (s *Session) SetPalette(p *Palette) {
	s.mu.Lock()
	s.palette = p
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Assets returns the asset bundle result slot; nil until generation
// completes or for code-only mechanics.
func (s *Session) Assets() *AssetBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets
}

// SetAssets populates the asset bundle result slot.
func (s *Session) SetAssets(b *AssetBundle) {
	s.mu.Lock()
	s.assets = b
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// View is a point-in-time copy of a session's observable fields.
type View struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"userId"`
	State     State     `json:"state"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot returns a copy of the session's observable fields.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:        s.ID,
		UserID:    s.UserID,
		State:     s.state,
		Progress:  s.progress,
		Message:   s.message,
		Error:     s.errText,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}
