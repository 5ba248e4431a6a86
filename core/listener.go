package core

import "sync"

// Event is the snapshot delivered to session listeners on every state
// mutation. Analysis is a reference to the session's analysis slot so
// subscribers can read partial results as they become available.
type Event struct {
	SessionID string    `json:"sessionId"`
	State     State     `json:"state"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Analysis  *Analysis `json:"analysis,omitempty"`
}

// Listener receives state-change events for one session.
type Listener func(Event)

// listenerSet holds a session's subscriptions in registration order.
// Removal is O(1) via the id map; the order slice is compacted lazily on
// dispatch. Unsubscribe handles are idempotent.
type listenerSet struct {
	mu    sync.Mutex
	seq   int
	order []int
	fns   map[int]Listener
}

func newListenerSet() *listenerSet {
	return &listenerSet{fns: make(map[int]Listener)}
}

// add registers fn and returns its unsubscribe capability. Calling the
// handle more than once is a no-op.
func (l *listenerSet) add(fn Listener) func() {
	l.mu.Lock()
	l.seq++
	id := l.seq
	l.fns[id] = fn
	l.order = append(l.order, id)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

// snapshot returns the live listeners in registration order, dropping
// unsubscribed entries from the order slice as a side effect.
func (l *listenerSet) snapshot() []Listener {
	l.mu.Lock()
	defer l.mu.Unlock()
	live := make([]Listener, 0, len(l.fns))
	kept := l.order[:0]
	for _, id := range l.order {
		fn, ok := l.fns[id]
		if !ok {
			continue
		}
		live = append(live, fn)
		kept = append(kept, id)
	}
	l.order = kept
	return live
}

func (l *listenerSet) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

// clear drops every subscription; used when a session is deleted.
func (l *listenerSet) clear() {
	l.mu.Lock()
	l.fns = make(map[int]Listener)
	l.order = nil
	l.mu.Unlock()
}
