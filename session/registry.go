package session

import (
	"sync"
	"time"

	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/logging"
)

// Options holds configuration overrides passed to NewRegistry.
type Options struct {
	// TTL bounds each session's lifetime, measured from creation. Sessions
	// past their TTL are reaped in the background and rejected on Get.
	// Zero or negative disables expiry.
	TTL time.Duration
	// MaxSessionsPerUser caps live sessions per user; the oldest session is
	// evicted to make room. Zero or negative means unlimited.
	MaxSessionsPerUser int
	// ReapInterval is the period of the background expiry sweep.
	ReapInterval time.Duration
	// Logger receives registry lifecycle messages.
	Logger logging.Logger
}

// Registry is the concurrency-safe session store. All mutation (insert,
// delete, eviction sweep) is safe under concurrent access from request
// handling and the background reaper.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	byUser   map[core.UserID][]string // ids in creation order, oldest first

	ttl        time.Duration
	maxPerUser int
	logger     logging.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry constructs a Registry and starts its background reaper.
// Callers should Close it when done.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{
		TTL:                2 * time.Hour,
		MaxSessionsPerUser: 3,
		ReapInterval:       5 * time.Minute,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	r := &Registry{
		sessions:   make(map[string]*core.Session),
		byUser:     make(map[core.UserID][]string),
		ttl:        opts.TTL,
		maxPerUser: opts.MaxSessionsPerUser,
		logger:     opts.Logger,
		done:       make(chan struct{}),
	}

	if r.ttl > 0 && opts.ReapInterval > 0 {
		go r.reapLoop(opts.ReapInterval)
	}

	return r
}

// Create allocates a session for userID in StateIdle with progress 0 and
// registers it under a fresh id. When the user is at their session cap the
// oldest session is evicted first.
func (r *Registry) Create(userID core.UserID) (*core.Session, error) {
	if userID == "" {
		return nil, core.ErrInvalidUserID
	}
	sess := core.NewSession(userID, r.logger)

	var evicted []*core.Session
	r.mu.Lock()
	ids := r.byUser[userID]
	for r.maxPerUser > 0 && len(ids) >= r.maxPerUser {
		oldest := ids[0]
		ids = ids[1:]
		if old, ok := r.sessions[oldest]; ok {
			delete(r.sessions, oldest)
			evicted = append(evicted, old)
		}
	}
	r.sessions[sess.ID] = sess
	r.byUser[userID] = append(ids, sess.ID)
	r.mu.Unlock()

	for _, old := range evicted {
		old.Close()
		r.logger.Debug("evicted session over user quota session_id=%s user_id=%s", old.ID, userID)
	}
	return sess, nil
}

// Get returns the live session for id, or core.ErrNotFound for unknown,
// deleted or expired ids. Expired sessions found here are removed eagerly
// without waiting for the next sweep.
func (r *Registry) Get(id string) (*core.Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, core.ErrNotFound
	}
	if r.expired(sess, time.Now()) {
		r.remove(id)
		return nil, core.ErrNotFound
	}
	return sess, nil
}

// Delete removes the session and drops its listeners. Idempotent: deleting
// an unknown id is a no-op.
func (r *Registry) Delete(id string) {
	r.remove(id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap removes every session expired as of now and returns how many were
// dropped. Called periodically by the background loop; exported so callers
// can force a sweep.
func (r *Registry) Reap(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.RLock()
	var stale []string
	for id, sess := range r.sessions {
		if r.expired(sess, now) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		r.remove(id)
	}
	if len(stale) > 0 {
		r.logger.Debug("reaped %d expired sessions", len(stale))
	}
	return len(stale)
}

// Close stops the background reaper. Live sessions remain accessible.
func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Registry) reapLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			r.Reap(now)
		}
	}
}

func (r *Registry) expired(sess *core.Session, now time.Time) bool {
	return r.ttl > 0 && now.Sub(sess.CreatedAt) > r.ttl
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		ids := r.byUser[sess.UserID]
		for i, sid := range ids {
			if sid == id {
				ids = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(ids) == 0 {
			delete(r.byUser, sess.UserID)
		} else {
			r.byUser[sess.UserID] = ids
		}
	}
	r.mu.Unlock()

	if ok {
		sess.Close()
	}
}
