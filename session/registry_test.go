package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/playforge/core"
)

func newTestRegistry(optFns ...func(o *Options)) *Registry {
	fns := append([]func(o *Options){func(o *Options) {
		// No background reaper in tests; sweeps are forced via Reap.
		o.ReapInterval = 0
	}}, optFns...)
	return NewRegistry(fns...)
}

func TestRegistryCreate(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	sess, err := r.Create("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, core.UserID("alice"), sess.UserID)
	assert.Equal(t, core.StateIdle, sess.State())
	assert.Equal(t, 0, sess.Progress())
	assert.Equal(t, 1, r.Len())

	other, err := r.Create("alice")
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, other.ID)
}

func TestRegistryCreateEmptyUser(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	_, err := r.Create("")
	assert.ErrorIs(t, err, core.ErrInvalidUserID)
}

func TestRegistryGet(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	sess, err := r.Create("alice")
	require.NoError(t, err)

	got, err := r.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = r.Get("no-such-id")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRegistryDelete(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	sess, err := r.Create("alice")
	require.NoError(t, err)
	sess.AddListener(func(core.Event) {})

	r.Delete(sess.ID)
	_, err = r.Get(sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.True(t, sess.Closed())
	assert.Equal(t, 0, sess.ListenerCount())
	assert.Equal(t, 0, r.Len())

	// Idempotent.
	r.Delete(sess.ID)
	r.Delete("no-such-id")
}

func TestRegistryUserQuotaEvictsOldest(t *testing.T) {
	r := newTestRegistry(func(o *Options) { o.MaxSessionsPerUser = 2 })
	defer r.Close()

	first, err := r.Create("alice")
	require.NoError(t, err)
	second, err := r.Create("alice")
	require.NoError(t, err)
	third, err := r.Create("alice")
	require.NoError(t, err)

	// The oldest session made way for the third.
	_, err = r.Get(first.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.True(t, first.Closed())

	_, err = r.Get(second.ID)
	assert.NoError(t, err)
	_, err = r.Get(third.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryQuotaPerUser(t *testing.T) {
	r := newTestRegistry(func(o *Options) { o.MaxSessionsPerUser = 1 })
	defer r.Close()

	alice, err := r.Create("alice")
	require.NoError(t, err)
	_, err = r.Create("bob")
	require.NoError(t, err)

	// Bob's session does not count against Alice's quota.
	_, err = r.Get(alice.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryReap(t *testing.T) {
	r := newTestRegistry(func(o *Options) { o.TTL = time.Hour })
	defer r.Close()

	sess, err := r.Create("alice")
	require.NoError(t, err)

	assert.Equal(t, 0, r.Reap(time.Now()))

	reaped := r.Reap(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 1, reaped)
	assert.True(t, sess.Closed())
	_, err = r.Get(sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRegistryGetExpiresLazily(t *testing.T) {
	r := newTestRegistry(func(o *Options) { o.TTL = time.Nanosecond })
	defer r.Close()

	sess, err := r.Create("alice")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = r.Get(sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryZeroTTLNeverExpires(t *testing.T) {
	r := newTestRegistry(func(o *Options) { o.TTL = 0 })
	defer r.Close()

	sess, err := r.Create("alice")
	require.NoError(t, err)

	assert.Equal(t, 0, r.Reap(time.Now().Add(100*time.Hour)))
	_, err = r.Get(sess.ID)
	assert.NoError(t, err)
}

func TestRegistryCloseIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Close()
	r.Close()
}
