package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
)

// fakeSink records every message it accepts
type fakeSink struct {
	mu       sync.Mutex
	messages [][]byte
	full     bool
	closed   bool
}

func (s *fakeSink) Send(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full || s.closed {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSink) frames(t *testing.T) []notification.Frame {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notification.Frame, 0, len(s.messages))
	for _, m := range s.messages {
		var f notification.Frame
		require.NoError(t, json.Unmarshal(m, &f))
		out = append(out, f)
	}
	return out
}

func (s *fakeSink) events(t *testing.T) []string {
	t.Helper()
	var names []string
	for _, f := range s.frames(t) {
		names = append(names, f.Event)
	}
	return names
}

func (s *fakeSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func TestRegistryAuthenticateCountsOnce(t *testing.T) {
	r := NewRegistry()
	var counts []int
	r.OnPresenceChanged(func(n int) { counts = append(counts, n) })

	r.Register("c1", &fakeSink{})
	r.Register("c2", &fakeSink{})
	assert.Equal(t, 0, r.CountAuthenticated())
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Authenticate("c1", notification.Identity{UserID: "u1"}))
	assert.ErrorIs(t, r.Authenticate("c1", notification.Identity{UserID: "u9"}), ErrAlreadyAuthenticated)
	require.NoError(t, r.Authenticate("c2", notification.Identity{UserID: "u2"}))

	assert.Equal(t, 2, r.CountAuthenticated())
	assert.Equal(t, []int{1, 2}, counts)

	conn, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.True(t, conn.Authenticated())
	assert.Equal(t, "u1", conn.Identity.UserID)
}

func TestRegistryAuthenticateUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	called := false
	r.OnPresenceChanged(func(int) { called = true })

	err := r.Authenticate("gone", notification.Identity{UserID: "u1"})

	assert.ErrorIs(t, err, ErrUnknownConnection)
	assert.Equal(t, 0, r.CountAuthenticated())
	assert.False(t, called)
}

func TestRegistryUnregisterNeverGoesNegative(t *testing.T) {
	r := NewRegistry()
	var counts []int
	r.OnPresenceChanged(func(n int) { counts = append(counts, n) })

	sink := &fakeSink{}
	r.Register("c1", sink)
	r.Register("c2", &fakeSink{})
	require.NoError(t, r.Authenticate("c1", notification.Identity{UserID: "u1"}))

	got, ok := r.Unregister("c1")
	require.True(t, ok)
	assert.Same(t, sink, got)

	_, ok = r.Unregister("c1")
	assert.False(t, ok)

	_, ok = r.Unregister("c2")
	require.True(t, ok)

	assert.Equal(t, 0, r.CountAuthenticated())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, []int{1, 0, 0}, counts)
}

func TestRegistryRegisterDuplicateKeepsOriginal(t *testing.T) {
	r := NewRegistry()
	first := &fakeSink{}
	r.Register("c1", first)
	require.NoError(t, r.Authenticate("c1", notification.Identity{UserID: "u1"}))

	r.Register("c1", &fakeSink{})

	got, ok := r.Unregister("c1")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistryDrain(t *testing.T) {
	r := NewRegistry()
	called := false
	r.OnPresenceChanged(func(int) { called = true })
	r.Register("c1", &fakeSink{})
	r.Register("c2", &fakeSink{})
	called = false

	sinks := r.Drain()

	assert.Len(t, sinks, 2)
	assert.Equal(t, 0, r.Len())
	assert.False(t, called)
}
