package realtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
)

func startHub(t *testing.T, opts ...HubOption) (*Hub, context.CancelFunc) {
	t.Helper()
	seq := 0
	opts = append([]HubOption{WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("conn-%d", seq)
	})}, opts...)

	h := NewHub(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h, cancel
}

// barrier waits until every previously submitted command has run
func barrier(t *testing.T, h *Hub) int {
	t.Helper()
	n, err := h.CountAuthenticated(context.Background())
	require.NoError(t, err)
	return n
}

func TestHubLifecycle(t *testing.T) {
	h, _ := startHub(t)
	ctx := context.Background()

	a, b := &fakeSink{}, &fakeSink{}
	idA, err := h.Connect(ctx, a)
	require.NoError(t, err)
	idB, err := h.Connect(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB)

	require.NoError(t, h.Authenticate(ctx, idA, notification.Identity{UserID: "u1", Role: "member"}))
	assert.Equal(t, 1, barrier(t, h))

	typing, err := notification.Decode("comment:typing", []byte(`{"threadId":"t","userId":"u1"}`))
	require.NoError(t, err)
	require.NoError(t, h.Publish(ctx, idA, typing))

	require.NoError(t, h.Disconnect(ctx, idA))
	assert.Equal(t, 0, barrier(t, h))

	assert.Equal(t, []string{"users:count", "users:count"}, a.events(t))
	assert.True(t, a.isClosed())

	assert.Equal(t, []string{"users:count", "users:count", "comment:typing", "users:count"}, b.events(t))
	bFrames := b.frames(t)
	assert.JSONEq(t, `{"count":0}`, string(bFrames[0].Data))
	assert.JSONEq(t, `{"count":1}`, string(bFrames[1].Data))
	assert.JSONEq(t, `{"count":0}`, string(bFrames[3].Data))
	assert.False(t, b.isClosed())
}

func TestHubAuthenticateAfterDisconnectIsBenign(t *testing.T) {
	h, _ := startHub(t)
	ctx := context.Background()

	s := &fakeSink{}
	id, err := h.Connect(ctx, s)
	require.NoError(t, err)
	require.NoError(t, h.Disconnect(ctx, id))
	require.NoError(t, h.Authenticate(ctx, id, notification.Identity{UserID: "late"}))
	require.NoError(t, h.Disconnect(ctx, id))

	assert.Equal(t, 0, barrier(t, h))
}

func TestHubDuplicateAuthenticateKeepsFirstIdentity(t *testing.T) {
	h, _ := startHub(t)
	ctx := context.Background()

	id, err := h.Connect(ctx, &fakeSink{})
	require.NoError(t, err)
	require.NoError(t, h.Authenticate(ctx, id, notification.Identity{UserID: "first"}))
	require.NoError(t, h.Authenticate(ctx, id, notification.Identity{UserID: "second"}))
	assert.Equal(t, 1, barrier(t, h))

	conns, err := h.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "first", conns[0].Identity.UserID)
}

func TestHubServerPublishReachesAll(t *testing.T) {
	h, _ := startHub(t)
	ctx := context.Background()

	sinks := []*fakeSink{{}, {}, {}}
	for _, s := range sinks {
		_, err := h.Connect(ctx, s)
		require.NoError(t, err)
	}

	require.NoError(t, h.Publish(ctx, ServerSource, notification.NewEvent(notification.ReadingCalendarPayload{Passage: "John 3"})))
	barrier(t, h)

	for _, s := range sinks {
		assert.Equal(t, []string{"users:count", "reading-calendar:created"}, s.events(t))
	}
}

func TestHubRateLimitsClients(t *testing.T) {
	h, _ := startHub(t, WithAdmission(NewRateLimiter(0.0001, 1)))
	ctx := context.Background()

	s := &fakeSink{}
	id, err := h.Connect(ctx, s)
	require.NoError(t, err)

	ev := notification.NewEvent(notification.ActivityPayload{Type: "ping"})
	require.NoError(t, h.Publish(ctx, id, ev))
	require.NoError(t, h.Publish(ctx, id, ev))
	barrier(t, h)

	assert.Equal(t, []string{"users:count", "activity:new"}, s.events(t))
}

func TestHubShutdownClosesConnections(t *testing.T) {
	h, cancel := startHub(t)
	ctx := context.Background()

	s := &fakeSink{}
	_, err := h.Connect(ctx, s)
	require.NoError(t, err)
	barrier(t, h)

	cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	assert.True(t, s.isClosed())
	_, err = h.Connect(ctx, &fakeSink{})
	assert.ErrorIs(t, err, ErrHubStopped)
	_, err = h.CountAuthenticated(ctx)
	assert.ErrorIs(t, err, ErrHubStopped)
}

func TestHubConnectQueuedWhenHubStops(t *testing.T) {
	h := NewHub()

	type outcome struct {
		id  string
		err error
	}
	result := make(chan outcome, 1)
	sink := &fakeSink{}
	go func() {
		id, err := h.Connect(context.Background(), sink)
		result <- outcome{id, err}
	}()
	require.Eventually(t, func() bool { return len(h.commands) == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Run(ctx)

	select {
	case got := <-result:
		assert.ErrorIs(t, got.err, ErrHubStopped)
		assert.Empty(t, got.id)
	case <-time.After(time.Second):
		t.Fatal("Connect did not return after the hub stopped")
	}
	assert.Zero(t, h.registry.Len())
	assert.Empty(t, sink.events(t))
}

func TestHubConnectAbandonedByCallerIsUndone(t *testing.T) {
	h := NewHub()
	sink := &fakeSink{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Connect(ctx, sink)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	runCtx, stop := context.WithCancel(context.Background())
	go h.Run(runCtx)
	t.Cleanup(func() {
		stop()
		<-h.Done()
	})

	barrier(t, h)
	conns, err := h.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, conns)
	assert.True(t, sink.isClosed(), "the late registration is rolled back")
}
