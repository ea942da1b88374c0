package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unionhub/unionhub-api/internal/auth"
	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/realtime"
)

type realtimeFixture struct {
	hub    *realtime.Hub
	router *gin.Engine
	server *httptest.Server
}

func newRealtimeFixture(t *testing.T) *realtimeFixture {
	t.Helper()
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	h := NewRealtimeHandler(hub, auth.TrustingVerifier{}, realtime.NewUpgrader(nil), realtime.DefaultClientConfig())
	r := gin.New()
	r.GET("/ws", h.ServeWS)
	r.GET("/api/realtime/presence", h.Presence)
	r.GET("/api/realtime/connections", h.Connections)
	r.POST("/api/realtime/events", h.PublishEvent)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		srv.Close()
	})
	return &realtimeFixture{hub: hub, router: r, server: srv}
}

func (f *realtimeFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) notification.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var f notification.Frame
	require.NoError(t, json.Unmarshal(msg, &f))
	return f
}

func TestWebsocketAuthenticateAndBroadcast(t *testing.T) {
	f := newRealtimeFixture(t)
	alice := f.dial(t)

	first := readFrame(t, alice)
	assert.Equal(t, notification.EventUsersCount, first.Event)
	assert.JSONEq(t, `{"count":0}`, string(first.Data))

	require.NoError(t, alice.WriteJSON(map[string]any{
		"event": "authenticate",
		"data":  map[string]string{"userId": "u1", "name": "Alice"},
	}))
	counted := readFrame(t, alice)
	assert.Equal(t, notification.EventUsersCount, counted.Event)
	assert.JSONEq(t, `{"count":1}`, string(counted.Data))

	bob := f.dial(t)
	assert.JSONEq(t, `{"count":1}`, string(readFrame(t, bob).Data))

	require.NoError(t, bob.WriteJSON(map[string]any{
		"event": "prayer:new",
		"data":  map[string]string{"title": "Exams"},
	}))
	for _, conn := range []*websocket.Conn{alice, bob} {
		frame := readFrame(t, conn)
		assert.Equal(t, "prayer:created", frame.Event)
		assert.JSONEq(t, `{"title":"Exams"}`, string(frame.Data))
	}

	w, env := doJSON(t, f.router, http.MethodGet, "/api/realtime/presence", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	w, env = doJSON(t, f.router, http.MethodGet, "/api/realtime/connections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conns []realtime.Connection
	require.NoError(t, json.Unmarshal(env.Data, &conns))
	assert.Len(t, conns, 2)
}

func TestWebsocketTypingSkipsSender(t *testing.T) {
	f := newRealtimeFixture(t)
	alice, bob := f.dial(t), f.dial(t)
	readFrame(t, alice)
	readFrame(t, bob)

	require.NoError(t, alice.WriteJSON(map[string]any{
		"event": "comment:typing",
		"data":  map[string]string{"threadId": "t1", "userId": "u1"},
	}))
	assert.Equal(t, "comment:typing", readFrame(t, bob).Event)

	// alice only sees the server publish that follows
	_, _ = doJSON(t, f.router, http.MethodPost, "/api/realtime/events", map[string]any{
		"kind": "announcement",
		"data": map[string]string{"title": "Service at 10"},
	})
	assert.Equal(t, "announcement:created", readFrame(t, alice).Event)
}

func TestPublishEventHandler(t *testing.T) {
	f := newRealtimeFixture(t)
	conn := f.dial(t)
	readFrame(t, conn)

	w, env := doJSON(t, f.router, http.MethodPost, "/api/realtime/events", map[string]any{
		"kind": "reading-calendar:new",
		"data": map[string]string{"passage": "Romans 8"},
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"event":"reading-calendar:created"}`, string(env.Data))

	frame := readFrame(t, conn)
	assert.Equal(t, "reading-calendar:created", frame.Event)
	assert.JSONEq(t, `{"passage":"Romans 8"}`, string(frame.Data))
}

func TestPublishEventHandlerRejects(t *testing.T) {
	f := newRealtimeFixture(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing kind", map[string]any{"data": map[string]string{}}},
		{"unknown kind", map[string]any{"kind": "sermon"}},
		{"array payload", map[string]any{"kind": "blog", "data": []int{1}}},
		{"typing without thread", map[string]any{"kind": "typing", "data": map[string]string{"userId": "u1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, f.router, http.MethodPost, "/api/realtime/events", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestPresenceAfterHubStops(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	<-hub.Done()

	h := NewRealtimeHandler(hub, auth.TrustingVerifier{}, realtime.NewUpgrader(nil), realtime.DefaultClientConfig())
	r := gin.New()
	r.GET("/api/realtime/presence", h.Presence)

	w, _ := doJSON(t, r, http.MethodGet, "/api/realtime/presence", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
