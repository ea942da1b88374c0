// Package realtime implements the websocket presence and fan-out layer.
//
// A Hub runs a single dispatch goroutine that owns the Registry, the Bus and
// the Presence counter. Nothing in this package besides Hub and Client is
// safe for concurrent use; all other types must only be touched from the hub
// goroutine (or from a test that plays its role).
package realtime

import (
	"errors"
	"time"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
)

var (
	// ErrUnknownConnection is returned for ids that are no longer live
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrAlreadyAuthenticated is returned when an identity is already attached
	ErrAlreadyAuthenticated = errors.New("connection already authenticated")
	// ErrRateLimited is returned when a connection exceeds its publish budget
	ErrRateLimited = errors.New("publish rate exceeded")
	// ErrHubStopped is returned by submissions after the hub has shut down
	ErrHubStopped = errors.New("hub stopped")
)

// Sink is the outbound side of a live connection. Send must not block; it
// reports false when the message was dropped.
type Sink interface {
	Send(msg []byte) bool
	Close()
}

// Connection describes one live client session
type Connection struct {
	ID          string                 `json:"id"`
	Identity    *notification.Identity `json:"identity,omitempty"`
	ConnectedAt time.Time              `json:"connected_at"`
}

// Authenticated reports whether an identity has been attached
func (c Connection) Authenticated() bool {
	return c.Identity != nil
}

type entry struct {
	conn Connection
	sink Sink
}

// Registry is the authoritative set of live connections
type Registry struct {
	conns         map[string]*entry
	authenticated int
	onChange      func(count int)
	now           func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*entry),
		now:   time.Now,
	}
}

// OnPresenceChanged installs the hook invoked after authenticate and unregister
func (r *Registry) OnPresenceChanged(fn func(count int)) {
	r.onChange = fn
}

// Register adds an unauthenticated connection. Registering a live id again is a no-op.
func (r *Registry) Register(id string, sink Sink) {
	if _, exists := r.conns[id]; exists {
		return
	}
	r.conns[id] = &entry{
		conn: Connection{ID: id, ConnectedAt: r.now()},
		sink: sink,
	}
}

// Authenticate attaches identity to a live connection
func (r *Registry) Authenticate(id string, identity notification.Identity) error {
	e, ok := r.conns[id]
	if !ok {
		return ErrUnknownConnection
	}
	if e.conn.Identity != nil {
		return ErrAlreadyAuthenticated
	}

	e.conn.Identity = &identity
	r.authenticated++
	r.notify()
	return nil
}

// Unregister removes a connection and returns its sink so the caller can close it
func (r *Registry) Unregister(id string) (Sink, bool) {
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}

	delete(r.conns, id)
	if e.conn.Identity != nil && r.authenticated > 0 {
		r.authenticated--
	}
	r.notify()
	return e.sink, true
}

// CountAuthenticated returns the number of connections with an identity
func (r *Registry) CountAuthenticated() int {
	return r.authenticated
}

// Len returns the number of live connections, authenticated or not
func (r *Registry) Len() int {
	return len(r.conns)
}

// Lookup returns a copy of the connection metadata
func (r *Registry) Lookup(id string) (Connection, bool) {
	e, ok := r.conns[id]
	if !ok {
		return Connection{}, false
	}
	return e.conn, true
}

// Each calls fn for every live connection. fn must not mutate the registry.
func (r *Registry) Each(fn func(id string, sink Sink)) {
	for id, e := range r.conns {
		fn(id, e.sink)
	}
}

// Drain removes every connection without firing the presence hook
func (r *Registry) Drain() []Sink {
	sinks := make([]Sink, 0, len(r.conns))
	for id, e := range r.conns {
		sinks = append(sinks, e.sink)
		delete(r.conns, id)
	}
	r.authenticated = 0
	return sinks
}

func (r *Registry) notify() {
	if r.onChange != nil {
		r.onChange(r.authenticated)
	}
}
