package realtime

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
)

type command func()

// Hub serialises every registry mutation and publish through one goroutine.
// Commands are processed in submission order, which gives each recipient a
// total order over published events.
type Hub struct {
	commands  chan command
	done      chan struct{}
	registry  *Registry
	bus       *Bus
	presence  *Presence
	admission Admission
	newID     func() string
	log       *log.Logger
}

// HubOption customises a Hub
type HubOption func(*Hub)

// WithAdmission enables per-connection publish limits
func WithAdmission(a Admission) HubOption {
	return func(h *Hub) {
		h.admission = a
	}
}

// WithQueueSize sets how many commands may wait for the dispatch goroutine
func WithQueueSize(n int) HubOption {
	return func(h *Hub) {
		if n >= 0 {
			h.commands = make(chan command, n)
		}
	}
}

// WithIDGenerator replaces the uuid based connection id generator
func WithIDGenerator(fn func() string) HubOption {
	return func(h *Hub) {
		h.newID = fn
	}
}

// NewHub wires a Registry, Bus and Presence together. Call Run to start it.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		commands: make(chan command, 256),
		done:     make(chan struct{}),
		newID:    func() string { return uuid.New().String() },
		log:      logger.Realtime(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registry = NewRegistry()
	h.bus = NewBus(h.registry, h.admission)
	h.presence = NewPresence(h.bus)
	h.registry.OnPresenceChanged(h.presence.OnPresenceChanged)
	return h
}

// Run processes commands until ctx is cancelled, then closes every connection.
// It must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("Realtime hub started")
	defer h.shutdown()

	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			cmd()
		}
	}
}

// Done is closed once the hub has stopped
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) shutdown() {
	sinks := h.registry.Drain()
	for _, sink := range sinks {
		sink.Close()
	}
	close(h.done)
	h.log.Info("Realtime hub stopped", "closed_connections", len(sinks))
}

func (h *Hub) submit(ctx context.Context, cmd command) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.commands <- cmd:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect registers sink under a new connection id. The new connection is
// sent the current presence count straight away. Connect returns once the
// registration has run, so a nil error means the hub owns sink.
func (h *Hub) Connect(ctx context.Context, sink Sink) (string, error) {
	id := h.newID()
	registered := make(chan struct{})
	err := h.submit(ctx, func() {
		h.registry.Register(id, sink)
		if msg, err := CountMessage(h.registry.CountAuthenticated()); err == nil {
			sink.Send(msg)
		}
		h.log.Debug("Connection registered", "connection_id", id, "live", h.registry.Len())
		close(registered)
	})
	if err != nil {
		return "", err
	}

	select {
	case <-registered:
		return id, nil
	case <-h.done:
		// the hub stopped with the command still queued; Drain already closed anything registered
		return "", ErrHubStopped
	case <-ctx.Done():
		// the queued registration may still run, so undo it
		if err := h.Disconnect(context.WithoutCancel(ctx), id); err != nil && !errors.Is(err, ErrHubStopped) {
			h.log.Warn("Failed to undo abandoned connect", "connection_id", id, "error", err)
		}
		return "", ctx.Err()
	}
}

// Authenticate attaches identity to connection id. Unknown or already
// authenticated connections are logged and otherwise ignored.
func (h *Hub) Authenticate(ctx context.Context, id string, identity notification.Identity) error {
	return h.submit(ctx, func() {
		if err := h.registry.Authenticate(id, identity); err != nil {
			h.log.Warn("Ignoring authenticate", "connection_id", id, "user_id", identity.UserID, "reason", err)
			return
		}
		h.log.Info("Connection authenticated", "connection_id", id, "user_id", identity.UserID,
			"authenticated", h.registry.CountAuthenticated())
	})
}

// Disconnect removes connection id and closes its sink
func (h *Hub) Disconnect(ctx context.Context, id string) error {
	return h.submit(ctx, func() {
		if h.admission != nil {
			h.admission.Forget(id)
		}
		sink, ok := h.registry.Unregister(id)
		if !ok {
			h.log.Debug("Disconnect for unknown connection", "connection_id", id)
			return
		}
		sink.Close()
		h.log.Debug("Connection removed", "connection_id", id, "live", h.registry.Len())
	})
}

// Publish fans ev out from source. Use ServerSource for server-raised events.
func (h *Hub) Publish(ctx context.Context, source string, ev notification.DomainEvent) error {
	return h.submit(ctx, func() {
		if _, err := h.bus.Publish(source, ev); err != nil {
			if errors.Is(err, ErrRateLimited) {
				h.log.Warn("Dropping event over rate limit", "source", source, "kind", ev.Kind.String())
				return
			}
			h.log.Warn("Dropping event", "source", source, "error", err)
		}
	})
}

// CountAuthenticated asks the dispatch goroutine for the presence count
func (h *Hub) CountAuthenticated(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.submit(ctx, func() { reply <- h.registry.CountAuthenticated() }); err != nil {
		return 0, err
	}

	select {
	case n := <-reply:
		return n, nil
	case <-h.done:
		return 0, ErrHubStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Snapshot returns the metadata of every live connection
func (h *Hub) Snapshot(ctx context.Context) ([]Connection, error) {
	reply := make(chan []Connection, 1)
	err := h.submit(ctx, func() {
		conns := make([]Connection, 0, h.registry.Len())
		h.registry.Each(func(id string, _ Sink) {
			if c, ok := h.registry.Lookup(id); ok {
				conns = append(conns, c)
			}
		})
		reply <- conns
	})
	if err != nil {
		return nil, err
	}

	select {
	case conns := <-reply:
		return conns, nil
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
