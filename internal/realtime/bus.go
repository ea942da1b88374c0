package realtime

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// ServerSource is the publisher id used for events raised by the server itself
const ServerSource = "server"

// Bus fans DomainEvents out to the connections held by a Registry
type Bus struct {
	registry  *Registry
	admission Admission
	log       *log.Logger
}

// NewBus creates a bus over registry. admission may be nil for no rate limiting.
func NewBus(registry *Registry, admission Admission) *Bus {
	return &Bus{
		registry:  registry,
		admission: admission,
		log:       logger.Realtime(),
	}
}

// Broadcast writes msg to every live connection and returns how many accepted it
func (b *Bus) Broadcast(msg []byte) int {
	delivered := 0
	b.registry.Each(func(id string, sink Sink) {
		if sink.Send(msg) {
			delivered++
			return
		}
		b.log.Debug("Dropped broadcast for unwritable connection", "connection_id", id)
	})
	return delivered
}

// Publish delivers ev to every live connection. Typing indicators skip the source.
func (b *Bus) Publish(source string, ev notification.DomainEvent) (int, error) {
	if !ev.Kind.Valid() {
		return 0, fmt.Errorf("%w: unknown kind %d from %s", notification.ErrMalformedEvent, ev.Kind, source)
	}

	if source != ServerSource && b.admission != nil && !b.admission.Allow(source) {
		return 0, ErrRateLimited
	}

	msg, err := notification.EncodeEvent(ev)
	if err != nil {
		return 0, err
	}

	delivered := 0
	b.registry.Each(func(id string, sink Sink) {
		if ev.Kind.ExcludesSource() && id == source {
			return
		}
		if sink.Send(msg) {
			delivered++
			return
		}
		b.log.Debug("Dropped event for unwritable connection", "connection_id", id, "kind", ev.Kind.String())
	})

	b.log.Debug("Event published", "source", source, "kind", ev.Kind.String(), "delivered", delivered)
	return delivered, nil
}
