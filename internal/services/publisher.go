package services

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/realtime"
)

// Publisher fans a server-raised event out to live connections.
// *realtime.Hub implements it.
type Publisher interface {
	Publish(ctx context.Context, source string, ev notification.DomainEvent) error
}

// announce publishes payload as a server event. Failures are logged only.
func announce(ctx context.Context, p Publisher, log *log.Logger, payload notification.Payload) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, realtime.ServerSource, notification.NewEvent(payload)); err != nil {
		log.Warn("Failed to publish announcement", "kind", payload.Kind().String(), "error", err)
	}
}
