package realtime

import (
	"github.com/charmbracelet/log"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// Broadcaster is the raw delivery primitive Presence pushes counts through
type Broadcaster interface {
	Broadcast(msg []byte) int
}

// Presence turns registry count changes into users:count broadcasts
type Presence struct {
	out Broadcaster
	log *log.Logger
}

// NewPresence creates a Presence that broadcasts through out
func NewPresence(out Broadcaster) *Presence {
	return &Presence{out: out, log: logger.Realtime()}
}

// OnPresenceChanged pushes the new authenticated count to every connection
func (p *Presence) OnPresenceChanged(count int) {
	msg, err := CountMessage(count)
	if err != nil {
		p.log.Error("Failed to encode presence count", "error", err)
		return
	}
	delivered := p.out.Broadcast(msg)
	p.log.Debug("Presence count broadcast", "count", count, "delivered", delivered)
}

// CountMessage encodes a users:count frame
func CountMessage(count int) ([]byte, error) {
	return notification.EncodeFrame(notification.EventUsersCount, notification.CountPayload{Count: count})
}
