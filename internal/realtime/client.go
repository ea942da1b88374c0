package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/unionhub/unionhub-api/internal/domain/notification"
	"github.com/unionhub/unionhub-api/internal/logger"
)

// Authenticator turns authenticate credentials into a verified identity
type Authenticator interface {
	Verify(ctx context.Context, creds notification.Credentials) (notification.Identity, error)
}

// ClientConfig tunes a websocket transport
type ClientConfig struct {
	SendBuffer     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
}

// DefaultClientConfig mirrors the defaults in config.Load
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SendBuffer:     64,
		MaxMessageSize: 64 * 1024,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
	}
}

func (c ClientConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Client adapts one websocket connection to the hub. Send and Close are only
// called from the hub goroutine.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	auth      Authenticator
	cfg       ClientConfig
	send      chan []byte
	id        string
	closeOnce sync.Once
	log       *log.Logger
}

// NewClient prepares a client; Serve blocks until the connection ends
func NewClient(hub *Hub, conn *websocket.Conn, auth Authenticator, cfg ClientConfig) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultClientConfig().SendBuffer
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = DefaultClientConfig().PongWait
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = DefaultClientConfig().WriteWait
	}
	return &Client{
		hub:  hub,
		conn: conn,
		auth: auth,
		cfg:  cfg,
		send: make(chan []byte, cfg.SendBuffer),
		log:  logger.Realtime(),
	}
}

// Send queues msg without blocking; a full buffer drops it
func (c *Client) Send(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which closes the socket
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// ID returns the connection id assigned by the hub
func (c *Client) ID() string {
	return c.id
}

// Serve registers the client and pumps messages until either side closes
func (c *Client) Serve(ctx context.Context) {
	id, err := c.hub.Connect(ctx, c)
	if err != nil {
		c.log.Warn("Rejecting websocket connection", "error", err)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server unavailable"),
			time.Now().Add(c.cfg.WriteWait))
		c.conn.Close()
		return
	}
	c.id = id
	c.log.Info("Websocket connected", "connection_id", id, "remote_addr", c.conn.RemoteAddr().String())

	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if err := c.hub.Disconnect(context.WithoutCancel(ctx), c.id); err != nil && !errors.Is(err, ErrHubStopped) {
			c.log.Warn("Failed to deregister connection", "connection_id", c.id, "error", err)
		}
		c.conn.Close()
		c.log.Info("Websocket disconnected", "connection_id", c.id)
	}()

	if c.cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Warn("Websocket read failed", "connection_id", c.id, "error", err)
			}
			return
		}
		if err := c.handle(ctx, data); err != nil {
			if errors.Is(err, ErrHubStopped) {
				return
			}
			c.log.Warn("Discarding client message", "connection_id", c.id, "error", err)
		}
	}
}

func (c *Client) handle(ctx context.Context, data []byte) error {
	frame, err := notification.ParseFrame(data)
	if err != nil {
		return err
	}

	if frame.Event == notification.EventAuthenticate {
		creds, err := notification.ParseCredentials(frame.Data)
		if err != nil {
			return err
		}
		identity, err := c.auth.Verify(ctx, creds)
		if err != nil {
			return err
		}
		return c.hub.Authenticate(ctx, c.id, identity)
	}

	ev, err := notification.Decode(frame.Event, frame.Data)
	if err != nil {
		return err
	}
	return c.hub.Publish(ctx, c.id, ev)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("Websocket write failed", "connection_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
