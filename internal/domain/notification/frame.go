package notification

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Frame is the JSON envelope carried by every websocket text message
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CountPayload is the body of users:count
type CountPayload struct {
	Count int `json:"count"`
}

// Identity is the verified user attached to a connection
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Credentials is the body of an authenticate frame. Token is only required
// when the server verifies signed identities.
type Credentials struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Role   string `json:"role,omitempty"`
	Token  string `json:"token,omitempty"`
}

// ParseFrame decodes one inbound websocket message
func ParseFrame(msg []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	f.Event = strings.TrimSpace(f.Event)
	if f.Event == "" {
		return Frame{}, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}
	return f, nil
}

// ParseCredentials decodes and validates the data of an authenticate frame
func ParseCredentials(data json.RawMessage) (Credentials, error) {
	var c Credentials
	if len(data) == 0 {
		return Credentials{}, fmt.Errorf("%w: authenticate requires a body", ErrMalformedEvent)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := validate.Struct(c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return c, nil
}

// EncodeFrame builds an outbound message ready to be written to a connection
func EncodeFrame(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	switch v := data.(type) {
	case json.RawMessage:
		raw = v
	case nil:
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", event, err)
		}
		raw = b
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// EncodeEvent renders a DomainEvent under its outbound name
func EncodeEvent(e DomainEvent) ([]byte, error) {
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformedEvent, e.Kind)
	}
	data, err := e.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", e.Kind, err)
	}
	return EncodeFrame(e.Kind.OutboundName(), data)
}
