package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedEvent marks frames whose name or payload cannot be turned into a DomainEvent
var ErrMalformedEvent = errors.New("malformed event")

var validate = validator.New()

// Payload is the kind-specific body of a DomainEvent
type Payload interface {
	Kind() Kind
}

// BlogPayload announces a new blog post
type BlogPayload struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// EventPayload announces a new calendar event
type EventPayload struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Date     string `json:"date,omitempty"`
	Location string `json:"location,omitempty"`
}

// AnnouncementPayload is a notice to every member
type AnnouncementPayload struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// PrayerPayload announces a new prayer request
type PrayerPayload struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// ReadingCalendarPayload announces a Bible reading plan entry
type ReadingCalendarPayload struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date,omitempty"`
	Passage string `json:"passage,omitempty"`
}

// ActivityPayload is a feed item such as a gallery upload
type ActivityPayload struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// TypingPayload signals that a user is editing a comment on a thread
type TypingPayload struct {
	ThreadID string `json:"threadId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
	UserName string `json:"userName,omitempty"`
	IsTyping *bool  `json:"isTyping,omitempty"`
}

func (BlogPayload) Kind() Kind            { return KindBlog }
func (EventPayload) Kind() Kind           { return KindEvent }
func (AnnouncementPayload) Kind() Kind    { return KindAnnouncement }
func (PrayerPayload) Kind() Kind          { return KindPrayer }
func (ReadingCalendarPayload) Kind() Kind { return KindReadingCalendar }
func (ActivityPayload) Kind() Kind        { return KindActivity }
func (TypingPayload) Kind() Kind          { return KindTyping }

// DomainEvent is a transient, typed notification fanned out to connections.
// Events decoded from a client keep the original JSON so relays echo it unchanged.
type DomainEvent struct {
	Kind    Kind
	Payload Payload
	raw     json.RawMessage
}

// NewEvent wraps a payload built on the server side
func NewEvent(p Payload) DomainEvent {
	return DomainEvent{Kind: p.Kind(), Payload: p}
}

// Data returns the JSON body delivered to recipients
func (e DomainEvent) Data() (json.RawMessage, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	if e.Payload == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(e.Payload)
}

// Decode builds a DomainEvent from an inbound frame name and its data
func Decode(name string, data json.RawMessage) (DomainEvent, error) {
	kind, ok := KindFromInbound(name)
	if !ok {
		return DomainEvent{}, fmt.Errorf("%w: unrecognised event %q", ErrMalformedEvent, name)
	}
	return DecodeKind(kind, data)
}

// DecodeKind parses data as the payload of kind and validates it
func DecodeKind(kind Kind, data json.RawMessage) (DomainEvent, error) {
	payload := newPayload(kind)
	if payload == nil {
		return DomainEvent{}, fmt.Errorf("%w: unknown kind %d", ErrMalformedEvent, kind)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = json.RawMessage("{}")
	}
	if data[0] != '{' {
		return DomainEvent{}, fmt.Errorf("%w: %s payload must be an object", ErrMalformedEvent, kind)
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return DomainEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := validate.Struct(payload); err != nil {
		return DomainEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	return DomainEvent{Kind: kind, Payload: deref(payload), raw: append(json.RawMessage(nil), data...)}, nil
}

func newPayload(kind Kind) any {
	switch kind {
	case KindBlog:
		return &BlogPayload{}
	case KindEvent:
		return &EventPayload{}
	case KindAnnouncement:
		return &AnnouncementPayload{}
	case KindPrayer:
		return &PrayerPayload{}
	case KindReadingCalendar:
		return &ReadingCalendarPayload{}
	case KindActivity:
		return &ActivityPayload{}
	case KindTyping:
		return &TypingPayload{}
	default:
		return nil
	}
}

func deref(p any) Payload {
	switch v := p.(type) {
	case *BlogPayload:
		return *v
	case *EventPayload:
		return *v
	case *AnnouncementPayload:
		return *v
	case *PrayerPayload:
		return *v
	case *ReadingCalendarPayload:
		return *v
	case *ActivityPayload:
		return *v
	case *TypingPayload:
		return *v
	default:
		return nil
	}
}
