package notification

import "fmt"

// Kind identifies the variant of a DomainEvent
type Kind byte

const (
	KindUnknown Kind = iota
	KindBlog
	KindEvent
	KindAnnouncement
	KindPrayer
	KindReadingCalendar
	KindActivity
	KindTyping
)

// Wire names for the frames clients send and receive
const (
	EventAuthenticate = "authenticate"
	EventUsersCount   = "users:count"
)

type kindNames struct {
	name     string
	inbound  string
	outbound string
}

var kinds = map[Kind]kindNames{
	KindBlog:            {"blog", "blog:new", "blog:created"},
	KindEvent:           {"event", "event:new", "event:created"},
	KindAnnouncement:    {"announcement", "announcement:new", "announcement:created"},
	KindPrayer:          {"prayer", "prayer:new", "prayer:created"},
	KindReadingCalendar: {"reading-calendar", "reading-calendar:new", "reading-calendar:created"},
	KindActivity:        {"activity", "activity:update", "activity:new"},
	KindTyping:          {"typing", "comment:typing", "comment:typing"},
}

// Kinds returns every recognised kind in declaration order
func Kinds() []Kind {
	return []Kind{KindBlog, KindEvent, KindAnnouncement, KindPrayer, KindReadingCalendar, KindActivity, KindTyping}
}

// Valid reports whether k is one of the recognised kinds
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k Kind) String() string {
	if n, ok := kinds[k]; ok {
		return n.name
	}
	return "unknown"
}

// InboundName is the frame name a client uses to publish this kind
func (k Kind) InboundName() string {
	return kinds[k].inbound
}

// OutboundName is the frame name recipients receive for this kind
func (k Kind) OutboundName() string {
	return kinds[k].outbound
}

// ExcludesSource reports whether the publisher must not receive its own event
func (k Kind) ExcludesSource() bool {
	return k == KindTyping
}

// KindFromInbound resolves a client frame name such as "blog:new"
func KindFromInbound(name string) (Kind, bool) {
	for k, n := range kinds {
		if n.inbound == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// KindFromString resolves the short kind name such as "blog" or "prayer"
func KindFromString(s string) (Kind, bool) {
	for k, n := range kinds {
		if n.name == s {
			return k, true
		}
	}
	return KindUnknown, false
}

// MarshalJSON implements the json.Marshaler interface
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (k *Kind) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	kind, valid := KindFromString(str)
	if !valid {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, str)
	}
	*k = kind
	return nil
}
