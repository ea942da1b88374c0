package notification

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind     Kind
		inbound  string
		outbound string
	}{
		{KindBlog, "blog:new", "blog:created"},
		{KindEvent, "event:new", "event:created"},
		{KindAnnouncement, "announcement:new", "announcement:created"},
		{KindPrayer, "prayer:new", "prayer:created"},
		{KindReadingCalendar, "reading-calendar:new", "reading-calendar:created"},
		{KindActivity, "activity:update", "activity:new"},
		{KindTyping, "comment:typing", "comment:typing"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.inbound, tt.kind.InboundName())
			assert.Equal(t, tt.outbound, tt.kind.OutboundName())

			k, ok := KindFromInbound(tt.inbound)
			require.True(t, ok)
			assert.Equal(t, tt.kind, k)

			k, ok = KindFromString(tt.kind.String())
			require.True(t, ok)
			assert.Equal(t, tt.kind, k)
		})
	}

	assert.Len(t, Kinds(), len(tests))
	assert.False(t, KindUnknown.Valid())
	assert.True(t, KindTyping.ExcludesSource())
	assert.False(t, KindBlog.ExcludesSource())
}

func TestKindJSON(t *testing.T) {
	b, err := json.Marshal(KindPrayer)
	require.NoError(t, err)
	assert.Equal(t, `"prayer"`, string(b))

	var k Kind
	require.NoError(t, json.Unmarshal([]byte(`"activity"`), &k))
	assert.Equal(t, KindActivity, k)

	err = json.Unmarshal([]byte(`"gossip"`), &k)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecode(t *testing.T) {
	t.Run("blog keeps raw payload", func(t *testing.T) {
		ev, err := Decode("blog:new", json.RawMessage(`{"id":"b1","title":"Grace","author":"Ama","extra":true}`))
		require.NoError(t, err)
		assert.Equal(t, KindBlog, ev.Kind)
		assert.Equal(t, BlogPayload{ID: "b1", Title: "Grace", Author: "Ama"}, ev.Payload)

		data, err := ev.Data()
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"b1","title":"Grace","author":"Ama","extra":true}`, string(data))
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Decode("sermon:new", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("empty body becomes object", func(t *testing.T) {
		ev, err := Decode("prayer:new", nil)
		require.NoError(t, err)
		data, err := ev.Data()
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	})

	t.Run("non object payload", func(t *testing.T) {
		_, err := Decode("event:new", json.RawMessage(`[1,2]`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("typing requires thread and user", func(t *testing.T) {
		_, err := Decode("comment:typing", json.RawMessage(`{"threadId":"t1"}`))
		assert.ErrorIs(t, err, ErrMalformedEvent)

		ev, err := Decode("comment:typing", json.RawMessage(`{"threadId":"t1","userId":"u1"}`))
		require.NoError(t, err)
		assert.Equal(t, TypingPayload{ThreadID: "t1", UserID: "u1"}, ev.Payload)
	})
}

func TestNewEventData(t *testing.T) {
	ev := NewEvent(AnnouncementPayload{Title: "Groups ready"})
	assert.Equal(t, KindAnnouncement, ev.Kind)

	data, err := ev.Data()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Groups ready"}`, string(data))
}

func TestEncodeEvent(t *testing.T) {
	ev, err := Decode("activity:update", json.RawMessage(`{"type":"login"}`))
	require.NoError(t, err)

	msg, err := EncodeEvent(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"activity:new","data":{"type":"login"}}`, string(msg))

	_, err = EncodeEvent(DomainEvent{Kind: Kind(42)})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":" blog:new ","data":{"title":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, "blog:new", f.Event)
	assert.JSONEq(t, `{"title":"x"}`, string(f.Data))

	_, err = ParseFrame([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = ParseFrame([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestParseCredentials(t *testing.T) {
	c, err := ParseCredentials(json.RawMessage(`{"userId":"u1","email":"a@b.org","role":"member"}`))
	require.NoError(t, err)
	assert.Equal(t, Credentials{UserID: "u1", Email: "a@b.org", Role: "member"}, c)

	_, err = ParseCredentials(json.RawMessage(`{"userId":"u1","email":"nope"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = ParseCredentials(nil)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestEncodeFrameCount(t *testing.T) {
	msg, err := EncodeFrame(EventUsersCount, CountPayload{Count: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"users:count","data":{"count":3}}`, string(msg))
}
