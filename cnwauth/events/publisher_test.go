package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { bus.Close() })
	return bus
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestWatermillPublisher_LogoutRequested(t *testing.T) {
	bus := newBus(t)
	messages, err := bus.Subscribe(context.Background(), TopicLogoutRequested)
	require.NoError(t, err)

	p := NewWatermillPublisher(bus)
	require.NoError(t, p.PublishLogoutRequested(context.Background()))

	msg := receive(t, messages)
	assert.NotEmpty(t, msg.UUID)

	var event LogoutRequestedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	assert.WithinDuration(t, time.Now().UTC(), event.OccurredAt, time.Minute)
}

func TestWatermillPublisher_UserMessage(t *testing.T) {
	bus := newBus(t)
	messages, err := bus.Subscribe(context.Background(), TopicUserMessage)
	require.NoError(t, err)

	p := NewWatermillPublisher(bus)
	require.NoError(t, p.PublishUserMessage(context.Background(), "authorization expired"))

	var event UserMessageEvent
	require.NoError(t, json.Unmarshal(receive(t, messages).Payload, &event))
	assert.Equal(t, "authorization expired", event.Text)
}

func TestWatermillPublisher_DistinctMessageIDs(t *testing.T) {
	bus := newBus(t)
	messages, err := bus.Subscribe(context.Background(), TopicUserMessage)
	require.NoError(t, err)

	p := NewWatermillPublisher(bus)
	require.NoError(t, p.PublishUserMessage(context.Background(), "one"))
	require.NoError(t, p.PublishUserMessage(context.Background(), "two"))

	first := receive(t, messages)
	second := receive(t, messages)
	assert.NotEqual(t, first.UUID, second.UUID)
}
