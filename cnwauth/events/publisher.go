// Package events publishes auth state changes over a Watermill message bus
// so the UI layer can react without importing the validation core.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/CloudNativeWorks/cnw-device-auth/cnwauth"
)

// Topics used by the publisher.
const (
	TopicLogoutRequested = "cnwauth.logout_requested"
	TopicUserMessage     = "cnwauth.user_message"
)

// LogoutRequestedEvent signals that the session was torn down and the UI
// should present the login screen again.
type LogoutRequestedEvent struct {
	OccurredAt time.Time `json:"occurred_at"`
}

// UserMessageEvent carries a user-facing notification text.
type UserMessageEvent struct {
	Text       string    `json:"text"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher implements cnwauth.Publisher on top of any Watermill
// message.Publisher (an in-process gochannel bus in the desktop app).
type WatermillPublisher struct {
	publisher message.Publisher
}

var _ cnwauth.Publisher = (*WatermillPublisher)(nil)

// NewWatermillPublisher creates a publisher over the given bus.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogoutRequested publishes a LogoutRequestedEvent.
func (p *WatermillPublisher) PublishLogoutRequested(_ context.Context) error {
	return p.publish(TopicLogoutRequested, LogoutRequestedEvent{OccurredAt: time.Now().UTC()})
}

// PublishUserMessage publishes a UserMessageEvent with the given text.
func (p *WatermillPublisher) PublishUserMessage(_ context.Context, text string) error {
	return p.publish(TopicUserMessage, UserMessageEvent{Text: text, OccurredAt: time.Now().UTC()})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}
