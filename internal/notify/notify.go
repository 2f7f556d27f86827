// Package notify delivers notification requests raised by background jobs.
// Delivery is fire-and-forget from the caller's point of view: callers log
// a returned error and carry on.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Kind identifies what happened.
type Kind string

const (
	KindRecurringGenerated Kind = "recurring.generated"
	KindRecurringFailed    Kind = "recurring.failed"
)

// Level is the severity shown to the user.
func (k Kind) Level() string {
	if k == KindRecurringFailed {
		return "warning"
	}
	return "info"
}

// Notifier delivers one notification for a hub.
type Notifier interface {
	Notify(ctx context.Context, hubID string, kind Kind, payload map[string]interface{}) error
}

// Message is the wire form used by the broker and webhook transports.
type Message struct {
	HubID     string                 `json:"hub_id"`
	Kind      Kind                   `json:"kind"`
	Level     string                 `json:"level"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewMessage builds a Message stamped with the current time.
func NewMessage(hubID string, kind Kind, payload map[string]interface{}) *Message {
	return &Message{
		HubID:     hubID,
		Kind:      kind,
		Level:     kind.Level(),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes a message.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

// Notify calls each notifier in order.
func (f Fanout) Notify(ctx context.Context, hubID string, kind Kind, payload map[string]interface{}) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, hubID, kind, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, string, Kind, map[string]interface{}) error { return nil }
