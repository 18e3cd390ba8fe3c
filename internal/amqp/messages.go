package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationMessage is the body published for every notification.
// Consumers render TemplateID with Params for Recipient.
type NotificationMessage struct {
	ID         string         `json:"id"`
	Recipient  string         `json:"recipient"`
	TemplateID string         `json:"templateId"`
	Params     map[string]any `json:"params,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func NewNotificationMessage(recipient, templateID string, params map[string]any) *NotificationMessage {
	return &NotificationMessage{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		TemplateID: templateID,
		Params:     params,
		Timestamp:  time.Now().UTC(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
