// Package queue carries WhatsApp notifications over RabbitMQ: the API
// publishes them and the notifier worker consumes and sends them.
package queue

import (
	"time"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// NotificationQueue is the durable queue holding outbound WhatsApp messages.
const NotificationQueue = "notification.whatsapp"

// WhatsAppMessage is the queued payload.  The text may carry a plaintext
// credential, so consumers must not log it.
type WhatsAppMessage struct {
	Phone     string    `json:"phone"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

func messageFrom(n model.Notification) WhatsAppMessage {
	return WhatsAppMessage{Phone: n.Phone, Text: n.Text, Kind: n.Kind, CreatedAt: n.CreatedAt}
}

func (m WhatsAppMessage) notification() model.Notification {
	return model.Notification{Phone: m.Phone, Text: m.Text, Kind: m.Kind, CreatedAt: m.CreatedAt}
}
