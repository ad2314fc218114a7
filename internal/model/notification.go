package model

import "time"

// Notification kinds sent to listing owners over WhatsApp.
const (
	NotifyRegistration = "registration"
	NotifyConfirmation = "confirmation"
	NotifyReactivation = "reactivation"
	NotifyRejection    = "rejection"
)

// Notification is one outbound WhatsApp message.  It is also the payload
// published on the notification queue.
type Notification struct {
	Phone     string    `json:"phone"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}
