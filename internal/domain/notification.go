package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is an outbox row: enqueued inside the same database transaction
// as the operation it announces, delivered asynchronously by the dispatcher.
// Delivery failure never rolls back the committed operation.
type Notification struct {
	ID                uuid.UUID
	Recipient         string
	Subject           string
	TemplateName      string
	TemplateVariables json.RawMessage
	Status            NotificationStatus
	Attempts          int
	LastAttempt       *time.Time
	CreatedAt         time.Time
}
