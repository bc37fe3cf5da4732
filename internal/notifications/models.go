package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type identifies what a notification is about
type Type string

const (
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeShowAdded        Type = "show_added"
	TypeShowReminder     Type = "show_reminder"
)

// Status tracks a notification through the pipeline
type Status string

const (
	StatusPending Status = "PENDING"
	StatusQueued  Status = "QUEUED"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Notification is the message that travels through Kafka from the domain
// services to the email consumer. RecipientEmail may be empty for broadcast
// types (show_added); the consumer resolves recipients then.
type Notification struct {
	ID             uuid.UUID         `json:"id"`
	Type           Type              `json:"type"`
	RecipientEmail string            `json:"recipient_email,omitempty"`
	RecipientName  string            `json:"recipient_name,omitempty"`
	Data           map[string]string `json:"data"`
	Status         Status            `json:"status"`
	LastError      *string           `json:"last_error,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToJSON serializes the notification for the wire
func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// FromJSON deserializes a notification from the wire
func FromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// GetPartitionKey routes messages for the same recipient (or movie, for
// broadcasts) to the same partition
func (n *Notification) GetPartitionKey() string {
	if n.RecipientEmail != "" {
		return n.RecipientEmail
	}
	if movieID, ok := n.Data["movie_id"]; ok {
		return movieID
	}
	return n.ID.String()
}

func newNotification(t Type, email, name string, data map[string]string) *Notification {
	now := time.Now()
	return &Notification{
		ID:             uuid.New(),
		Type:           t,
		RecipientEmail: email,
		RecipientName:  name,
		Data:           data,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewBookingConfirmed builds the confirmation sent after settlement
func NewBookingConfirmed(email, name, movieTitle, showTime, seats, amount string) *Notification {
	return newNotification(TypeBookingConfirmed, email, name, map[string]string{
		"movie_title": movieTitle,
		"show_time":   showTime,
		"seats":       seats,
		"amount":      amount,
	})
}

// NewShowAdded builds the broadcast sent when shows are published for a
// movie; recipients are resolved by the consumer from favorites
func NewShowAdded(movieID, movieTitle string) *Notification {
	return newNotification(TypeShowAdded, "", "", map[string]string{
		"movie_id":    movieID,
		"movie_title": movieTitle,
	})
}

// NewShowReminder builds the reminder sent to paid bookings before showtime
func NewShowReminder(email, name, movieTitle, showTime string) *Notification {
	return newNotification(TypeShowReminder, email, name, map[string]string{
		"movie_title": movieTitle,
		"show_time":   showTime,
	})
}
