package domain

import "time"

// Subscriber is a registered alert recipient, identified by its chat ID on
// the messaging channel.
type Subscriber struct {
	ChatID            string     `json:"chat_id"`
	Username          string     `json:"username,omitempty"`
	FirstName         string     `json:"first_name,omitempty"`
	RegisteredAt      time.Time  `json:"registered_at"`
	LastNotification  *time.Time `json:"last_notification,omitempty"`
	NotificationCount int64      `json:"notification_count"`
}
