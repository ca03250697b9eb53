package domain

import (
	"context"
	"time"
)

// ListOpts carries standard pagination parameters.
type ListOpts struct {
	Limit  int
	Offset int
}

// SubscriberStore persists the set of registered alert recipients.
type SubscriberStore interface {
	// Register adds a subscriber. Returns ErrAlreadyExists when the chat ID
	// is already registered.
	Register(ctx context.Context, sub Subscriber) error
	// Unregister removes a subscriber. Returns ErrNotFound when absent.
	Unregister(ctx context.Context, chatID string) error
	Get(ctx context.Context, chatID string) (Subscriber, error)
	List(ctx context.Context) ([]Subscriber, error)
	// RecordNotification bumps the subscriber's delivery counter and
	// last-notification timestamp.
	RecordNotification(ctx context.Context, chatID string, at time.Time) error
	Count(ctx context.Context) (int, error)
}

// AlertLogStore records every delivered alert for later inspection. This is
// an audit of sent notifications, not a store of odds history.
type AlertLogStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	ListRecent(ctx context.Context, opts ListOpts) ([]Opportunity, error)
}
