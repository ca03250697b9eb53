package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// SubscriberStore implements domain.SubscriberStore using PostgreSQL.
type SubscriberStore struct {
	pool *pgxpool.Pool
}

// NewSubscriberStore creates a SubscriberStore backed by the given pool.
func NewSubscriberStore(pool *pgxpool.Pool) *SubscriberStore {
	return &SubscriberStore{pool: pool}
}

// Register inserts a new subscriber. Returns domain.ErrAlreadyExists when the
// chat ID is already registered.
func (s *SubscriberStore) Register(ctx context.Context, sub domain.Subscriber) error {
	const query = `
		INSERT INTO subscribers (chat_id, username, first_name, registered_at)
		VALUES ($1, $2, $3, $4)`

	registeredAt := sub.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, query, sub.ChatID, sub.Username, sub.FirstName, registeredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("postgres: register subscriber %s: %w", sub.ChatID, err)
	}
	return nil
}

// Unregister deletes a subscriber. Returns domain.ErrNotFound when absent.
func (s *SubscriberStore) Unregister(ctx context.Context, chatID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subscribers WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("postgres: unregister subscriber %s: %w", chatID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get returns a single subscriber by chat ID.
func (s *SubscriberStore) Get(ctx context.Context, chatID string) (domain.Subscriber, error) {
	const query = `
		SELECT chat_id, username, first_name, registered_at, last_notification, notification_count
		FROM subscribers WHERE chat_id = $1`

	row := s.pool.QueryRow(ctx, query, chatID)
	sub, err := scanSubscriber(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Subscriber{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("postgres: get subscriber %s: %w", chatID, err)
	}
	return sub, nil
}

// List returns all subscribers ordered by registration time.
func (s *SubscriberStore) List(ctx context.Context) ([]domain.Subscriber, error) {
	const query = `
		SELECT chat_id, username, first_name, registered_at, last_notification, notification_count
		FROM subscribers ORDER BY registered_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// RecordNotification bumps the delivery counter and timestamp.
func (s *SubscriberStore) RecordNotification(ctx context.Context, chatID string, at time.Time) error {
	const query = `
		UPDATE subscribers
		SET last_notification = $2, notification_count = notification_count + 1
		WHERE chat_id = $1`

	tag, err := s.pool.Exec(ctx, query, chatID, at)
	if err != nil {
		return fmt.Errorf("postgres: record notification %s: %w", chatID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of registered subscribers.
func (s *SubscriberStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count subscribers: %w", err)
	}
	return n, nil
}

func scanSubscriber(row pgx.Row) (domain.Subscriber, error) {
	var sub domain.Subscriber
	err := row.Scan(
		&sub.ChatID, &sub.Username, &sub.FirstName,
		&sub.RegisteredAt, &sub.LastNotification, &sub.NotificationCount,
	)
	return sub, err
}

var _ domain.SubscriberStore = (*SubscriberStore)(nil)
