// Package file implements the subscriber store as a JSON file on disk. It is
// the default backend: state is loaded once at startup, mutated in memory,
// and flushed back after every change so a crash loses at most the last
// mutation.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// SubscriberStore implements domain.SubscriberStore on a JSON file. Safe for
// concurrent use.
type SubscriberStore struct {
	path string
	mu   sync.Mutex
	subs map[string]domain.Subscriber
}

// fileFormat is the on-disk layout.
type fileFormat struct {
	Subscribers []domain.Subscriber `json:"subscribers"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewSubscriberStore opens (or initializes) the store at path. A missing file
// starts an empty store; a present-but-corrupt file is an error.
func NewSubscriberStore(path string) (*SubscriberStore, error) {
	s := &SubscriberStore{
		path: path,
		subs: make(map[string]domain.Subscriber),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: read subscribers %s: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("file: parse subscribers %s: %w", path, err)
	}
	for _, sub := range f.Subscribers {
		s.subs[sub.ChatID] = sub
	}
	return s, nil
}

// Register adds a subscriber and flushes. Returns domain.ErrAlreadyExists for
// a duplicate chat ID.
func (s *SubscriberStore) Register(_ context.Context, sub domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.ChatID]; ok {
		return domain.ErrAlreadyExists
	}
	if sub.RegisteredAt.IsZero() {
		sub.RegisteredAt = time.Now().UTC()
	}
	s.subs[sub.ChatID] = sub
	return s.flushLocked()
}

// Unregister removes a subscriber and flushes. Returns domain.ErrNotFound
// when absent.
func (s *SubscriberStore) Unregister(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[chatID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.subs, chatID)
	return s.flushLocked()
}

// Get returns a single subscriber by chat ID.
func (s *SubscriberStore) Get(_ context.Context, chatID string) (domain.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[chatID]
	if !ok {
		return domain.Subscriber{}, domain.ErrNotFound
	}
	return sub, nil
}

// List returns all subscribers ordered by registration time.
func (s *SubscriberStore) List(_ context.Context) ([]domain.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}

// RecordNotification bumps the delivery counter and timestamp and flushes.
func (s *SubscriberStore) RecordNotification(_ context.Context, chatID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[chatID]
	if !ok {
		return domain.ErrNotFound
	}
	sub.LastNotification = &at
	sub.NotificationCount++
	s.subs[chatID] = sub
	return s.flushLocked()
}

// Count returns the number of registered subscribers.
func (s *SubscriberStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs), nil
}

// flushLocked writes the store to disk via a temp file + rename so readers
// never observe a partial file. Caller must hold s.mu.
func (s *SubscriberStore) flushLocked() error {
	subs := make([]domain.Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].RegisteredAt.Before(subs[j].RegisteredAt)
	})

	data, err := json.MarshalIndent(fileFormat{
		Subscribers: subs,
		UpdatedAt:   time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("file: marshal subscribers: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".subscribers-*.json")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file: write subscribers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file: replace subscribers %s: %w", s.path, err)
	}
	return nil
}

var _ domain.SubscriberStore = (*SubscriberStore)(nil)
