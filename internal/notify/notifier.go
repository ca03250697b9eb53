// Package notify delivers alert messages. Notifications are dispatched to all
// registered senders (Telegram, Discord, etc.); senders that support per-chat
// fan-out additionally deliver to every registered subscriber.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is the interface each notification channel must implement.
type Sender interface {
	// Send delivers a message with the given title to the channel's default
	// destination.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier (e.g. "telegram").
	Name() string
}

// RecipientSender is implemented by channels that can deliver to individual
// recipients (chat IDs) in addition to their default destination.
type RecipientSender interface {
	Sender
	SendTo(ctx context.Context, recipient, title, message string) error
}

// Result summarizes one broadcast for observability.
type Result struct {
	Delivered int
	Failed    int
}

// Notifier dispatches messages to one or more Senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that delivers to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Broadcast sends the message through every sender. Senders implementing
// RecipientSender also deliver to each recipient; failures are logged and
// counted but never stop the remaining deliveries (best-effort, at most
// once). The combined error reports how many deliveries failed.
func (n *Notifier) Broadcast(ctx context.Context, title, message string, recipients []string) (Result, error) {
	if len(n.senders) == 0 {
		n.logger.InfoContext(ctx, "no senders configured, dropping message",
			slog.String("title", title),
		)
		return Result{}, nil
	}

	var res Result
	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			res.Failed++
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
		} else {
			res.Delivered++
		}

		rs, ok := s.(RecipientSender)
		if !ok {
			continue
		}
		for _, r := range recipients {
			if err := rs.SendTo(ctx, r, title, message); err != nil {
				res.Failed++
				errs = append(errs, fmt.Sprintf("%s->%s: %v", s.Name(), r, err))
				n.logger.ErrorContext(ctx, "recipient delivery failed",
					slog.String("sender", s.Name()),
					slog.String("recipient", r),
					slog.String("error", err.Error()),
				)
			} else {
				res.Delivered++
			}
		}
	}

	if len(errs) > 0 {
		return res, fmt.Errorf("notify: %d delivery(ies) failed: %s", res.Failed, strings.Join(errs, "; "))
	}
	return res, nil
}

// Senders returns the number of configured senders.
func (n *Notifier) Senders() int {
	return len(n.senders)
}
