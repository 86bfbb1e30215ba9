// Package notify delivers pipeline status messages to a chat channel.
// Delivery is best effort: callers log failures and continue, a broken
// notifier never changes the outcome of a pipeline run.
package notify

import (
	"context"
	"log/slog"
)

// Message is a single notification.
type Message struct {
	// Channel identifies the destination channel.
	Channel string

	// Title is a short headline (e.g., "Release v1.4.0 published").
	Title string

	// Text is the message body.
	Text string

	// Success controls the message accent. Failed runs render with a
	// warning accent so they stand out in the channel.
	Success bool
}

// Notifier sends messages to a destination.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Noop discards all messages. Used when no notification token is
// configured, which keeps notification call sites unconditional.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, Message) error { return nil }

// BestEffort sends msg through n and logs any delivery failure instead of
// returning it.
func BestEffort(ctx context.Context, n Notifier, logger *slog.Logger, msg Message) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, msg); err != nil {
		logger.Warn("notification delivery failed",
			"channel", msg.Channel,
			"title", msg.Title,
			"error", err)
	}
}
