// Package secrets provides provider-agnostic resolution of the optional
// credentials the pipelines consume: the static-analysis service token and
// the chat-notification bot token. Both are best-effort; a missing secret
// degrades the consuming feature rather than failing a run.
package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a secret is not available from the provider.
// Consumers of optional secrets treat this as "feature disabled".
var ErrNotFound = errors.New("secret not found")

// Well-known secret names used by the pipelines.
const (
	// SemgrepToken is the static-analysis service token.
	SemgrepToken = "SEMGREP_APP_TOKEN"

	// SlackBotToken is the chat-notification bot token.
	SlackBotToken = "SLACK_BOT_TOKEN"

	// ReleaseToken authenticates release publication and tag pushes.
	ReleaseToken = "GITHUB_TOKEN"
)

// Resolver retrieves secrets by name.
type Resolver interface {
	// Resolve returns the secret value, or ErrNotFound when absent.
	Resolve(ctx context.Context, name string) (string, error)
}

// Optional resolves a secret that may legitimately be absent. It returns the
// empty string (and no error) when the secret is not found; other resolution
// failures are returned as errors.
func Optional(ctx context.Context, r Resolver, name string) (string, error) {
	value, err := r.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
