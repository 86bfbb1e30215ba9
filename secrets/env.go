package secrets

import (
	"context"
	"fmt"
	"os"
)

// Env resolves secrets from process environment variables. This matches how
// the host automation platform injects configured secrets into jobs.
type Env struct {
	// Prefix is prepended to every name before lookup (e.g., "ONTORA_").
	Prefix string
}

// NewEnv creates an environment-backed resolver.
func NewEnv() *Env {
	return &Env{}
}

// Resolve implements Resolver.
func (e *Env) Resolve(_ context.Context, name string) (string, error) {
	value, ok := os.LookupEnv(e.Prefix + name)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return value, nil
}

// Static is a fixed map of secrets for tests.
type Static map[string]string

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, name string) (string, error) {
	value, ok := s[name]
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return value, nil
}
