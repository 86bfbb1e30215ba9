// Package artifact provides storage for build-track archives. Jobs exchange
// artifacts exclusively by deterministic name through a Store, never by
// passing paths through ambient state; the fan-in release job recomputes
// names from component and version to locate what the tracks uploaded.
package artifact

import (
	"context"
)

// Store persists named artifacts between jobs. Implementations must be safe
// for concurrent use: the four build tracks upload in parallel.
type Store interface {
	// Put uploads the file at sourcePath under the given artifact name and
	// returns the stored location.
	Put(ctx context.Context, name, sourcePath string) (string, error)

	// Get downloads the named artifact to destPath.
	Get(ctx context.Context, name, destPath string) error

	// Exists reports whether the named artifact is present.
	Exists(ctx context.Context, name string) (bool, error)
}
