package release

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cespare/xxhash/v2"

	"github.com/ontora-ai/pipelines/domain"
)

// cacheDir returns the dependency cache directory for a component, keyed by
// the content hash of its lockfile so a lockfile change rolls the cache.
// A missing lockfile gets a shared fallback key; the cache is best effort
// and never fails a build.
func cacheDir(component domain.Component, lockPath string) (string, error) {
	key := "no-lockfile"
	if data, err := os.ReadFile(lockPath); err == nil {
		key = fmt.Sprintf("%016x", xxhash.Sum64(data))
	}

	dir := filepath.Join(xdg.CacheHome, domain.ProjectName, component.String(), key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
