package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontora-ai/pipelines/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Repo.Root)
	assert.Equal(t, "origin", cfg.Repo.Remote)
	assert.Equal(t, "HIGH", cfg.Scan.Threshold)
	assert.Equal(t, "local", cfg.Artifacts.Backend)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	root := t.TempDir()
	content := `
scan:
  threshold: CRITICAL
  image: ghcr.io/ontora-ai/app:latest
notify:
  channel: "#security-alerts"
log:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "CRITICAL", cfg.Scan.Threshold)
	assert.Equal(t, "ghcr.io/ontora-ai/app:latest", cfg.Scan.Image)
	assert.Equal(t, "#security-alerts", cfg.Notify.Channel)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	// Untouched sections keep their defaults.
	assert.Equal(t, "origin", cfg.Repo.Remote)
	assert.Equal(t, "local", cfg.Artifacts.Backend)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad threshold", content: "scan:\n  threshold: EXTREME\n"},
		{name: "bad backend", content: "artifacts:\n  backend: ftp\n"},
		{name: "s3 without bucket", content: "artifacts:\n  backend: s3\n"},
		{name: "bad component", content: "release:\n  components: [haskell]\n"},
		{name: "bad log level", content: "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(tt.content), 0o644))

			_, err := Load(root)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("scan: ["), 0o644))

	_, err := Load(root)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
