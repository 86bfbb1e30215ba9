// Package config loads and validates pipeline run configuration. Values come
// from an optional YAML file at the repository root, with CLI flags layered
// on top; secrets are never stored here, only the names needed to resolve
// them at runtime.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ontora-ai/pipelines/errors"
)

// FileName is the config file looked up at the repository root.
const FileName = ".ontora.yml"

// Config is the full pipeline configuration.
type Config struct {
	// Repo locates the project repository.
	Repo RepoConfig `yaml:"repo"`

	// Scan configures the security scan pipeline.
	Scan ScanConfig `yaml:"scan"`

	// Release configures the release pipeline.
	Release ReleaseConfig `yaml:"release"`

	// Artifacts selects and configures the artifact store.
	Artifacts ArtifactConfig `yaml:"artifacts"`

	// Notify configures chat notifications.
	Notify NotifyConfig `yaml:"notify"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// RepoConfig locates the repository and its hosting slug.
type RepoConfig struct {
	// Root is the repository root on disk.
	Root string `yaml:"root" validate:"required"`

	// Slug is the "owner/name" identifier at the hosting service.
	Slug string `yaml:"slug"`

	// Remote is the git remote tags are pushed to.
	Remote string `yaml:"remote" validate:"required"`
}

// ScanConfig controls the security scanners.
type ScanConfig struct {
	// Threshold is the severity at or above which findings fail the scan.
	Threshold string `yaml:"threshold" validate:"oneof=LOW MEDIUM HIGH CRITICAL"`

	// Image is an optional container image to scan alongside the filesystem.
	Image string `yaml:"image"`

	// ReportDir is where report artifacts are written. Empty disables them.
	ReportDir string `yaml:"report_dir"`

	// Disabled lists scanner job names excluded from the pipeline.
	Disabled []string `yaml:"disabled"`
}

// ReleaseConfig controls the release pipeline.
type ReleaseConfig struct {
	// Components limits the build tracks. Empty means all four.
	Components []string `yaml:"components" validate:"dive,oneof=rust python go typescript"`
}

// ArtifactConfig selects the artifact store backend.
type ArtifactConfig struct {
	// Backend is "local" or "s3".
	Backend string `yaml:"backend" validate:"oneof=local s3"`

	// Dir is the local store directory (local backend).
	Dir string `yaml:"dir"`

	// Bucket is the S3 bucket name (s3 backend).
	Bucket string `yaml:"bucket" validate:"required_if=Backend s3"`

	// Prefix scopes S3 keys.
	Prefix string `yaml:"prefix"`
}

// NotifyConfig controls chat notifications. The bot token is resolved from
// the environment at runtime; an absent token disables delivery.
type NotifyConfig struct {
	// Channel is the destination channel.
	Channel string `yaml:"channel"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format is json or text.
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns the baseline configuration used when no file or flags
// specify values.
func Default() Config {
	return Config{
		Repo: RepoConfig{
			Root:   ".",
			Remote: "origin",
		},
		Scan: ScanConfig{
			Threshold: "HIGH",
			ReportDir: "reports",
		},
		Artifacts: ArtifactConfig{
			Backend: "local",
			Dir:     "artifacts",
		},
		Notify: NotifyConfig{
			Channel: "#ontora-ci",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the config file from root when present, merges it over the
// defaults, and validates the result. A missing file is not an error.
func Load(root string) (Config, error) {
	cfg := Default()
	if root != "" {
		cfg.Repo.Root = root
	}

	path := filepath.Join(cfg.Repo.Root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return cfg, errors.Wrap(err, errors.CodeInvalidConfig, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config file")
	}
	if cfg.Repo.Root == "" {
		cfg.Repo.Root = root
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration against its declared constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid configuration")
	}
	return nil
}
