package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ontora-ai/pipelines/artifact"
	"github.com/ontora-ai/pipelines/config"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/logging"
	"github.com/ontora-ai/pipelines/notify"
	"github.com/ontora-ai/pipelines/secrets"
)

// loadConfig builds the effective configuration from the config file and
// the shared CLI flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	repo, _ := cmd.Flags().GetString("repo")
	configRoot, _ := cmd.Flags().GetString("config")
	if configRoot == "" {
		configRoot = repo
	}

	cfg, err := config.Load(configRoot)
	if err != nil {
		return cfg, err
	}
	if repo != "" {
		cfg.Repo.Root = repo
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  logging.Format(cfg.Log.Format),
		Service: "ontora",
	})
}

// newStore builds the configured artifact store backend.
func newStore(ctx context.Context, cfg config.Config) (artifact.Store, error) {
	switch cfg.Artifacts.Backend {
	case "s3":
		return artifact.NewS3Store(ctx, cfg.Artifacts.Bucket, cfg.Artifacts.Prefix)
	case "local":
		return artifact.NewLocalStore(cfg.Artifacts.Dir)
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig,
			"unknown artifact backend %q", cfg.Artifacts.Backend)
	}
}

// newNotifier builds the chat notifier. An absent bot token disables
// delivery rather than failing the run.
func newNotifier(ctx context.Context, cfg config.Config, resolver secrets.Resolver, logger *slog.Logger) (notify.Notifier, error) {
	token, err := secrets.Optional(ctx, resolver, secrets.SlackBotToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		logger.Info("notification token absent, notifications disabled")
		return notify.Noop{}, nil
	}
	return notify.NewChat(token, cfg.Notify.Channel)
}
