package main

import (
	"github.com/spf13/cobra"

	"github.com/ontora-ai/pipelines/config"
	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/errors"
	"github.com/ontora-ai/pipelines/executor"
	"github.com/ontora-ai/pipelines/git"
	"github.com/ontora-ai/pipelines/pipeline"
	"github.com/ontora-ai/pipelines/release"
	"github.com/ontora-ai/pipelines/secrets"
	"github.com/ontora-ai/pipelines/version"
)

func newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Run the release coordinator pipeline",
		RunE:  releaseExecute,
	}
	cmd.Flags().String("type", "", "manual release type (major|minor|patch); empty analyzes commit history")
	cmd.Flags().Bool("pre", false, "mark the release as a pre-release (manual dispatch only)")
	return cmd
}

// releaseTrigger derives the trigger context from the command flags. A
// --type flag means manual dispatch; otherwise the run behaves like a push
// trigger and infers the release from history.
func releaseTrigger(cmd *cobra.Command) (domain.TriggerContext, error) {
	releaseType, _ := cmd.Flags().GetString("type")
	pre, _ := cmd.Flags().GetBool("pre")

	if releaseType == "" {
		if pre {
			return domain.TriggerContext{}, errors.New(errors.CodeInvalidInput,
				"--pre requires --type")
		}
		return domain.TriggerContext{Type: domain.TriggerPush}, nil
	}

	return domain.TriggerContext{
		Type:        domain.TriggerManual,
		ReleaseType: domain.ReleaseType(releaseType),
		PreRelease:  pre,
	}, nil
}

func releaseExecute(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	trigger, err := releaseTrigger(cmd)
	if err != nil {
		return err
	}

	repo, err := git.Open(ctx, cfg.Repo.Root)
	if err != nil {
		return err
	}

	resolver := secrets.NewEnv()
	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(ctx, cfg, resolver, logger)
	if err != nil {
		return err
	}

	token, err := resolver.Resolve(ctx, secrets.ReleaseToken)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig,
			"release publication requires "+secrets.ReleaseToken)
	}
	publisher, err := release.NewHTTPPublisher(cfg.Repo.Slug, token)
	if err != nil {
		return err
	}

	coordinator, err := release.NewCoordinator(release.CoordinatorConfig{
		Repo:       repo,
		Resolver:   version.NewResolver(repo, version.WithLogger(logger)),
		Store:      store,
		Publisher:  publisher,
		Notifier:   notifier,
		Runner:     executor.NewLocal(),
		Toolchains: selectToolchains(cfg),
		RepoDir:    cfg.Repo.Root,
		Remote:     cfg.Repo.Remote,
		Channel:    cfg.Notify.Channel,
	})
	if err != nil {
		return err
	}

	p, err := coordinator.Pipeline()
	if err != nil {
		return err
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		renderPlan(cmd.OutOrStdout(), p)
		return nil
	}

	engine := pipeline.NewEngine(pipeline.WithEngineLogger(logger))
	run, _, err := engine.Run(ctx, p, trigger)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return renderRun(cmd.OutOrStdout(), format, run)
}

// selectToolchains honors the configured component subset.
func selectToolchains(cfg config.Config) []release.Toolchain {
	all := release.DefaultToolchains()
	if len(cfg.Release.Components) == 0 {
		return all
	}

	var selected []release.Toolchain
	for _, tc := range all {
		for _, name := range cfg.Release.Components {
			if tc.Component().String() == name {
				selected = append(selected, tc)
				break
			}
		}
	}
	return selected
}
