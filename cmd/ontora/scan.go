package main

import (
	"context"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ontora-ai/pipelines/config"
	"github.com/ontora-ai/pipelines/domain"
	"github.com/ontora-ai/pipelines/executor"
	"github.com/ontora-ai/pipelines/pipeline"
	"github.com/ontora-ai/pipelines/scan"
	"github.com/ontora-ai/pipelines/secrets"
)

func newSecurityScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security-scan",
		Short: "Run the security scan pipeline",
		RunE:  securityScanExecute,
	}
	cmd.Flags().String("trigger", "push", "trigger type (push|pull_request|schedule|manual)")
	return cmd
}

func securityScanExecute(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	resolver := secrets.NewEnv()
	notifier, err := newNotifier(ctx, cfg, resolver, logger)
	if err != nil {
		return err
	}

	scanners, err := buildScanners(ctx, cfg, resolver, logger)
	if err != nil {
		return err
	}

	p, err := scan.NewPipeline(scanners,
		scan.Target{Dir: cfg.Repo.Root, Image: cfg.Scan.Image},
		domain.Severity(cfg.Scan.Threshold),
		cfg.Scan.ReportDir,
		notifier,
		cfg.Notify.Channel,
	)
	if err != nil {
		return err
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		renderPlan(cmd.OutOrStdout(), p)
		return nil
	}

	triggerType, _ := cmd.Flags().GetString("trigger")
	engine := pipeline.NewEngine(pipeline.WithEngineLogger(logger))
	run, _, err := engine.Run(ctx, p, domain.TriggerContext{Type: domain.TriggerType(triggerType)})
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return renderRun(cmd.OutOrStdout(), format, run)
}

// buildScanners assembles the enabled scanners in pipeline order.
func buildScanners(ctx context.Context, cfg config.Config, resolver secrets.Resolver, logger *slog.Logger) ([]scan.Scanner, error) {
	runner := executor.NewLocal()

	semgrepToken, err := secrets.Optional(ctx, resolver, secrets.SemgrepToken)
	if err != nil {
		return nil, err
	}

	all := []scan.Scanner{
		scan.NewDependabot(runner, logger),
		scan.NewDependencyCheck(runner),
		scan.NewTrivy(runner, logger),
		scan.NewSemgrep(runner, semgrepToken),
	}

	var enabled []scan.Scanner
	for _, s := range all {
		if !slices.Contains(cfg.Scan.Disabled, s.Name()) {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}
