package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ontora-ai/pipelines/git"
	"github.com/ontora-ai/pipelines/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Version resolution helpers",
	}
	cmd.AddCommand(newVersionResolveCmd())
	return cmd
}

func newVersionResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the release decision for the current history",
		RunE:  versionResolveExecute,
	}
	cmd.Flags().String("type", "", "manual release type (major|minor|patch); empty analyzes commit history")
	cmd.Flags().Bool("pre", false, "mark the release as a pre-release (manual dispatch only)")
	return cmd
}

func versionResolveExecute(cmd *cobra.Command, _ []string) error {
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

	decision, err := version.NewResolver(repo, version.WithLogger(logger)).Resolve(ctx, trigger)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(decision)
	default:
		if !decision.ShouldRelease() {
			fmt.Fprintln(cmd.OutOrStdout(), "no release needed")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s release: %s (pre-release: %t)\n",
			decision.Type, decision.NewVersion, decision.PreRelease)
		return nil
	}
}
