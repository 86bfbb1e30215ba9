package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ontora",
		Short:         "Ontora runs the project's security scan and release pipelines",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("repo", "", "repository root (defaults to the current directory)")
	persistent.String("config", "", "config file root override")
	persistent.Bool("dry-run", false, "print the pipeline plan without executing it")
	persistent.String("format", "text", "output format (text|json)")

	cmd.AddCommand(newSecurityScanCmd())
	cmd.AddCommand(newReleaseCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
