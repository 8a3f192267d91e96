/*
Package main is the entry point for the toolsel CLI.

toolsel measures whether narrowing an LLM's visible tool set to the top-K
embedding-similar tools keeps tool-selection accuracy, and how much prompt
size that saves compared to handing the model the full catalog.

Usage:

	toolsel [flags]
	toolsel check

Examples:

	# 100 tools, 400 queries, HyDE on
	toolsel

	# Smaller run without query expansion
	toolsel --tools 30 --queries 50 --hyde false --seed 7
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/toolsel/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f runFlags

	rootCmd := &cobra.Command{
		Use:   "toolsel",
		Short: "Evaluate embedding-based tool narrowing for LLM tool selection",
		Long: `toolsel builds (or reuses) a deduplicated synthetic tool catalog and a set of
test queries, then for every query retrieves the top-K most similar tools,
optionally expanding the query with a hypothetical tool description first (HyDE).

The report compares selection accuracy and a character-based prompt size proxy
against enumerating the whole catalog.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExperiment(cmd, f)
		},
	}

	f.register(rootCmd)
	rootCmd.AddCommand(newCheckCmd(&f))
	return rootCmd
}

func newCheckCmd(f *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check provider and storage availability",
		Long: `Run the same health checks the status server exposes on /healthz and
print the report as JSON. Exits non-zero unless every check passes.`,
		Example: `  toolsel check
  ENV=prod toolsel check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, *f)
		},
	}
}
