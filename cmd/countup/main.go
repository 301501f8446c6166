// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command countup renders animated counters to APNG, AVI or GIF files.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/internal/config"
)

type rootOptions struct {
	configPath string
	ledgerPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "countup",
		Short:         "Animated counter renderer",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			countup.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "settings file (.toml or .yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.ledgerPath, "ledger", config.DefaultLedgerPath(), "export credit database")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(newRenderCmd(opts))
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newEffectsCmd())
	rootCmd.AddCommand(newCreditsCmd(opts))

	return rootCmd
}
