// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gogpu/countup/internal/ledger"
)

const historyLimit = 10

func newCreditsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Manage export credits",
	}
	cmd.AddCommand(newCreditsShowCmd(root))
	cmd.AddCommand(newCreditsAddCmd(root))
	return cmd
}

func newCreditsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the balance and recent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := ledger.Open(root.ledgerPath)
			if err != nil {
				return fmt.Errorf("failed to open ledger: %w", err)
			}
			defer func() { _ = l.Close() }()

			ctx := cmd.Context()
			n, err := l.Balance(ctx)
			if err != nil {
				return err
			}
			entries, err := l.History(ctx, historyLimit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "balance: %d\n", n)
			for _, e := range entries {
				fmt.Fprintf(w, "  %+d %-5s %s %s\n", e.Amount, e.Kind, humanize.Time(e.At), e.Note)
			}
			return nil
		},
	}
}

func newCreditsAddCmd(root *rootOptions) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "add N",
		Short: "Grant N credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid credit count %q", args[0])
			}
			l, err := ledger.Open(root.ledgerPath)
			if err != nil {
				return fmt.Errorf("failed to open ledger: %w", err)
			}
			defer func() { _ = l.Close() }()

			if err := l.Add(cmd.Context(), n, note); err != nil {
				return err
			}
			bal, err := l.Balance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d, balance: %d\n", n, bal)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "reason recorded with the grant")
	return cmd
}
