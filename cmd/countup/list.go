// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gogpu/countup/codec"
	"github.com/gogpu/countup/design"
	"github.com/gogpu/countup/digits"
	"github.com/gogpu/countup/export"
	"github.com/gogpu/countup/interp"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List export quality presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSCALE\tFPS\tBITRATE")
			for _, q := range export.Presets {
				name := q.Name
				if name == export.DefaultPreset {
					name += "*"
				}
				fmt.Fprintf(tw, "%s\t%gx\t%g\t%s\n", name, q.ResolutionScale, q.FrameRate,
					humanize.SIWithDigits(float64(q.Bitrate), 0, "bps"))
			}
			return tw.Flush()
		},
	}
}

func newEffectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "effects",
		Short: "List effects, transitions, easings, encoders and fonts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "effects:     %s\n", strings.Join(design.Effects(), ", "))
			fmt.Fprintf(w, "transitions: %s\n", strings.Join(digits.Kinds(), ", "))
			fmt.Fprintf(w, "easings:     %s\n", strings.Join(interp.Easings(), ", "))
			fmt.Fprintf(w, "encoders:    %s\n", strings.Join(codec.Encoders(), ", "))
			fmt.Fprintf(w, "fonts:       %s\n", strings.Join(design.Families(), ", "))
		},
	}
}
