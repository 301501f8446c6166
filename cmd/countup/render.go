// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/capture"
	"github.com/gogpu/countup/export"
	"github.com/gogpu/countup/internal/config"
	"github.com/gogpu/countup/internal/ledger"
	"github.com/gogpu/countup/perf"
	"github.com/gogpu/countup/player"
	"github.com/gogpu/countup/surface"
)

type renderOptions struct {
	out     string
	format  string
	preset  string
	codec   string
	fps     float64
	hold    time.Duration
	credits bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the configured counter and export it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "countup", "output file; the codec extension is added when missing")
	cmd.Flags().StringVar(&opts.format, "format", "", "video, gif or overlay (default from config)")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "quality preset (default from config)")
	cmd.Flags().StringVar(&opts.codec, "codec", "", "encoder name (default picked per format)")
	cmd.Flags().Float64Var(&opts.fps, "fps", 0, "render and capture rate (default from config)")
	cmd.Flags().DurationVar(&opts.hold, "hold", 500*time.Millisecond, "time to keep rendering after the counter settles")
	cmd.Flags().BoolVar(&opts.credits, "credits", false, "spend one credit from the ledger")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions) error {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyString(cmd, "format", &cfg.Export.Format, opts.format)
	applyString(cmd, "preset", &cfg.Export.Preset, opts.preset)
	applyString(cmd, "codec", &cfg.Export.Codec, opts.codec)
	if cmd.Flags().Changed("fps") {
		cfg.Recording.FPS = opts.fps
	}

	spec, err := cfg.CounterSpec()
	if err != nil {
		return err
	}
	transition, err := cfg.TransitionConfig()
	if err != nil {
		return err
	}
	scene, err := cfg.Scene()
	if err != nil {
		return err
	}
	copts, err := cfg.CaptureOptions()
	if err != nil {
		return err
	}
	req, err := cfg.ExportRequest()
	if err != nil {
		return err
	}
	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		return &countup.ConfigurationError{Field: "canvas", Reason: "width and height must be positive"}
	}
	fps := cfg.Recording.FPS
	if fps <= 0 {
		return &countup.ConfigurationError{Field: "recording.fps", Reason: "must be positive"}
	}

	var sopts []surface.Option
	if !cfg.Canvas.Alpha {
		sopts = append(sopts, surface.WithoutAlpha())
	}
	img := surface.NewImage(cfg.Canvas.Width, cfg.Canvas.Height, sopts...)

	// Offline frames are evenly spaced, so the monitor only flags a real
	// shortfall against the requested rate.
	clock := countup.NewManualClock(time.Unix(0, 0).UTC())
	mon := perf.NewMonitor(perf.Options{Threshold: fps * 0.75})
	copts.Clock = clock
	copts.Monitor = mon
	copts.OnEvent = logEvent
	pipe := capture.New(copts)

	p, err := player.New(player.Config{
		Counter:    spec,
		Decimals:   cfg.Counter.Decimals,
		Transition: transition,
		Scene:      scene,
		Surface:    img,
		Clock:      clock,
		Pipeline:   pipe,
		Monitor:    mon,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := p.StartRecording(); err != nil {
		return err
	}
	frames, err := p.Step(ctx, clock, fps, opts.hold)
	if err != nil {
		_ = p.CancelRecording()
		return fmt.Errorf("failed to render: %w", err)
	}
	if err := p.StopRecording(); err != nil && pipe.State() != capture.Stopped {
		return err
	}

	var ent export.Entitlement
	if opts.credits {
		l, err := ledger.Open(root.ledgerPath)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer func() { _ = l.Close() }()
		ent = l
	}
	art, err := export.NewManager(ent).Export(ctx, pipe, req)
	if err != nil {
		return err
	}

	out := opts.out
	if filepath.Ext(out) == "" {
		out += art.Extension
	}
	if err := os.WriteFile(out, art.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "wrote %s (%s, %s %dx%d, %d frames, %s, %d rendered)\n",
		out, humanize.Bytes(uint64(len(art.Data))), art.Codec, art.Width, art.Height,
		art.Frames, art.Duration, frames)
	if art.Flattened {
		fmt.Fprintln(w, "note: transparency was flattened onto the matte color")
	}
	for _, s := range mon.Suggestions() {
		fmt.Fprintf(w, "hint (%s): %s\n", s.Impact, s.Suggestion)
	}
	return nil
}

func applyString(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func logEvent(e capture.Event) {
	log := countup.Logger()
	switch e.Kind {
	case capture.EventCaptureFailed:
		log.Warn("capture failed", "seq", e.Seq, "err", e.Err)
	case capture.EventDegraded:
		log.Warn("capture rate lowered", "fps", e.FPS)
	case capture.EventBudgetExceeded:
		log.Warn("recording budget reached", "state", e.State.String())
	default:
		log.Debug("capture event", "kind", e.Kind.String(), "state", e.State.String())
	}
}
