// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package player is the tick scheduler that ties the counter together.
//
// Each Tick reads the clock once and runs, in order: the value
// interpolator, the digit engine, the renderer, the performance monitor
// and the capture pipeline. Everything up to the render is synchronous;
// capture only queues a snapshot, so recording never delays a frame.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/capture"
	"github.com/gogpu/countup/design"
	"github.com/gogpu/countup/digits"
	"github.com/gogpu/countup/interp"
	"github.com/gogpu/countup/perf"
	"github.com/gogpu/countup/surface"
)

// Config wires a Player. Surface is required; Pipeline and Monitor are
// optional.
type Config struct {
	Counter    interp.CounterSpec
	Decimals   int
	Transition digits.TransitionConfig
	Scene      design.Scene
	Surface    surface.Surface
	Clock      countup.Clock
	Pipeline   *capture.Pipeline
	Monitor    *perf.Monitor
	// TileCache bounds the renderer's glyph cache.
	TileCache int
	// AutoOptimize lowers effect fidelity one level whenever the monitor
	// reports sustained low fps.
	AutoOptimize bool
}

// FrameInfo describes one tick.
type FrameInfo struct {
	At      time.Time
	Value   float64
	Changed int
	// Captured is true when the pipeline queued this frame.
	Captured bool
	// Done is true once the value has reached its end and every slot is
	// idle.
	Done bool
}

// Player owns one counter animation and its render target.
// It is not safe for concurrent use.
type Player struct {
	cfg      Config
	clock    countup.Clock
	in       *interp.Interpolator
	engine   *digits.Engine
	renderer *design.Renderer
	start    time.Time
	value    float64
}

// New validates cfg and returns a player positioned at the start value.
func New(cfg Config) (*Player, error) {
	if cfg.Surface == nil {
		return nil, &countup.ConfigurationError{Field: "surface", Reason: "render target is required"}
	}
	if cfg.Decimals < 0 || cfg.Decimals > digits.MaxFracDigits {
		return nil, &countup.ConfigurationError{
			Field:  "decimals",
			Reason: fmt.Sprintf("must be between 0 and %d", digits.MaxFracDigits),
		}
	}
	if cfg.Transition == (digits.TransitionConfig{}) {
		cfg.Transition = digits.DefaultTransition()
	}
	if cfg.Clock == nil {
		cfg.Clock = countup.SystemClock{}
	}
	in, err := interp.New(cfg.Counter)
	if err != nil {
		return nil, err
	}
	layout := digits.NewLayout(cfg.Counter.Start, cfg.Counter.End, cfg.Decimals)
	engine, err := digits.NewEngine(layout, cfg.Transition)
	if err != nil {
		return nil, err
	}
	p := &Player{
		cfg:      cfg,
		clock:    cfg.Clock,
		in:       in,
		engine:   engine,
		renderer: design.NewRenderer(cfg.TileCache),
	}
	p.Restart()
	return p, nil
}

// Restart replays the animation from the start value.
func (p *Player) Restart() {
	p.start = p.clock.Now()
	p.value = interp.Round(p.cfg.Counter.Start, p.cfg.Decimals)
	p.engine.Reset(p.engine.Layout())
	p.engine.Seed(p.value)
	countup.Logger().Debug("player: restart", "start", p.cfg.Counter.Start, "end", p.cfg.Counter.End)
}

// SetCounter replaces the counter spec. The slot layout is re-derived and
// the animation restarts.
func (p *Player) SetCounter(spec interp.CounterSpec) error {
	in, err := interp.New(spec)
	if err != nil {
		return err
	}
	p.cfg.Counter = spec
	p.in = in
	p.engine.Reset(digits.NewLayout(spec.Start, spec.End, p.cfg.Decimals))
	p.Restart()
	return nil
}

// Scene returns the current scene.
func (p *Player) Scene() design.Scene { return p.cfg.Scene }

// Value returns the value shown by the last tick.
func (p *Player) Value() float64 { return p.value }

// Elapsed returns the animation time since the last restart.
func (p *Player) Elapsed() time.Duration { return p.clock.Now().Sub(p.start) }

// Layout returns the slot layout.
func (p *Player) Layout() digits.Layout { return p.engine.Layout() }

// Tick renders one frame at the current clock time.
func (p *Player) Tick() (FrameInfo, error) {
	now := p.clock.Now()
	elapsed := now.Sub(p.start)
	p.value = interp.Round(p.in.At(elapsed), p.cfg.Decimals)
	changed := p.engine.Update(p.value, now)

	frame := design.Frame{
		Layout:   p.engine.Layout(),
		Slots:    p.engine.Frame(now),
		Negative: p.engine.Negative(),
	}
	if err := p.renderer.Render(p.cfg.Surface, frame, p.cfg.Scene); err != nil {
		return FrameInfo{}, err
	}

	if m := p.cfg.Monitor; m != nil {
		m.Record(now, p.clock.Now().Sub(now))
		if p.cfg.AutoOptimize && m.ShouldOptimize() {
			p.lowerFidelity(m)
		}
	}

	info := FrameInfo{
		At:      now,
		Value:   p.value,
		Changed: changed,
		Done:    p.in.Done(elapsed) && !p.engine.Busy(),
	}
	if p.cfg.Pipeline != nil {
		info.Captured = p.cfg.Pipeline.Capture(p.cfg.Surface)
	}
	return info, nil
}

func (p *Player) lowerFidelity(m *perf.Monitor) {
	f := p.cfg.Scene.Design.Fidelity
	if f >= design.FidelityMinimal {
		return
	}
	p.cfg.Scene.Design.Fidelity = f + 1
	countup.Logger().Warn("player: lowering effect fidelity",
		"from", f.String(), "to", p.cfg.Scene.Design.Fidelity.String(), "avg_fps", m.AverageFPS())
	// A fresh window must show the drop again before the next step.
	m.Reset()
}

// Run ticks at fps until ctx is done or a tick fails.
func (p *Player) Run(ctx context.Context, fps float64) error {
	if fps <= 0 {
		return &countup.ConfigurationError{Field: "fps", Reason: "must be positive"}
	}
	t := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := p.Tick(); err != nil {
				return err
			}
		}
	}
}

// Step renders offline on a manual clock: it ticks at fps until the
// animation is done, keeps ticking for hold, and returns the number of
// frames rendered. The player must have been created with clock.
func (p *Player) Step(ctx context.Context, clock *countup.ManualClock, fps float64, hold time.Duration) (int, error) {
	if fps <= 0 {
		return 0, &countup.ConfigurationError{Field: "fps", Reason: "must be positive"}
	}
	step := time.Duration(float64(time.Second) / fps)
	var (
		frames   int
		doneAt   time.Time
		finished bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		info, err := p.Tick()
		if err != nil {
			return frames, err
		}
		frames++
		if info.Done && !finished {
			finished, doneAt = true, info.At
		}
		if finished && info.At.Sub(doneAt) >= hold {
			return frames, nil
		}
		clock.Advance(step)
	}
}
