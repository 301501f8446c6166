// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/capture"
	"github.com/gogpu/countup/design"
	"github.com/gogpu/countup/digits"
	"github.com/gogpu/countup/export"
	"github.com/gogpu/countup/interp"
)

// CounterSpec converts the counter section.
func (f File) CounterSpec() (interp.CounterSpec, error) {
	e, err := interp.ParseEasing(f.Counter.Easing)
	if err != nil {
		return interp.CounterSpec{}, err
	}
	return interp.CounterSpec{
		Start:    f.Counter.Start,
		End:      f.Counter.End,
		Duration: f.Counter.Duration.Std(),
		Easing:   e,
	}, nil
}

// TransitionConfig converts the transition section.
func (f File) TransitionConfig() (digits.TransitionConfig, error) {
	t := f.Transition
	kind, err := digits.ParseKind(t.Type)
	if err != nil {
		return digits.TransitionConfig{}, err
	}
	e, err := interp.ParseEasing(t.Easing)
	if err != nil {
		return digits.TransitionConfig{}, err
	}
	var dir digits.Direction
	switch strings.ToLower(t.Direction) {
	case "", "ltr", "left-to-right":
		dir = digits.LeftToRight
	case "rtl", "right-to-left":
		dir = digits.RightToLeft
	default:
		return digits.TransitionConfig{}, &countup.ConfigurationError{Field: "transition.direction", Reason: "unknown direction " + t.Direction}
	}
	cfg := digits.TransitionConfig{
		Kind:      kind,
		Duration:  t.Duration.Std(),
		Easing:    e,
		Delay:     t.Delay.Std(),
		Stagger:   t.Stagger.Std(),
		Direction: dir,
	}
	return cfg, cfg.Validate()
}

// Scene converts the design, background, caption and format sections.
func (f File) Scene() (design.Scene, error) {
	var p parser
	d := f.Design
	fidelity, err := design.ParseFidelity(d.Fidelity)
	if err != nil {
		return design.Scene{}, err
	}
	settings := design.Settings{
		Effect:    design.ParseEffect(d.Effect),
		Font:      p.font("design.font-family", d.FontFamily, d.FontSize),
		TextColor: p.parseColor("design.text-color", d.TextColor),
		Glow: design.GlowParams{
			Color:     p.parseColor("design.glow-color", d.GlowColor),
			Radius:    d.GlowRadius,
			Intensity: d.GlowAmount,
		},
		NeonColor: p.parseColor("design.neon-color", d.NeonColor),
		Stops:     p.stops("design.gradient", d.Stops),
		Outline:   design.OutlineParams{Color: p.parseColor("design.outline-color", d.Outline), Width: d.OutlineW},
		Shadow:    design.ShadowParams{Color: p.parseColor("design.shadow-color", d.Shadow), OffsetX: d.ShadowX, OffsetY: d.ShadowY},
		Fidelity:  fidelity,
	}

	b := f.Background
	mode, err := design.ParseBackgroundMode(b.Mode)
	if err != nil {
		return design.Scene{}, err
	}
	bg := design.Background{
		Mode:       mode,
		Color:      p.parseColor("background.color", b.Color),
		Custom:     p.parseColor("background.custom", b.Custom),
		Stops:      p.stops("background.gradient", b.Stops),
		Horizontal: b.Horizontal,
	}

	c := f.Caption
	pos, err := design.ParseCaptionPosition(c.Position)
	if err != nil {
		return design.Scene{}, err
	}
	caption := design.Caption{
		Enabled:  c.Enabled,
		Text:     c.Text,
		Position: pos,
		OffsetX:  c.OffsetX,
		OffsetY:  c.OffsetY,
		Opacity:  c.Opacity,
		Font:     p.font("caption.font-family", c.FontFamily, c.FontSize),
		Color:    p.parseColor("caption.color", c.Color),
	}

	format := design.Format{Prefix: f.Format.Prefix, Suffix: f.Format.Suffix, Grouping: f.Format.Grouping}
	if f.Format.Locale != "" {
		tag, err := language.Parse(f.Format.Locale)
		if err != nil {
			return design.Scene{}, &countup.ConfigurationError{Field: "format.locale", Reason: err.Error()}
		}
		format.Locale = tag
	}

	if p.err != nil {
		return design.Scene{}, p.err
	}
	return design.Scene{Design: settings, Background: bg, Format: format, Caption: caption}, nil
}

// CaptureOptions converts the recording section. Clock, Monitor and
// OnEvent are left for the caller.
func (f File) CaptureOptions() (capture.Options, error) {
	r := f.Recording
	opts := capture.Options{
		FPS:         r.FPS,
		MinFPS:      r.MinFPS,
		ChunkFrames: r.ChunkFrames,
		QueueSize:   r.QueueSize,
		MaxFrames:   r.MaxFrames,
	}
	if r.MaxMemory != "" {
		n, err := humanize.ParseBytes(r.MaxMemory)
		if err != nil {
			return capture.Options{}, &countup.ConfigurationError{Field: "recording.max-memory", Reason: err.Error()}
		}
		opts.MaxBytes = int64(n)
	}
	return opts, nil
}

// ExportRequest converts the export section.
func (f File) ExportRequest() (export.Request, error) {
	e := f.Export
	if _, err := export.LookupPreset(e.Preset); err != nil {
		return export.Request{}, err
	}
	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return export.Request{}, err
	}
	var p parser
	req := export.Request{
		Preset: e.Preset,
		Format: format,
		Codec:  e.Codec,
		Matte:  p.parseColor("export.matte", e.Matte),
		Loop:   e.Loop,
	}
	return req, p.err
}

// parser keeps the first color error so conversions read linearly.
type parser struct {
	err error
}

func (p *parser) parseColor(field, s string) color.Color {
	c, err := design.ParseColor(s)
	if err != nil {
		if p.err == nil {
			p.err = &countup.ConfigurationError{Field: field, Reason: fmt.Sprintf("bad color %q", s)}
		}
		return nil
	}
	return c
}

// font checks family against the bundled families. Empty selects the
// renderer default.
func (p *parser) font(field, family string, size float64) design.Font {
	if family != "" && !slices.Contains(design.Families(), family) && p.err == nil {
		p.err = &countup.ConfigurationError{
			Field:  field,
			Reason: fmt.Sprintf("unknown font family %q (have %s)", family, strings.Join(design.Families(), ", ")),
		}
	}
	return design.Font{Family: family, Size: size}
}

// stops spreads colors evenly from offset 0 to 1.
func (p *parser) stops(field string, list []string) []design.ColorStop {
	out := make([]design.ColorStop, 0, len(list))
	for i, s := range list {
		off := 0.0
		if len(list) > 1 {
			off = float64(i) / float64(len(list)-1)
		}
		c := p.parseColor(field, s)
		if c == nil && p.err == nil {
			p.err = &countup.ConfigurationError{Field: field, Reason: fmt.Sprintf("stop %d has no color", i)}
		}
		out = append(out, design.ColorStop{Offset: off, Color: c})
	}
	return out
}
