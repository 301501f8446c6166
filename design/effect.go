// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/countup/surface"
)

// Effect is a named visual treatment for counter text.
type Effect uint8

const (
	Classic Effect = iota
	Glow
	Neon
	Gradient
	Fire
	Outline
	Shadow
	Chrome
)

var effectIDs = [...]string{
	Classic:  "classic",
	Glow:     "glow",
	Neon:     "neon",
	Gradient: "gradient",
	Fire:     "fire",
	Outline:  "outline",
	Shadow:   "shadow",
	Chrome:   "chrome",
}

// String returns the effect id.
func (e Effect) String() string {
	if int(e) < len(effectIDs) {
		return effectIDs[e]
	}
	return effectIDs[Classic]
}

// Effects lists every effect id.
func Effects() []string {
	return append([]string(nil), effectIDs[:]...)
}

// ParseEffect maps an id to its effect. Unknown ids select Classic.
func ParseEffect(id string) Effect {
	for i, name := range effectIDs {
		if strings.EqualFold(name, strings.TrimSpace(id)) {
			return Effect(i)
		}
	}
	return Classic
}

// PaintOp is one text fill: Text drawn with its baseline origin at (X, Y).
type PaintOp struct {
	Text  string
	X, Y  float64
	Paint surface.Paint
}

// ring yields n offsets evenly spaced on a circle of radius r.
func ring(n int, r float64) []surface.Point {
	pts := make([]surface.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = surface.Pt(math.Round(r*math.Cos(a)*100)/100, math.Round(r*math.Sin(a)*100)/100)
	}
	return pts
}

// halo draws passes concentric rings of c around pos, fading outward.
func halo(ops []PaintOp, text string, pos surface.Point, c color.Color, radius, intensity float64, passes int) []PaintOp {
	for p := passes; p >= 1; p-- {
		r := radius * float64(p) / float64(passes)
		a := intensity * 0.35 / float64(p)
		paint := surface.Solid(withAlpha(c, a))
		for _, off := range ring(8, r) {
			ops = append(ops, PaintOp{Text: text, X: pos.X + off.X, Y: pos.Y + off.Y, Paint: paint})
		}
	}
	return ops
}

func vertical(pos surface.Point, size float64, stops ...surface.Stop) surface.Paint {
	return surface.Linear(surface.Pt(pos.X, pos.Y-size), surface.Pt(pos.X, pos.Y+size*0.25), stops...)
}

// Ops computes the paint operations for text at pos. It is a pure
// function of its arguments; an effect outside the known set paints as
// Classic.
func Ops(e Effect, text string, pos surface.Point, s Settings) []PaintOp {
	fill := PaintOp{Text: text, X: pos.X, Y: pos.Y, Paint: surface.Solid(s.textColor())}
	size := s.Font.Size
	if size <= 0 {
		size = DefaultSettings().Font.Size
	}

	switch e {
	case Glow:
		c := s.Glow.Color
		if c == nil {
			c = s.textColor()
		}
		ops := halo(nil, text, pos, c, max(s.Glow.Radius, 1), min(max(s.Glow.Intensity, 0), 1), s.Fidelity.passes(3))
		return append(ops, fill)

	case Neon:
		c := s.NeonColor
		if c == nil {
			c = DefaultSettings().NeonColor
		}
		ops := halo(nil, text, pos, c, size*0.12, 1, s.Fidelity.passes(4))
		ops = halo(ops, text, pos, lighten(c, 0.3), size*0.04, 1, s.Fidelity.passes(2))
		fill.Paint = surface.Solid(lighten(c, 0.7))
		return append(ops, fill)

	case Gradient:
		stops := s.Stops
		if len(stops) == 0 {
			stops = DefaultSettings().Stops
		}
		ss := make([]surface.Stop, len(stops))
		for i, st := range stops {
			ss[i] = surface.Stop{Offset: st.Offset, Color: st.Color}
		}
		fill.Paint = vertical(pos, size*0.75, ss...)
		return []PaintOp{fill}

	case Fire:
		red, yellow := MustColor("#ff2200"), MustColor("#ffd000")
		var ops []PaintOp
		n := s.Fidelity.passes(5)
		for i := n; i >= 1; i-- {
			t := float64(i) / float64(n)
			c := withAlpha(blend(yellow, red, t), 0.5*(1-t)+0.15)
			ops = append(ops, PaintOp{Text: text, X: pos.X, Y: pos.Y - size*0.06*float64(i), Paint: surface.Solid(c)})
		}
		fill.Paint = vertical(pos, size*0.75,
			surface.Stop{Offset: 0, Color: MustColor("#fff3b0")},
			surface.Stop{Offset: 0.5, Color: yellow},
			surface.Stop{Offset: 1, Color: red},
		)
		return append(ops, fill)

	case Outline:
		w := max(s.Outline.Width, 0.5)
		c := s.Outline.Color
		if c == nil {
			c = color.Black
		}
		n := 8
		if s.Fidelity == FidelityMinimal {
			n = 4
		}
		ops := make([]PaintOp, 0, n+1)
		for _, off := range ring(n, w) {
			ops = append(ops, PaintOp{Text: text, X: pos.X + off.X, Y: pos.Y + off.Y, Paint: surface.Solid(c)})
		}
		return append(ops, fill)

	case Shadow:
		c := s.Shadow.Color
		if c == nil {
			c = color.Black
		}
		var ops []PaintOp
		if s.Fidelity == FidelityFull {
			ops = append(ops, PaintOp{
				Text: text, X: pos.X + s.Shadow.OffsetX*1.5, Y: pos.Y + s.Shadow.OffsetY*1.5,
				Paint: surface.Solid(withAlpha(c, 0.4)),
			})
		}
		ops = append(ops, PaintOp{Text: text, X: pos.X + s.Shadow.OffsetX, Y: pos.Y + s.Shadow.OffsetY, Paint: surface.Solid(c)})
		return append(ops, fill)

	case Chrome:
		fill.Paint = vertical(pos, size*0.75,
			surface.Stop{Offset: 0, Color: MustColor("#f7f7f7")},
			surface.Stop{Offset: 0.45, Color: MustColor("#9a9a9a")},
			surface.Stop{Offset: 0.55, Color: MustColor("#e4e4e4")},
			surface.Stop{Offset: 1, Color: MustColor("#5a5a5a")},
		)
		edge := PaintOp{Text: text, X: pos.X + 1, Y: pos.Y + 1, Paint: surface.Solid(MustColor("#00000080"))}
		return []PaintOp{edge, fill}

	default:
		return []PaintOp{fill}
	}
}

// Pad returns how far the effect paints outside the glyph box.
func Pad(e Effect, s Settings) float64 {
	size := s.Font.Size
	if size <= 0 {
		size = DefaultSettings().Font.Size
	}
	switch e {
	case Glow:
		return math.Ceil(max(s.Glow.Radius, 1)) + 2
	case Neon:
		return math.Ceil(size*0.12) + 2
	case Fire:
		return math.Ceil(size*0.06*5) + 2
	case Outline:
		return math.Ceil(max(s.Outline.Width, 0.5)) + 2
	case Shadow:
		return math.Ceil(max(math.Abs(s.Shadow.OffsetX), math.Abs(s.Shadow.OffsetY))*1.5) + 2
	default:
		return 2
	}
}
