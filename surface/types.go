// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image/color"
	"sort"
)

// Point is a position in surface pixels.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Stop is a gradient color stop. Offset is in [0,1].
type Stop struct {
	Offset float64
	Color  color.Color
}

// Paint describes how a fill is colored: a solid Color when Stops is
// empty, otherwise a linear gradient from From to To.
type Paint struct {
	Color    color.Color
	Stops    []Stop
	From, To Point
}

// Solid returns a solid paint.
func Solid(c color.Color) Paint {
	return Paint{Color: c}
}

// Linear returns a linear gradient paint along the axis from→to.
// Stops are sorted by offset.
func Linear(from, to Point, stops ...Stop) Paint {
	s := append([]Stop(nil), stops...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Offset < s[j].Offset })
	return Paint{Stops: s, From: from, To: to}
}

// IsGradient reports whether the paint has color stops.
func (p Paint) IsGradient() bool { return len(p.Stops) > 0 }

// WithAlpha returns the paint with every color's alpha multiplied by a.
func (p Paint) WithAlpha(a float64) Paint {
	if a >= 1 {
		return p
	}
	out := Paint{From: p.From, To: p.To}
	if p.Color != nil {
		out.Color = scaleAlpha(p.Color, a)
	}
	if len(p.Stops) > 0 {
		out.Stops = make([]Stop, len(p.Stops))
		for i, s := range p.Stops {
			out.Stops[i] = Stop{Offset: s.Offset, Color: scaleAlpha(s.Color, a)}
		}
	}
	return out
}

func scaleAlpha(c color.Color, a float64) color.Color {
	a = min(max(a, 0), 1)
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A)*a + 0.5)
	return n
}
