// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package digits

import (
	"strings"
	"time"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/interp"
)

// Kind selects how two glyphs are blended while a slot transitions.
// The kinds are mutually exclusive rendering strategies.
type Kind uint8

const (
	// Instant swaps the glyph when progress reaches 1.
	Instant Kind = iota
	// Roll moves the old glyph up and out while the new one rolls in below.
	Roll
	// Flip collapses the old glyph vertically, then expands the new one.
	Flip
	// Fade cross-dissolves the two glyphs.
	Fade
	// Slide pushes the old glyph left while the new one enters from the right.
	Slide
	// Scale shrinks the old glyph away while the new one grows in.
	Scale
)

var kindNames = [...]string{
	Instant: "instant",
	Roll:    "roll",
	Flip:    "flip",
	Fade:    "fade",
	Slide:   "slide",
	Scale:   "scale",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds returns all transition kind names.
func Kinds() []string {
	return append([]string(nil), kindNames[:]...)
}

// ParseKind resolves a transition name. Empty selects Roll.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return Roll, nil
	}
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return Instant, &countup.ConfigurationError{Field: "transition.type", Reason: "unknown transition " + name}
}

// Direction orders the stagger across slots.
type Direction uint8

const (
	LeftToRight Direction = iota
	RightToLeft
)

// TransitionConfig is the policy shared by all slots.
type TransitionConfig struct {
	Kind      Kind
	Duration  time.Duration
	Easing    interp.Easing
	Delay     time.Duration
	Stagger   time.Duration
	Direction Direction
}

// DefaultTransition is a 300ms ease-out roll without stagger.
func DefaultTransition() TransitionConfig {
	return TransitionConfig{Kind: Roll, Duration: 300 * time.Millisecond, Easing: interp.EaseOutCubic}
}

// Validate checks the config.
func (c TransitionConfig) Validate() error {
	switch {
	case int(c.Kind) >= len(kindNames):
		return &countup.ConfigurationError{Field: "transition.type", Reason: "unknown transition"}
	case c.Duration <= 0 && c.Kind != Instant:
		return &countup.ConfigurationError{Field: "transition.duration", Reason: "must be greater than zero"}
	case c.Delay < 0:
		return &countup.ConfigurationError{Field: "transition.delay", Reason: "must not be negative"}
	case c.Stagger < 0:
		return &countup.ConfigurationError{Field: "transition.stagger", Reason: "must not be negative"}
	}
	return nil
}

// Layer is one glyph drawn inside a slot box. Offsets are fractions of the
// slot size; scales and opacity are in [0,1].
type Layer struct {
	Glyph   rune
	DX, DY  float64
	ScaleX  float64
	ScaleY  float64
	Opacity float64
}

func (l Layer) visible() bool {
	return l.Opacity > 0 && l.ScaleX > 0 && l.ScaleY > 0 &&
		l.DX > -1 && l.DX < 1 && l.DY > -1 && l.DY < 1
}

func plain(g rune) Layer {
	return Layer{Glyph: g, ScaleX: 1, ScaleY: 1, Opacity: 1}
}

// Blend interpolates prev into cur at eased progress p for the given kind.
// It is a pure function. Only visible layers are returned, back to front;
// at p == 0 the result is prev alone and at p == 1 it is cur alone.
func Blend(kind Kind, prev, cur rune, p float64) []Layer {
	p = min(max(p, 0), 1)
	if prev == cur {
		return []Layer{plain(cur)}
	}
	a, b := plain(prev), plain(cur)
	switch kind {
	case Roll:
		a.DY, b.DY = -p, 1-p
	case Flip:
		if p < 0.5 {
			a.ScaleY = 1 - 2*p
			b.Opacity = 0
		} else {
			a.Opacity = 0
			b.ScaleY = 2*p - 1
		}
	case Fade:
		a.Opacity, b.Opacity = 1-p, p
	case Slide:
		a.DX, b.DX = -p, 1-p
		a.Opacity, b.Opacity = 1-p, p
	case Scale:
		a.ScaleX, a.ScaleY, a.Opacity = 1-p, 1-p, 1-p
		b.ScaleX, b.ScaleY, b.Opacity = p, p, p
	default:
		if p < 1 {
			b.Opacity = 0
		} else {
			a.Opacity = 0
		}
	}
	out := make([]Layer, 0, 2)
	for _, l := range [2]Layer{a, b} {
		if l.visible() {
			out = append(out, l)
		}
	}
	return out
}
