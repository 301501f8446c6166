// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"image/color"
	"strings"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/surface"
)

// BackgroundMode selects how the frame behind the counter is filled.
type BackgroundMode uint8

const (
	// BackgroundSolid fills with the theme color.
	BackgroundSolid BackgroundMode = iota
	// BackgroundGradient fills with ordered color stops.
	BackgroundGradient
	// BackgroundTransparent paints nothing and leaves alpha at zero.
	BackgroundTransparent
	// BackgroundCustom fills with a user color.
	BackgroundCustom
)

var backgroundNames = [...]string{
	BackgroundSolid:       "solid",
	BackgroundGradient:    "gradient",
	BackgroundTransparent: "transparent",
	BackgroundCustom:      "custom",
}

func (m BackgroundMode) String() string {
	if int(m) < len(backgroundNames) {
		return backgroundNames[m]
	}
	return "unknown"
}

// ParseBackgroundMode resolves a background mode name. Empty is solid.
func ParseBackgroundMode(name string) (BackgroundMode, error) {
	if name == "" {
		return BackgroundSolid, nil
	}
	for i, n := range backgroundNames {
		if strings.EqualFold(n, name) {
			return BackgroundMode(i), nil
		}
	}
	return BackgroundSolid, &countup.ConfigurationError{Field: "background.mode", Reason: "unknown mode " + name}
}

// Background configures the frame behind the counter.
type Background struct {
	Mode       BackgroundMode
	Color      color.Color
	Custom     color.Color
	Stops      []ColorStop
	Horizontal bool
}

// DefaultBackground is a solid near-black frame.
func DefaultBackground() Background {
	return Background{Mode: BackgroundSolid, Color: MustColor("#0b0f19")}
}

// Transparent reports whether the background leaves the alpha channel empty.
func (b Background) Transparent() bool { return b.Mode == BackgroundTransparent }

// Paint fills the whole surface.
func (b Background) Paint(s surface.Surface) {
	w, h := float64(s.Width()), float64(s.Height())
	full := surface.Rect{W: w, H: h}

	switch b.Mode {
	case BackgroundTransparent:
		s.Clear(nil)
	case BackgroundGradient:
		s.Clear(nil)
		stops := make([]surface.Stop, len(b.Stops))
		for i, st := range b.Stops {
			stops[i] = surface.Stop{Offset: st.Offset, Color: st.Color}
		}
		if len(stops) == 0 {
			s.Clear(orBlack(b.Color))
			return
		}
		to := surface.Pt(0, h)
		if b.Horizontal {
			to = surface.Pt(w, 0)
		}
		s.FillRect(full, surface.Linear(surface.Pt(0, 0), to, stops...))
	case BackgroundCustom:
		s.Clear(orBlack(b.Custom))
	default:
		s.Clear(orBlack(b.Color))
	}
}

func orBlack(c color.Color) color.Color {
	if c == nil {
		return color.Black
	}
	return c
}
