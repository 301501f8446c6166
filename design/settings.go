// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gogpu/countup"
)

// Fidelity trades effect quality for render time. The caller lowers it in
// response to performance suggestions.
type Fidelity uint8

const (
	FidelityFull Fidelity = iota
	FidelityReduced
	FidelityMinimal
)

func (f Fidelity) String() string {
	switch f {
	case FidelityReduced:
		return "reduced"
	case FidelityMinimal:
		return "minimal"
	default:
		return "full"
	}
}

// ParseFidelity resolves full, reduced or minimal. Empty is full.
func ParseFidelity(name string) (Fidelity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "full":
		return FidelityFull, nil
	case "reduced":
		return FidelityReduced, nil
	case "minimal":
		return FidelityMinimal, nil
	}
	return FidelityFull, &countup.ConfigurationError{Field: "design.fidelity", Reason: "unknown fidelity " + name}
}

// passes returns how many soft passes halo effects draw.
func (f Fidelity) passes(full int) int {
	switch f {
	case FidelityReduced:
		return max(full/2, 1)
	case FidelityMinimal:
		return 0
	default:
		return full
	}
}

// Font selects a bundled font family and a size in points.
type Font struct {
	Family string
	Size   float64
}

// GlowParams configures the glow effect.
type GlowParams struct {
	Color     color.Color
	Radius    float64
	Intensity float64
}

// OutlineParams configures the outline effect.
type OutlineParams struct {
	Color color.Color
	Width float64
}

// ShadowParams configures the shadow effect.
type ShadowParams struct {
	Color            color.Color
	OffsetX, OffsetY float64
}

// ColorStop is one gradient stop.
type ColorStop struct {
	Offset float64
	Color  color.Color
}

// Settings is an immutable snapshot of the visual design for one frame.
// Only the fields of the selected effect are consulted.
type Settings struct {
	Effect    Effect
	Font      Font
	TextColor color.Color
	Glow      GlowParams
	NeonColor color.Color
	Stops     []ColorStop
	Outline   OutlineParams
	Shadow    ShadowParams
	Fidelity  Fidelity
}

// DefaultSettings is white classic text in bold 96pt.
func DefaultSettings() Settings {
	return Settings{
		Effect:    Classic,
		Font:      Font{Family: "bold", Size: 96},
		TextColor: color.White,
		Glow:      GlowParams{Color: MustColor("#00e5ff"), Radius: 8, Intensity: 0.8},
		NeonColor: MustColor("#ff2bd6"),
		Stops: []ColorStop{
			{Offset: 0, Color: MustColor("#ffd36e")},
			{Offset: 1, Color: MustColor("#ff5e62")},
		},
		Outline: OutlineParams{Color: color.Black, Width: 3},
		Shadow:  ShadowParams{Color: MustColor("#00000099"), OffsetX: 4, OffsetY: 4},
	}
}

func (s Settings) textColor() color.Color {
	if s.TextColor == nil {
		return color.White
	}
	return s.TextColor
}

// key identifies every input that changes the pixels of a glyph tile.
func (s Settings) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%s|%g|%s|%d", s.Effect, s.Font.Family, s.Font.Size, colorKey(s.TextColor), s.Fidelity)
	switch s.Effect {
	case Glow:
		fmt.Fprintf(&b, "|%s|%g|%g", colorKey(s.Glow.Color), s.Glow.Radius, s.Glow.Intensity)
	case Neon:
		fmt.Fprintf(&b, "|%s", colorKey(s.NeonColor))
	case Gradient:
		for _, st := range s.Stops {
			fmt.Fprintf(&b, "|%g:%s", st.Offset, colorKey(st.Color))
		}
	case Outline:
		fmt.Fprintf(&b, "|%s|%g", colorKey(s.Outline.Color), s.Outline.Width)
	case Shadow:
		fmt.Fprintf(&b, "|%s|%g|%g", colorKey(s.Shadow.Color), s.Shadow.OffsetX, s.Shadow.OffsetY)
	}
	return b.String()
}
