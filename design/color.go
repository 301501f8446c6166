// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/countup"
)

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or "transparent".
// The empty string yields nil, which every setting reads as its default.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.EqualFold(s, "transparent"):
		return color.Transparent, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return nil, &countup.ConfigurationError{Field: "color", Reason: "bad alpha in " + s}
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, &countup.ConfigurationError{Field: "color", Reason: err.Error()}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// MustColor is ParseColor for literals known to be valid.
func MustColor(s string) color.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// blend mixes a toward b by t in HCL space, keeping a's alpha.
func blend(a, b color.Color, t float64) color.Color {
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	r, g, bl := ca.BlendHcl(cb, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: alphaOf(a)}
}

// lighten moves c toward white by t.
func lighten(c color.Color, t float64) color.Color {
	return blend(c, color.White, t)
}

func withAlpha(c color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(min(max(float64(n.A)*a, 0), 255) + 0.5)
	return n
}

func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}

func alphaOf(c color.Color) uint8 {
	return color.NRGBAModel.Convert(c).(color.NRGBA).A
}

// colorKey renders c for cache keys.
func colorKey(c color.Color) string {
	if c == nil {
		return "-"
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return strconv.FormatUint(uint64(n.R)<<24|uint64(n.G)<<16|uint64(n.B)<<8|uint64(n.A), 16)
}
