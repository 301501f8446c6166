// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"image/color"
	"strings"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/surface"
)

// CaptionPosition places the caption relative to the counter.
type CaptionPosition uint8

const (
	CaptionBottom CaptionPosition = iota
	CaptionTop
	CaptionLeft
	CaptionRight
)

var captionNames = [...]string{
	CaptionBottom: "bottom",
	CaptionTop:    "top",
	CaptionLeft:   "left",
	CaptionRight:  "right",
}

func (p CaptionPosition) String() string {
	if int(p) < len(captionNames) {
		return captionNames[p]
	}
	return "unknown"
}

// ParseCaptionPosition resolves a position name. Empty is bottom.
func ParseCaptionPosition(name string) (CaptionPosition, error) {
	if name == "" {
		return CaptionBottom, nil
	}
	for i, n := range captionNames {
		if strings.EqualFold(n, name) {
			return CaptionPosition(i), nil
		}
	}
	return CaptionBottom, &countup.ConfigurationError{Field: "caption.position", Reason: "unknown position " + name}
}

// Caption is auxiliary text painted after the counter in every frame.
type Caption struct {
	Enabled          bool
	Text             string
	Position         CaptionPosition
	OffsetX, OffsetY float64
	Opacity          float64
	Font             Font
	Color            color.Color
}

// gap between counter box and caption, in caption line heights.
const captionGap = 0.35

// paint draws the caption around the counter box.
func (c Caption) paint(s surface.Surface, box surface.Rect) error {
	if !c.Enabled || c.Text == "" {
		return nil
	}
	font := c.Font
	if font.Family == "" {
		font.Family = "regular"
	}
	if font.Size <= 0 {
		font.Size = 24
	}
	face, err := fonts.face(font)
	if err != nil {
		return err
	}
	m := face.Metrics()
	w := face.Advance(c.Text)
	lh := m.Ascent + m.Descent
	gap := lh * captionGap

	var x, top float64
	switch c.Position {
	case CaptionTop:
		x, top = box.X+(box.W-w)/2, box.Y-gap-lh
	case CaptionLeft:
		x, top = box.X-gap-w, box.Y+(box.H-lh)/2
	case CaptionRight:
		x, top = box.X+box.W+gap, box.Y+(box.H-lh)/2
	default:
		x, top = box.X+(box.W-w)/2, box.Y+box.H+gap
	}
	col := c.Color
	if col == nil {
		col = color.White
	}
	opacity := c.Opacity
	if opacity <= 0 {
		opacity = 1
	}
	s.FillText(c.Text, x+c.OffsetX, top+m.Ascent+c.OffsetY, face, surface.Solid(col).WithAlpha(opacity))
	return nil
}
