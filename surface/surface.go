// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"github.com/gogpu/gg/text"
)

// Surface is the raster target abstraction.
//
// Implementations must be deterministic: the same sequence of calls on a
// surface of the same size produces byte-identical snapshots.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Alpha reports whether the surface keeps a real alpha channel.
	// Surfaces without alpha flatten transparent clears to opaque black.
	Alpha() bool

	// Clear resets every pixel. A nil color or a color with zero alpha
	// clears to fully transparent.
	Clear(c color.Color)

	// FillRect fills r with p.
	FillRect(r Rect, p Paint)

	// FillText draws s with its baseline origin at (x, y).
	FillText(s string, x, y float64, face text.Face, p Paint)

	// DrawImage composites the src region of img into dst, scaling as
	// needed, at the given opacity.
	DrawImage(img image.Image, src image.Rectangle, dst Rect, opacity float64)

	// Snapshot returns a copy of the current pixels.
	Snapshot() *image.RGBA
}
