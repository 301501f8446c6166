// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package design paints counter frames onto a raster surface.
//
// A frame is painted in a fixed order: background, counter, caption. The
// counter is laid out as format tokens; static characters are painted
// directly through the selected effect, while every digit slot is composed
// from pre-rendered glyph tiles positioned by the slot's transition layers.
//
// Rendering is deterministic: the same Frame and Scene produce the same
// pixels. Nothing here reads the clock; animation progress arrives already
// baked into the slot frames.
package design

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg/text"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/digits"
	"github.com/gogpu/countup/surface"
)

// Frame is the counter state to paint.
type Frame struct {
	Layout   digits.Layout
	Slots    []digits.SlotFrame
	Negative bool
}

// Scene bundles every visual setting of a frame.
type Scene struct {
	Design     Settings
	Background Background
	Format     Format
	Caption    Caption
}

// DefaultScene returns the default scene.
func DefaultScene() Scene {
	return Scene{Design: DefaultSettings(), Background: DefaultBackground()}
}

// DefaultTileCacheSize bounds the number of cached glyph tiles.
const DefaultTileCacheSize = 256

type tileKey struct {
	glyph    rune
	settings string
}

// Renderer paints frames. It caches glyph tiles and is not safe for
// concurrent use.
type Renderer struct {
	tiles *lru.Cache[tileKey, *image.RGBA]
}

// NewRenderer creates a renderer with a tile cache of the given size.
// A non-positive size selects DefaultTileCacheSize.
func NewRenderer(cacheSize int) *Renderer {
	if cacheSize <= 0 {
		cacheSize = DefaultTileCacheSize
	}
	tiles, err := lru.New[tileKey, *image.RGBA](cacheSize)
	if err != nil {
		// Only returned for a non-positive size, which is excluded above.
		panic(err)
	}
	return &Renderer{tiles: tiles}
}

// cell is the geometry shared by all slots of a frame.
type cell struct {
	w, h     float64
	ascent   float64
	pad      float64
	tileW    int
	tileH    int
	baseline float64
}

func measureCell(face text.Face, s Settings) cell {
	m := face.Metrics()
	var w float64
	for d := '0'; d <= '9'; d++ {
		w = max(w, face.Advance(string(d)))
	}
	pad := Pad(s.Effect, s)
	c := cell{
		w:      math.Ceil(w),
		h:      math.Ceil(m.Ascent + m.Descent),
		ascent: m.Ascent,
		pad:    pad,
	}
	c.tileW = int(c.w + 2*pad)
	c.tileH = int(c.h + 2*pad)
	return c
}

// Render paints one frame onto s.
func (r *Renderer) Render(s surface.Surface, f Frame, sc Scene) error {
	if len(f.Slots) != f.Layout.Slots() {
		return &countup.ConfigurationError{
			Field:  "frame",
			Reason: fmt.Sprintf("%d slot frames for a %d-slot layout", len(f.Slots), f.Layout.Slots()),
		}
	}
	face, err := fonts.face(sc.Design.Font)
	if err != nil {
		return err
	}
	sc.Background.Paint(s)

	c := measureCell(face, sc.Design)
	tokens := sc.Format.Tokens(f.Layout, f.Negative)

	width := 0.0
	for _, t := range tokens {
		if t.IsSlot() {
			width += c.w
		} else {
			width += face.Advance(t.Static)
		}
	}
	box := surface.Rect{
		X: math.Round((float64(s.Width()) - width) / 2),
		Y: math.Round((float64(s.Height()) - c.h) / 2),
		W: width,
		H: c.h,
	}
	c.baseline = box.Y + c.ascent

	x := box.X
	for _, t := range tokens {
		if !t.IsSlot() {
			for _, op := range Ops(sc.Design.Effect, t.Static, surface.Pt(x, c.baseline), sc.Design) {
				s.FillText(op.Text, op.X, op.Y, face, op.Paint)
			}
			x += face.Advance(t.Static)
			continue
		}
		r.drawSlot(s, f.Slots[t.Slot], surface.Pt(x, box.Y), c, face, sc.Design)
		x += c.w
	}

	return sc.Caption.paint(s, box)
}

// drawSlot composites the transition layers of one slot. Each layer is a
// glyph tile scaled and offset inside the slot box and clipped to it.
func (r *Renderer) drawSlot(s surface.Surface, sf digits.SlotFrame, at surface.Point, c cell, face text.Face, ds Settings) {
	bx := at.X - c.pad
	by := at.Y - c.pad
	bw, bh := float64(c.tileW), float64(c.tileH)

	for _, l := range sf.Layers {
		tile := r.tile(l.Glyph, c, face, ds)
		lw, lh := bw*l.ScaleX, bh*l.ScaleY
		lx := bx + l.DX*c.w + (bw-lw)/2
		ly := by + l.DY*c.h + (bh-lh)/2

		ix0, iy0 := max(lx, bx), max(ly, by)
		ix1, iy1 := min(lx+lw, bx+bw), min(ly+lh, by+bh)
		if ix1-ix0 < 0.5 || iy1-iy0 < 0.5 {
			continue
		}
		src := image.Rect(
			int(math.Floor((ix0-lx)/lw*bw)),
			int(math.Floor((iy0-ly)/lh*bh)),
			int(math.Ceil((ix1-lx)/lw*bw)),
			int(math.Ceil((iy1-ly)/lh*bh)),
		).Intersect(tile.Bounds())
		dst := surface.Rect{X: math.Round(ix0), Y: math.Round(iy0), W: math.Round(ix1 - ix0), H: math.Round(iy1 - iy0)}
		s.DrawImage(tile, src, dst, l.Opacity)
	}
}

// tile returns the cached glyph tile for g, rendering it on a miss.
func (r *Renderer) tile(g rune, c cell, face text.Face, ds Settings) *image.RGBA {
	key := tileKey{glyph: g, settings: ds.key()}
	if img, ok := r.tiles.Get(key); ok {
		return img
	}
	ts := surface.NewImage(c.tileW, c.tileH)
	glyph := string(g)
	x := c.pad + (c.w-face.Advance(glyph))/2
	for _, op := range Ops(ds.Effect, glyph, surface.Pt(x, c.pad+c.ascent), ds) {
		ts.FillText(op.Text, op.X, op.Y, face, op.Paint)
	}
	img := ts.Snapshot()
	r.tiles.Add(key, img)
	countup.Logger().Debug("design: glyph tile rendered", "glyph", glyph, "effect", ds.Effect.String(), "size", c.tileW)
	return img
}
