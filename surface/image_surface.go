// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Image is a CPU surface that renders through gg.Context.
//
// Example:
//
//	s := surface.NewImage(640, 240)
//	s.Clear(color.Black)
//	s.FillRect(surface.Rect{W: 640, H: 240}, surface.Solid(color.White))
//	img := s.Snapshot()
type Image struct {
	dc    *gg.Context
	alpha bool
}

// Option configures an Image surface.
type Option func(*Image)

// WithoutAlpha creates a surface that cannot represent transparency, as on
// hosts whose canvas is always opaque.
func WithoutAlpha() Option {
	return func(s *Image) { s.alpha = false }
}

// NewImage creates a surface of the given size. Non-positive dimensions are
// raised to 1.
func NewImage(width, height int, opts ...Option) *Image {
	s := &Image{
		dc:    gg.NewContext(max(width, 1), max(height, 1)),
		alpha: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Clear(nil)
	return s
}

var _ Surface = (*Image)(nil)

// Width returns the surface width in pixels.
func (s *Image) Width() int { return s.dc.Width() }

// Height returns the surface height in pixels.
func (s *Image) Height() int { return s.dc.Height() }

// Alpha reports whether the surface keeps transparency.
func (s *Image) Alpha() bool { return s.alpha }

// Clear resets every pixel to c.
func (s *Image) Clear(c color.Color) {
	if c == nil || isTransparent(c) {
		if s.alpha {
			s.dc.Clear()
			return
		}
		c = color.Black
	}
	col := toRGBA(c)
	if !s.alpha {
		col.A = 1
	}
	s.dc.ClearWithColor(col)
}

// FillRect fills r with p.
func (s *Image) FillRect(r Rect, p Paint) {
	if r.Empty() {
		return
	}
	s.dc.SetFillBrush(brush(p))
	s.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	_ = s.dc.Fill()
}

// FillText draws s with its baseline origin at (x, y).
func (s *Image) FillText(str string, x, y float64, face text.Face, p Paint) {
	if str == "" || face == nil {
		return
	}
	if !p.IsGradient() {
		c := toRGBA(solidColor(p))
		s.dc.SetFont(face)
		s.dc.SetRGBA(c.R, c.G, c.B, c.A)
		s.dc.DrawString(str, x, y)
		return
	}
	s.fillTextGradient(str, x, y, face, p)
}

// fillTextGradient rasterizes the glyph coverage into a tile, colors it with
// the gradient in surface coordinates and composites the tile.
func (s *Image) fillTextGradient(str string, x, y float64, face text.Face, p Paint) {
	m := face.Metrics()
	x0 := math.Floor(x) - 2
	y0 := math.Floor(y-m.Ascent) - 2
	w := int(math.Ceil(face.Advance(str))) + 4
	h := int(math.Ceil(m.Ascent+m.Descent)) + 4

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	text.Draw(mask, str, face, x-x0, y-y0, color.Opaque)

	b := brush(p)
	tile := image.NewRGBA(mask.Bounds())
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			cov := mask.AlphaAt(px, py).A
			if cov == 0 {
				continue
			}
			c := b.ColorAt(x0+float64(px)+0.5, y0+float64(py)+0.5)
			a := c.A * float64(cov) / 255
			tile.SetRGBA(px, py, color.RGBA{
				R: unit8(c.R * a),
				G: unit8(c.G * a),
				B: unit8(c.B * a),
				A: unit8(a),
			})
		}
	}
	s.dc.DrawImageEx(gg.ImageBufFromImage(tile), gg.DrawImageOptions{
		X:             x0,
		Y:             y0,
		Interpolation: gg.InterpNearest,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// DrawImage composites the src region of img into dst.
func (s *Image) DrawImage(img image.Image, src image.Rectangle, dst Rect, opacity float64) {
	// gg treats a zero opacity as "unset", so skip invisible draws here.
	if opacity <= 0 || dst.Empty() || src.Empty() {
		return
	}
	s.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             dst.X,
		Y:             dst.Y,
		DstWidth:      dst.W,
		DstHeight:     dst.H,
		SrcRect:       &src,
		Interpolation: gg.InterpBilinear,
		Opacity:       min(opacity, 1),
		BlendMode:     gg.BlendNormal,
	})
}

// Snapshot returns a copy of the current pixels.
func (s *Image) Snapshot() *image.RGBA {
	img := s.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func brush(p Paint) gg.Brush {
	if !p.IsGradient() {
		return gg.Solid(toRGBA(solidColor(p)))
	}
	g := gg.NewLinearGradientBrush(p.From.X, p.From.Y, p.To.X, p.To.Y)
	for _, st := range p.Stops {
		g.AddColorStop(st.Offset, toRGBA(st.Color))
	}
	return g
}

func solidColor(p Paint) color.Color {
	if p.Color == nil {
		return color.Black
	}
	return p.Color
}

// toRGBA converts to gg's straight-alpha float color.
func toRGBA(c color.Color) gg.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return gg.RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}

func unit8(v float64) uint8 {
	return uint8(min(max(v*255+0.5, 0), 255))
}
