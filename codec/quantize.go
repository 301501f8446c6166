// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// alphaCutoff is the alpha below which a pixel becomes the transparent
// palette entry.
const alphaCutoff = 128

// Quantize maps img onto a palette of at most 256 colors chosen by median
// cut. With transparent set, palette index 0 is fully transparent and
// pixels with alpha under 128 map to it. The result is anchored at the
// origin.
func Quantize(img image.Image, transparent bool) *image.Paletted {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// The quantizer sees straight colors at full opacity. Pixels that
	// will become transparent carry zero weight.
	flat := image.NewRGBA(image.Rect(0, 0, w, h))
	masked := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if transparent && c.A < alphaCutoff {
				masked[y*w+x] = true
				continue
			}
			i := flat.PixOffset(x, y)
			flat.Pix[i], flat.Pix[i+1], flat.Pix[i+2], flat.Pix[i+3] = c.R, c.G, c.B, 0xff
		}
	}

	q := quantize.MedianCutQuantizer{
		Aggregation: quantize.Mean,
		Weighting: func(_ image.Image, x, y int) uint32 {
			if masked[y*w+x] {
				return 0
			}
			return 1
		},
	}
	pal := make(color.Palette, 0, 256)
	first := 0
	if transparent {
		pal = append(pal, color.RGBA{})
		first = 1
	}
	pal = q.Quantize(pal, flat)
	if len(pal) == first {
		pal = append(pal, color.RGBA{A: 0xff})
	}

	out := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	opaque := pal[first:]
	lookup := make(map[color.RGBA]uint8)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if masked[y*w+x] {
				out.SetColorIndex(x, y, 0)
				continue
			}
			i := flat.PixOffset(x, y)
			c := color.RGBA{R: flat.Pix[i], G: flat.Pix[i+1], B: flat.Pix[i+2], A: 0xff}
			idx, ok := lookup[c]
			if !ok {
				idx = uint8(first + opaque.Index(c))
				lookup[c] = idx
			}
			out.SetColorIndex(x, y, idx)
		}
	}
	return out
}
