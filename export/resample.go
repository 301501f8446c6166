// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/countup/capture"
)

// step is one output frame: the source frame shown and for how long.
type step struct {
	index int
	delay time.Duration
}

// plan resamples frames onto a fixed fps grid covering total. Each grid
// tick shows the latest frame captured at or before it; consecutive ticks
// showing the same frame merge into one longer step, so gaps left by
// dropped captures hold the previous frame.
func plan(frames []capture.Frame, total time.Duration, fps float64) []step {
	if len(frames) == 0 || fps <= 0 {
		return nil
	}
	tick := time.Duration(float64(time.Second) / fps)
	if last := frames[len(frames)-1].Elapsed; total <= last {
		total = last + tick
	}
	n := int(math.Ceil(float64(total) / float64(tick)))

	var steps []step
	j := 0
	for k := range n {
		t := time.Duration(k) * tick
		for j+1 < len(frames) && frames[j+1].Elapsed <= t {
			j++
		}
		if len(steps) > 0 && steps[len(steps)-1].index == j {
			steps[len(steps)-1].delay += tick
			continue
		}
		steps = append(steps, step{index: j, delay: tick})
	}
	return steps
}

// scale resizes src to w x h. Draft quality uses the cheaper kernel.
func scale(src image.Image, w, h int, fast bool) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if b.Dx() == w && b.Dy() == h {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	var k draw.Interpolator = draw.CatmullRom
	if fast {
		k = draw.ApproxBiLinear
	}
	k.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// flatten composites img over an opaque matte in place.
func flatten(img *image.RGBA, matte color.Color) {
	bg := image.NewRGBA(img.Bounds())
	draw.Draw(bg, bg.Bounds(), image.NewUniform(matte), image.Point{}, draw.Src)
	draw.Draw(bg, bg.Bounds(), img, img.Bounds().Min, draw.Over)
	copy(img.Pix, bg.Pix)
}
