// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"image"
	"image/gif"
	"io"
	"time"
)

func init() {
	Register("gif", func() Encoder { return NewGIF() })
}

// GIF writes an animated GIF. Each frame gets its own median-cut palette;
// transparency is 1-bit.
type GIF struct {
	stream
	// Transparent reserves a transparent palette entry in every frame.
	// Clear it before Start for opaque output.
	Transparent bool

	anim gif.GIF
}

// NewGIF returns a GIF encoder that keeps 1-bit transparency.
func NewGIF() *GIF { return &GIF{Transparent: true} }

func (e *GIF) SupportsAlpha() bool { return e.Transparent }
func (e *GIF) MIMEType() string    { return "image/gif" }
func (e *GIF) Extension() string   { return ".gif" }

func (e *GIF) Start(w io.Writer, p Params) error {
	if err := e.start("gif", w, p); err != nil {
		return err
	}
	e.anim = gif.GIF{
		LoopCount: p.Loop,
		Config:    image.Config{Width: p.Width, Height: p.Height},
	}
	return nil
}

func (e *GIF) PushFrame(img image.Image, delay time.Duration) error {
	if err := e.checkFrame("gif", img); err != nil {
		return err
	}
	if delay <= 0 {
		delay = e.frameInterval()
	}
	disposal := byte(gif.DisposalNone)
	if e.Transparent {
		disposal = gif.DisposalBackground
	}
	e.anim.Image = append(e.anim.Image, Quantize(img, e.Transparent))
	e.anim.Delay = append(e.anim.Delay, centiseconds(delay))
	e.anim.Disposal = append(e.anim.Disposal, disposal)
	return nil
}

func (e *GIF) Finalize() error {
	if err := e.ready("gif"); err != nil {
		return err
	}
	e.finalized = true
	if len(e.anim.Image) == 0 {
		return errNoFrames("gif")
	}
	err := gif.EncodeAll(e.w, &e.anim)
	e.anim = gif.GIF{}
	return err
}

func (e *GIF) Cancel() {
	e.cancelled = true
	e.anim = gif.GIF{}
}

// centiseconds converts d to a GIF frame delay. Viewers treat delays
// under 2 as 10, so 2 is the floor.
func centiseconds(d time.Duration) int {
	return max(2, int((d+5*time.Millisecond)/(10*time.Millisecond)))
}
