// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"image"
	"image/draw"
	"io"
	"time"

	"github.com/kettek/apng"
)

func init() {
	Register("apng", func() Encoder { return NewAPNG() })
}

// APNG writes an animated PNG with 8-bit RGBA frames. The frame count
// lives in the header, so frames are kept until Finalize writes the file.
type APNG struct {
	stream
	anim apng.APNG
}

// NewAPNG returns an APNG encoder.
func NewAPNG() *APNG { return &APNG{} }

func (e *APNG) SupportsAlpha() bool { return true }
func (e *APNG) MIMEType() string    { return "image/apng" }
func (e *APNG) Extension() string   { return ".png" }

func (e *APNG) Start(w io.Writer, p Params) error {
	if err := e.start("apng", w, p); err != nil {
		return err
	}
	e.anim = apng.APNG{LoopCount: uint(max(0, p.Loop))}
	return nil
}

func (e *APNG) PushFrame(img image.Image, delay time.Duration) error {
	if err := e.checkFrame("apng", img); err != nil {
		return err
	}
	if delay <= 0 {
		delay = e.frameInterval()
	}
	// Callers may reuse img after the push.
	b := img.Bounds()
	frame := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(frame, frame.Bounds(), img, b.Min, draw.Src)

	num, den := delayFraction(delay)
	e.anim.Frames = append(e.anim.Frames, apng.Frame{
		Image:            frame,
		DelayNumerator:   num,
		DelayDenominator: den,
		// Every frame replaces the whole canvas.
		DisposeOp: apng.DISPOSE_OP_NONE,
		BlendOp:   apng.BLEND_OP_SOURCE,
	})
	return nil
}

func (e *APNG) Finalize() error {
	if err := e.ready("apng"); err != nil {
		return err
	}
	e.finalized = true
	if len(e.anim.Frames) == 0 {
		return errNoFrames("apng")
	}
	enc := apng.Encoder{CompressionLevel: apng.BestSpeed}
	err := enc.Encode(e.w, e.anim)
	e.anim = apng.APNG{}
	return err
}

func (e *APNG) Cancel() {
	e.cancelled = true
	e.anim = apng.APNG{}
}

// delayFraction expresses d in milliseconds as an fcTL delay.
func delayFraction(d time.Duration) (num, den uint16) {
	ms := d.Milliseconds()
	switch {
	case ms <= 0:
		ms = 1
	case ms > 0xffff:
		ms = 0xffff
	}
	return uint16(ms), 1000
}
