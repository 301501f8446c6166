// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package codec defines the Encoder capability used by exports and the
// built-in encoders registered under it.
//
// Encoders are selected by name, following the database/sql driver
// pattern:
//
//	enc, err := codec.NewEncoder("apng")
//	if err != nil {
//	    return err
//	}
//	if err := enc.Start(w, codec.Params{Width: 640, Height: 360, FPS: 30}); err != nil {
//	    return err
//	}
//
// Built-in encoders:
//   - "apng": animated PNG, keeps alpha
//   - "mjpeg": Motion-JPEG in an AVI container, opaque
//   - "gif": animated GIF with a median-cut palette and 1-bit transparency
package codec

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"
)

// Params describes the stream handed to Start.
type Params struct {
	Width, Height int
	// FPS is the nominal frame rate. Encoders with a fixed rate repeat
	// frames to honor longer delays.
	FPS float64
	// Bitrate is the target in bits per second. Lossy encoders derive
	// their quality from it.
	Bitrate int
	// Quality overrides the derived quality (1-100) when positive.
	Quality int
	// Loop is the number of repeats. Zero loops forever.
	Loop int
}

// Encoder turns a sequence of frames into one media file.
//
// Start must be called once before PushFrame. Finalize writes any
// buffered data and ends the stream. Cancel releases buffered frames;
// every later call returns ErrCancelled.
type Encoder interface {
	// SupportsAlpha reports whether the output keeps per-pixel
	// transparency.
	SupportsAlpha() bool

	// MIMEType returns the media type of the output.
	MIMEType() string

	// Extension returns the usual file extension, including the dot.
	Extension() string

	Start(w io.Writer, p Params) error
	PushFrame(img image.Image, delay time.Duration) error
	Finalize() error
	Cancel()
}

// ErrCancelled is returned by an encoder after Cancel.
var ErrCancelled = errors.New("codec: encoder cancelled")

// stream holds the lifecycle shared by the built-in encoders.
type stream struct {
	w         io.Writer
	p         Params
	started   bool
	finalized bool
	cancelled bool
}

func (s *stream) start(name string, w io.Writer, p Params) error {
	switch {
	case s.cancelled:
		return ErrCancelled
	case s.started:
		return fmt.Errorf("codec: %s encoder already started", name)
	case w == nil:
		return fmt.Errorf("codec: %s encoder needs a writer", name)
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("codec: %s encoder: invalid size %dx%d", name, p.Width, p.Height)
	}
	if p.FPS <= 0 {
		p.FPS = 30
	}
	s.w, s.p, s.started = w, p, true
	return nil
}

func (s *stream) ready(name string) error {
	switch {
	case s.cancelled:
		return ErrCancelled
	case !s.started:
		return fmt.Errorf("codec: %s encoder not started", name)
	case s.finalized:
		return fmt.Errorf("codec: %s encoder already finalized", name)
	}
	return nil
}

func (s *stream) checkFrame(name string, img image.Image) error {
	if err := s.ready(name); err != nil {
		return err
	}
	if b := img.Bounds(); b.Dx() != s.p.Width || b.Dy() != s.p.Height {
		return fmt.Errorf("codec: %s frame is %dx%d, stream is %dx%d", name, b.Dx(), b.Dy(), s.p.Width, s.p.Height)
	}
	return nil
}

func errNoFrames(name string) error {
	return fmt.Errorf("codec: %s stream has no frames", name)
}

// frameInterval is the nominal duration of one frame.
func (s *stream) frameInterval() time.Duration {
	return time.Duration(float64(time.Second) / s.p.FPS)
}
