// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/icza/mjpeg"
)

func init() {
	Register("mjpeg", func() Encoder { return NewMJPEG() })
}

// MJPEG writes Motion-JPEG frames into an AVI container. The container
// is opaque; alpha is dropped by the JPEG encoder, so callers flatten
// transparent frames first.
//
// The AVI writer needs a seekable file, so the stream is assembled in a
// temporary directory and copied to the output by Finalize.
type MJPEG struct {
	stream
	quality int
	fps     int32
	dir     string
	path    string
	avi     mjpeg.AviWriter
	buf     bytes.Buffer
}

// NewMJPEG returns a Motion-JPEG encoder.
func NewMJPEG() *MJPEG { return &MJPEG{} }

func (e *MJPEG) SupportsAlpha() bool { return false }
func (e *MJPEG) MIMEType() string    { return "video/x-msvideo" }
func (e *MJPEG) Extension() string   { return ".avi" }

func (e *MJPEG) Start(w io.Writer, p Params) error {
	if err := e.start("mjpeg", w, p); err != nil {
		return err
	}
	e.quality = jpegQuality(e.p)
	// AVI stores an integral rate.
	e.fps = int32(max(1, math.Round(e.p.FPS)))

	dir, err := os.MkdirTemp("", "countup-mjpeg-")
	if err != nil {
		return fmt.Errorf("codec: mjpeg: %w", err)
	}
	e.dir = dir
	e.path = filepath.Join(dir, "stream.avi")
	e.avi, err = mjpeg.New(e.path, int32(p.Width), int32(p.Height), e.fps)
	if err != nil {
		e.cleanup()
		return fmt.Errorf("codec: mjpeg: %w", err)
	}
	return nil
}

// jpegQuality maps the bitrate budget per pixel to a JPEG quality.
func jpegQuality(p Params) int {
	if p.Quality > 0 {
		return min(p.Quality, 100)
	}
	if p.Bitrate <= 0 {
		return jpeg.DefaultQuality
	}
	bpp := float64(p.Bitrate) / (p.FPS * float64(p.Width*p.Height))
	q := int(math.Round(50 + 20*bpp))
	return max(30, min(q, 95))
}

// PushFrame encodes img once and writes it for every AVI tick its delay
// spans.
func (e *MJPEG) PushFrame(img image.Image, delay time.Duration) error {
	if err := e.checkFrame("mjpeg", img); err != nil {
		return err
	}
	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return err
	}
	ticks := 1
	if delay > 0 {
		tick := time.Second / time.Duration(e.fps)
		ticks = max(1, int(math.Round(float64(delay)/float64(tick))))
	}
	for range ticks {
		if err := e.avi.AddFrame(e.buf.Bytes()); err != nil {
			return fmt.Errorf("codec: mjpeg: %w", err)
		}
	}
	return nil
}

func (e *MJPEG) Finalize() error {
	if err := e.ready("mjpeg"); err != nil {
		return err
	}
	e.finalized = true
	defer e.cleanup()

	if e.buf.Len() == 0 {
		return errNoFrames("mjpeg")
	}
	if err := e.avi.Close(); err != nil {
		return fmt.Errorf("codec: mjpeg: %w", err)
	}
	e.avi = nil
	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("codec: mjpeg: %w", err)
	}
	defer f.Close()
	_, err = io.Copy(e.w, f)
	return err
}

func (e *MJPEG) Cancel() {
	e.cancelled = true
	e.cleanup()
}

func (e *MJPEG) cleanup() {
	if e.avi != nil {
		_ = e.avi.Close()
		e.avi = nil
	}
	if e.dir != "" {
		_ = os.RemoveAll(e.dir)
		e.dir = ""
	}
	e.buf = bytes.Buffer{}
}
