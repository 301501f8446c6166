// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/capture"
	"github.com/gogpu/countup/codec"
	"github.com/gogpu/countup/surface"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// record captures n frames of a 16x8 surface at 10 fps and stops.
func record(t *testing.T, n int, transparent bool, opts ...surface.Option) *capture.Pipeline {
	t.Helper()
	clock := countup.NewManualClock(epoch)
	p := capture.New(capture.Options{FPS: 10, Clock: clock})
	img := surface.NewImage(16, 8, opts...)
	img.Clear(nil)
	img.FillRect(surface.Rect{X: 0, Y: 0, W: 8, H: 8}, surface.Solid(color.White))
	if err := p.Start(transparent); err != nil {
		t.Fatal(err)
	}
	for range n {
		p.Capture(img)
		clock.Advance(100 * time.Millisecond)
	}
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	return p
}

type credits struct {
	left     int
	err      error
	consumed int
}

func (c *credits) HasCredits(context.Context) (bool, error) {
	return c.left > 0, c.err
}

func (c *credits) ConsumeCredit(context.Context) error {
	c.left--
	c.consumed++
	return nil
}

// gatedEncoder holds every frame until the gate opens and reports the
// first push.
type gatedEncoder struct {
	codec.Encoder
	pushed    chan struct{}
	gate      chan struct{}
	once      sync.Once
	cancelled atomic.Bool
}

func newGatedEncoder() *gatedEncoder {
	return &gatedEncoder{
		Encoder: codec.NewAPNG(),
		pushed:  make(chan struct{}),
		gate:    make(chan struct{}),
	}
}

func (e *gatedEncoder) PushFrame(img image.Image, d time.Duration) error {
	e.once.Do(func() { close(e.pushed) })
	<-e.gate
	return e.Encoder.PushFrame(img, d)
}

func (e *gatedEncoder) Cancel() {
	e.cancelled.Store(true)
	e.Encoder.Cancel()
}

// registerGated registers a fresh gated encoder for the test and returns
// it with its codec name.
func registerGated(t *testing.T) (*gatedEncoder, string) {
	t.Helper()
	enc := newGatedEncoder()
	name := "gated-" + t.Name()
	codec.Register(name, func() codec.Encoder { return enc })
	t.Cleanup(func() { codec.Unregister(name) })
	return enc, name
}

func TestLookupPreset(t *testing.T) {
	tests := []struct {
		name  string
		want  Quality
		fails bool
	}{
		{"draft", Quality{"draft", 0.5, 15, 1_000_000}, false},
		{"Standard", Quality{"standard", 1, 30, 4_000_000}, false},
		{"high", Quality{"high", 1, 60, 8_000_000}, false},
		{"ultra", Quality{"ultra", 2, 60, 16_000_000}, false},
		{"", Quality{"standard", 1, 30, 4_000_000}, false},
		{"4k", Quality{}, true},
	}
	for _, tt := range tests {
		got, err := LookupPreset(tt.name)
		if tt.fails {
			var pe *countup.InvalidPresetError
			var ce *countup.ConfigurationError
			if !errors.As(err, &pe) || !errors.As(err, &ce) {
				t.Errorf("LookupPreset(%q) err = %v, want InvalidPresetError", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("LookupPreset(%q) = %+v, %v; want %+v", tt.name, got, err, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": Video, "video": Video, "GIF": GIF, "overlay": Overlay, "transparent-overlay": Overlay}
	for in, want := range tests {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("webm"); err == nil {
		t.Error("ParseFormat(webm) succeeded")
	}
}

func TestPlan(t *testing.T) {
	at := func(ms ...int) []capture.Frame {
		out := make([]capture.Frame, len(ms))
		for i, v := range ms {
			out[i] = capture.Frame{Seq: int64(i), Elapsed: time.Duration(v) * time.Millisecond}
		}
		return out
	}
	ms := time.Millisecond
	tests := []struct {
		name   string
		frames []capture.Frame
		total  time.Duration
		fps    float64
		want   []step
	}{
		{"upsample merges", at(0, 100, 200), 300 * ms, 20, []step{{0, 100 * ms}, {1, 100 * ms}, {2, 100 * ms}}},
		{"gap holds frame", at(0, 300), 400 * ms, 10, []step{{0, 300 * ms}, {1, 100 * ms}}},
		{"downsample skips", at(0, 50, 100, 150), 200 * ms, 10, []step{{0, 100 * ms}, {2, 100 * ms}}},
		{"short total", at(0), 0, 10, []step{{0, 100 * ms}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := plan(tt.frames, tt.total, tt.fps)
			if len(got) != len(tt.want) {
				t.Fatalf("plan() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("step %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// NewJob right after a frame budget stop must see the frames the worker
// is still encoding.
func TestExportAfterBudgetStop(t *testing.T) {
	release := make(chan struct{})
	slow := func(w io.Writer, img image.Image) error {
		<-release
		return png.Encode(w, img)
	}
	p := capture.New(capture.Options{FPS: 10, MaxFrames: 1, Encode: slow, Clock: countup.NewManualClock(epoch)})
	if err := p.Start(false); err != nil {
		t.Fatal(err)
	}
	p.Capture(surface.NewImage(16, 8))
	if p.State() != capture.Stopped {
		t.Fatalf("state = %v, want stopped by the frame budget", p.State())
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	j, err := NewManager(nil).NewJob(context.Background(), p, Request{})
	if err != nil {
		t.Fatalf("NewJob() = %v", err)
	}
	if n := j.Session.FrameCount(); n != 1 {
		t.Errorf("FrameCount() = %d, want 1", n)
	}
	j.Cancel()
}

func TestEmptySessionIsRejected(t *testing.T) {
	p := record(t, 0, false)
	ent := &credits{left: 1}
	_, err := NewManager(ent).NewJob(context.Background(), p, Request{})
	var ee *countup.EmptySessionError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want EmptySessionError", err)
	}
	if ent.consumed != 0 || p.State() != capture.Stopped {
		t.Errorf("consumed=%d state=%v, want 0 and stopped", ent.consumed, p.State())
	}
}

func TestExportRequiresStoppedSession(t *testing.T) {
	p := capture.New(capture.Options{Clock: countup.NewManualClock(epoch)})
	if err := p.Start(false); err != nil {
		t.Fatal(err)
	}
	_, err := NewManager(nil).NewJob(context.Background(), p, Request{})
	var se *countup.StateTransitionError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StateTransitionError", err)
	}
	if p.State() != capture.Recording {
		t.Errorf("state = %v, want recording", p.State())
	}
}

func TestAlphaChecksFailFast(t *testing.T) {
	tests := []struct {
		name        string
		transparent bool
		opts        []surface.Option
		req         Request
	}{
		{"transparent video without surface alpha", true, []surface.Option{surface.WithoutAlpha()}, Request{Format: Video}},
		{"overlay without surface alpha", false, []surface.Option{surface.WithoutAlpha()}, Request{Format: Overlay}},
		{"overlay with opaque codec", true, nil, Request{Format: Overlay, Codec: "mjpeg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := record(t, 3, tt.transparent, tt.opts...)
			ent := &credits{left: 1}
			_, err := NewManager(ent).NewJob(context.Background(), p, tt.req)
			var ae *countup.AlphaUnsupportedError
			if !errors.As(err, &ae) {
				t.Fatalf("err = %v, want AlphaUnsupportedError", err)
			}
			if ent.consumed != 0 || p.State() != capture.Stopped {
				t.Errorf("consumed=%d state=%v, want 0 and stopped", ent.consumed, p.State())
			}
		})
	}
}

func TestEntitlement(t *testing.T) {
	boom := errors.New("billing down")
	tests := []struct {
		name string
		ent  *credits
		want error
	}{
		{"no credits", &credits{}, nil},
		{"check fails", &credits{left: 1, err: boom}, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := record(t, 2, false)
			_, err := NewManager(tt.ent).NewJob(context.Background(), p, Request{})
			var ee *countup.EntitlementError
			if !errors.As(err, &ee) {
				t.Fatalf("err = %v, want EntitlementError", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want it to wrap %v", err, tt.want)
			}
			if p.State() != capture.Stopped {
				t.Errorf("state = %v, want stopped", p.State())
			}
		})
	}
}

func TestUnknownCodec(t *testing.T) {
	p := record(t, 2, false)
	_, err := NewManager(nil).NewJob(context.Background(), p, Request{Codec: "h265"})
	var ce *countup.ConfigurationError
	if !errors.As(err, &ce) {
		t.Errorf("err = %v, want ConfigurationError", err)
	}
	if p.State() != capture.Stopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
}

func TestTransparentVideoKeepsAlpha(t *testing.T) {
	p := record(t, 4, true)
	ent := &credits{left: 1}
	a, err := NewManager(ent).Export(context.Background(), p, Request{Format: Video})
	if err != nil {
		t.Fatal(err)
	}
	if a.Codec != "apng" || !a.AlphaPreserved || a.Flattened {
		t.Errorf("artifact = %s alpha=%v flattened=%v, want apng with alpha", a.Codec, a.AlphaPreserved, a.Flattened)
	}
	if ent.consumed != 1 {
		t.Errorf("consumed = %d, want 1", ent.consumed)
	}
	if p.State() != capture.Idle {
		t.Errorf("state = %v, want idle", p.State())
	}

	img, err := png.Decode(bytes.NewReader(a.Data))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, alpha := img.At(12, 4).RGBA(); alpha != 0 {
		t.Errorf("uncovered pixel alpha = %d, want 0", alpha)
	}
	if _, _, _, alpha := img.At(2, 2).RGBA(); alpha != 0xffff {
		t.Errorf("covered pixel alpha = %d, want opaque", alpha)
	}
}

func TestOpaqueCodecFlattens(t *testing.T) {
	p := record(t, 4, true)
	a, err := NewManager(nil).Export(context.Background(), p, Request{Format: Video, Codec: "mjpeg", Preset: "draft"})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Flattened || a.AlphaPreserved {
		t.Errorf("flattened=%v alpha=%v, want flattened opaque output", a.Flattened, a.AlphaPreserved)
	}
	if a.MIMEType != "video/x-msvideo" {
		t.Errorf("MIMEType = %q", a.MIMEType)
	}
	if a.Width != 8 || a.Height != 4 {
		t.Errorf("size = %dx%d, want 8x4 for draft", a.Width, a.Height)
	}
}

func TestGIFExport(t *testing.T) {
	p := record(t, 6, true)
	j, err := NewManager(nil).NewJob(context.Background(), p, Request{Format: GIF, Preset: "high"})
	if err != nil {
		t.Fatal(err)
	}
	if j.Progress() != 0 || j.Status() != Pending {
		t.Errorf("new job progress=%v status=%v", j.Progress(), j.Status())
	}
	j.Start(context.Background())
	a, err := j.Wait()
	if err != nil {
		t.Fatal(err)
	}
	if j.Progress() != 1 || j.Status() != Completed {
		t.Errorf("progress=%v status=%v, want 1 and completed", j.Progress(), j.Status())
	}

	g, err := gif.DecodeAll(bytes.NewReader(a.Data))
	if err != nil {
		t.Fatal(err)
	}
	if g.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0", g.LoopCount)
	}
	if len(g.Image) != 6 {
		t.Errorf("frames = %d, want 6", len(g.Image))
	}
	for i, d := range g.Delay {
		if d != 10 {
			t.Errorf("frame %d delay = %dcs, want 10", i, d)
		}
	}
	if !a.AlphaPreserved {
		t.Error("GIF of a transparent recording lost transparency")
	}
}

func TestCancelBeforeRun(t *testing.T) {
	p := record(t, 3, false)
	j, err := NewManager(nil).NewJob(context.Background(), p, Request{})
	if err != nil {
		t.Fatal(err)
	}
	j.Cancel()
	a, err := j.Wait()
	if a != nil || !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() = %v, %v; want nil, ErrCancelled", a, err)
	}
	if j.Status() != Cancelled {
		t.Errorf("status = %v, want cancelled", j.Status())
	}
	if p.State() != capture.Stopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if _, err := j.Run(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Errorf("Run after Cancel = %v", err)
	}
}

func TestCancelDuringRun(t *testing.T) {
	enc, name := registerGated(t)
	p := record(t, 4, false)
	j, err := NewManager(nil).NewJob(context.Background(), p, Request{Codec: name})
	if err != nil {
		t.Fatal(err)
	}
	j.Start(context.Background())
	<-enc.pushed
	if j.Status() != Running {
		t.Errorf("status = %v, want running", j.Status())
	}
	j.Cancel()
	close(enc.gate)

	a, err := j.Wait()
	if a != nil || !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() = %v, %v; want nil, ErrCancelled", a, err)
	}
	if j.Status() != Cancelled {
		t.Errorf("status = %v, want cancelled", j.Status())
	}
	if got := j.Progress(); got >= 1 {
		t.Errorf("Progress() = %v, want < 1", got)
	}
	if !enc.cancelled.Load() {
		t.Error("encoder was not cancelled")
	}
	if p.State() != capture.Stopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if _, err := NewManager(nil).Export(context.Background(), p, Request{}); err != nil {
		t.Errorf("export after cancel = %v", err)
	}
}

func TestJobOutlivingPipelineCancel(t *testing.T) {
	enc, name := registerGated(t)
	p := record(t, 3, false)
	j, err := NewManager(nil).NewJob(context.Background(), p, Request{Codec: name})
	if err != nil {
		t.Fatal(err)
	}
	j.Start(context.Background())
	<-enc.pushed

	if err := p.Cancel(); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(false); err != nil {
		t.Fatal(err)
	}
	p.Capture(surface.NewImage(16, 8))
	if err := p.Stop(); err != nil {
		t.Fatal(err)
	}
	next := p.Session()

	close(enc.gate)
	if _, err := j.Wait(); err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	if p.State() != capture.Stopped || p.Session() != next {
		t.Fatalf("state = %v, want the new session still stopped", p.State())
	}
	a, err := NewManager(nil).Export(context.Background(), p, Request{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Frames == 0 {
		t.Error("export of the new session has no frames")
	}
}

func TestCancelledContextStopsJob(t *testing.T) {
	p := record(t, 3, false)
	j, err := NewManager(nil).NewJob(context.Background(), p, Request{Format: GIF})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, err := j.Run(ctx)
	if a != nil || !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, %v; want nil, context.Canceled", a, err)
	}
	if j.Status() != Cancelled {
		t.Errorf("status = %v, want cancelled", j.Status())
	}
	if p.State() != capture.Stopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
}
