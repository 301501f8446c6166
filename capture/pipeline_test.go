// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/surface"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Event, 64)}
}

func (r *recorder) on(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	select {
	case r.ch <- e:
	default:
	}
}

func (r *recorder) count(k EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func (r *recorder) wait(t *testing.T, k EventKind) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-r.ch:
			if e.Kind == k {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %v event", k)
		}
	}
}

func newPipeline(opts Options) (*Pipeline, *countup.ManualClock) {
	clock := countup.NewManualClock(epoch)
	opts.Clock = clock
	return New(opts), clock
}

// tick captures then advances the clock, n times.
func tick(p *Pipeline, clock *countup.ManualClock, s surface.Surface, n int, step time.Duration) {
	for i := 0; i < n; i++ {
		p.Capture(s)
		clock.Advance(step)
	}
}

func TestDurationExcludesPause(t *testing.T) {
	p, clock := newPipeline(Options{})
	mustDo(t, p.Start(false))
	clock.Advance(1000 * time.Millisecond)
	mustDo(t, p.Pause())
	clock.Advance(500 * time.Millisecond)
	if got := p.Duration(); got != time.Second {
		t.Errorf("Duration() while paused = %v, want 1s", got)
	}
	mustDo(t, p.Resume())
	clock.Advance(1000 * time.Millisecond)
	mustDo(t, p.Stop())

	s := p.Session()
	if got := s.Duration(clock.Now().Add(time.Hour)); got != 2*time.Second {
		t.Errorf("Duration() = %v, want 2s", got)
	}
	if s.PausedAccum != 500*time.Millisecond {
		t.Errorf("PausedAccum = %v, want 500ms", s.PausedAccum)
	}
}

func TestStopWhilePausedCountsPause(t *testing.T) {
	p, clock := newPipeline(Options{})
	mustDo(t, p.Start(false))
	clock.Advance(time.Second)
	mustDo(t, p.Pause())
	clock.Advance(time.Second)
	mustDo(t, p.Stop())
	if got := p.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
}

func TestInvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	setups := map[State]func(p *Pipeline){
		Idle:      func(p *Pipeline) {},
		Recording: func(p *Pipeline) { _ = p.Start(false) },
		Paused:    func(p *Pipeline) { _ = p.Start(false); _ = p.Pause() },
		Stopped:   func(p *Pipeline) { _ = p.Start(false); _ = p.Stop() },
		Exporting: func(p *Pipeline) {
			_ = p.Start(false)
			p.Capture(surface.NewImage(4, 4))
			_ = p.Stop()
			_, _ = p.BeginExport()
		},
	}
	commands := map[string]func(p *Pipeline) error{
		"start":  func(p *Pipeline) error { return p.Start(false) },
		"pause":  (*Pipeline).Pause,
		"resume": (*Pipeline).Resume,
		"stop":   (*Pipeline).Stop,
		"cancel": (*Pipeline).Cancel,
		"export": func(p *Pipeline) error { _, err := p.BeginExport(); return err },
		"finish": func(p *Pipeline) error { return p.EndExport(p.Session()) },
	}
	valid := map[State][]string{
		Idle:      {"start"},
		Recording: {"pause", "stop", "cancel"},
		Paused:    {"resume", "stop", "cancel"},
		Stopped:   {"cancel", "export"},
		Exporting: {"cancel", "finish"},
	}

	for state, setup := range setups {
		for name, cmd := range commands {
			if contains(valid[state], name) {
				continue
			}
			t.Run(state.String()+"/"+name, func(t *testing.T) {
				p, _ := newPipeline(Options{})
				setup(p)
				if p.State() != state {
					t.Fatalf("setup reached %v, want %v", p.State(), state)
				}
				err := cmd(p)
				var se *countup.StateTransitionError
				if !errors.As(err, &se) {
					t.Fatalf("%s from %v: err = %v, want StateTransitionError", name, state, err)
				}
				if se.From != state.String() {
					t.Errorf("From = %q, want %q", se.From, state)
				}
				if p.State() != state {
					t.Errorf("state = %v after rejected %s, want %v", p.State(), name, state)
				}
			})
		}
	}
}

func TestStartPauseCancelDiscardsSession(t *testing.T) {
	p, clock := newPipeline(Options{FPS: 10})
	img := surface.NewImage(8, 8)
	mustDo(t, p.Start(false))
	tick(p, clock, img, 3, 100*time.Millisecond)
	mustDo(t, p.Pause())
	s := p.Session()
	mustDo(t, p.Cancel())

	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	if p.Session() != nil {
		t.Error("Session() != nil after cancel")
	}
	if len(s.Chunks) != 0 {
		t.Errorf("cancelled session kept %d chunks", len(s.Chunks))
	}
}

func TestCaptureCadenceAndChunks(t *testing.T) {
	p, clock := newPipeline(Options{FPS: 10, ChunkFrames: 4})
	img := surface.NewImage(8, 8)
	mustDo(t, p.Start(false))
	tick(p, clock, img, 20, 50*time.Millisecond)
	mustDo(t, p.Stop())

	s := p.Session()
	if got := s.FrameCount(); got != 10 {
		t.Fatalf("FrameCount() = %d, want 10", got)
	}
	if len(s.Chunks) != 3 {
		t.Fatalf("len(Chunks) = %d, want 3", len(s.Chunks))
	}
	for i, c := range s.Chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
	for i, f := range s.Frames() {
		if f.Seq != int64(i) {
			t.Errorf("frame %d seq = %d", i, f.Seq)
		}
		if want := time.Duration(i) * 100 * time.Millisecond; f.Elapsed != want {
			t.Errorf("frame %d elapsed = %v, want %v", i, f.Elapsed, want)
		}
	}
	if s.Drops != 0 {
		t.Errorf("Drops = %d, want 0", s.Drops)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(s.Chunks[0].Frames[0].PNG))
	if err != nil {
		t.Fatalf("frame is not a PNG: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("frame size = %dx%d, want 8x8", cfg.Width, cfg.Height)
	}
}

func TestNoCaptureWhilePaused(t *testing.T) {
	p, clock := newPipeline(Options{FPS: 10})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))
	tick(p, clock, img, 2, 100*time.Millisecond)
	mustDo(t, p.Pause())
	tick(p, clock, img, 5, 100*time.Millisecond)
	mustDo(t, p.Resume())
	tick(p, clock, img, 2, 100*time.Millisecond)
	mustDo(t, p.Stop())

	s := p.Session()
	if got := s.FrameCount(); got != 4 {
		t.Errorf("FrameCount() = %d, want 4", got)
	}
	if s.Drops != 0 {
		t.Errorf("Drops = %d, want 0 (paused samples are not due)", s.Drops)
	}
}

func TestMissedSamplesAreDrops(t *testing.T) {
	rec := newRecorder()
	p, clock := newPipeline(Options{FPS: 10, OnEvent: rec.on})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))
	p.Capture(img)
	clock.Advance(350 * time.Millisecond)
	p.Capture(img)
	mustDo(t, p.Stop())

	s := p.Session()
	if s.Drops != 2 {
		t.Errorf("Drops = %d, want 2", s.Drops)
	}
	frames := s.Frames()
	if len(frames) != 2 || frames[1].Seq != 3 {
		t.Errorf("frames = %+v, want seqs 0 and 3", frames)
	}
	if rec.count(EventFrameDropped) != 1 {
		t.Errorf("got %d drop events, want 1", rec.count(EventFrameDropped))
	}
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	enc := func(w io.Writer, img image.Image) error {
		started <- struct{}{}
		<-release
		_, err := w.Write([]byte("frame"))
		return err
	}
	p, clock := newPipeline(Options{FPS: 10, QueueSize: 1, Encode: enc})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))

	if !p.Capture(img) {
		t.Fatal("first capture not queued")
	}
	<-started
	clock.Advance(100 * time.Millisecond)
	if !p.Capture(img) {
		t.Fatal("second capture not queued")
	}
	clock.Advance(100 * time.Millisecond)
	if p.Capture(img) {
		t.Fatal("third capture queued into a full queue")
	}
	close(release)
	mustDo(t, p.Stop())

	s := p.Session()
	if s.FrameCount() != 2 || s.Drops != 1 {
		t.Errorf("frames=%d drops=%d, want 2 and 1", s.FrameCount(), s.Drops)
	}
}

func TestEncodeFailureIsRecordedAsDrop(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	enc := func(w io.Writer, img image.Image) error {
		if calls.Add(1) == 2 {
			return boom
		}
		_, err := w.Write([]byte("ok"))
		return err
	}
	rec := newRecorder()
	p, clock := newPipeline(Options{FPS: 10, Encode: enc, OnEvent: rec.on})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))
	tick(p, clock, img, 3, 100*time.Millisecond)
	mustDo(t, p.Stop())

	s := p.Session()
	if s.FrameCount() != 2 || s.Drops != 1 {
		t.Errorf("frames=%d drops=%d, want 2 and 1", s.FrameCount(), s.Drops)
	}
	e := rec.wait(t, EventCaptureFailed)
	var ce *countup.CaptureError
	if !errors.As(e.Err, &ce) || ce.Seq != 1 || !errors.Is(e.Err, boom) {
		t.Errorf("event err = %v, want CaptureError for seq 1 wrapping boom", e.Err)
	}
	if p.State() != Stopped {
		t.Errorf("State() = %v, want stopped", p.State())
	}
}

func TestFrameBudgetStopsSession(t *testing.T) {
	rec := newRecorder()
	p, clock := newPipeline(Options{FPS: 10, MaxFrames: 3, OnEvent: rec.on})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))
	tick(p, clock, img, 6, 100*time.Millisecond)

	if p.State() != Stopped {
		t.Fatalf("State() = %v, want stopped", p.State())
	}
	if rec.count(EventBudgetExceeded) != 1 {
		t.Errorf("got %d budget events, want 1", rec.count(EventBudgetExceeded))
	}
	s, err := p.BeginExport()
	if err != nil {
		t.Fatal(err)
	}
	if s.FrameCount() != 3 {
		t.Errorf("FrameCount() = %d, want 3", s.FrameCount())
	}
	mustDo(t, p.EndExport(s))
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func TestByteBudgetStopsSession(t *testing.T) {
	enc := func(w io.Writer, img image.Image) error {
		_, err := w.Write(make([]byte, 100))
		return err
	}
	rec := newRecorder()
	p, clock := newPipeline(Options{FPS: 10, MaxBytes: 250, Encode: enc, OnEvent: rec.on})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))
	tick(p, clock, img, 3, 100*time.Millisecond)

	rec.wait(t, EventBudgetExceeded)
	s, err := p.BeginExport()
	if err != nil {
		t.Fatal(err)
	}
	if s.FrameCount() != 3 || s.Bytes != 300 {
		t.Errorf("frames=%d bytes=%d, want 3 and 300", s.FrameCount(), s.Bytes)
	}
}

type slowMonitor struct{}

func (slowMonitor) ShouldOptimize() bool { return true }
func (slowMonitor) AverageFPS() float64  { return 20 }

func TestAdaptiveDegradationIsReported(t *testing.T) {
	rec := newRecorder()
	p, clock := newPipeline(Options{FPS: 30, MinFPS: 10, Monitor: slowMonitor{}, OnEvent: rec.on})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))

	p.Capture(img)
	if got := p.FPS(); got != 20 {
		t.Fatalf("FPS() after first degrade = %v, want 20", got)
	}
	clock.Advance(500 * time.Millisecond)
	p.Capture(img)
	if got := p.FPS(); got != 20 {
		t.Errorf("FPS() inside cooldown = %v, want 20", got)
	}
	for i := 0; i < 4; i++ {
		clock.Advance(time.Second)
		p.Capture(img)
	}
	if got := p.FPS(); got != 10 {
		t.Errorf("FPS() = %v, want floor 10", got)
	}
	mustDo(t, p.Stop())

	s := p.Session()
	if len(s.Degradations) != 3 {
		t.Errorf("len(Degradations) = %d, want 3", len(s.Degradations))
	}
	if got := rec.count(EventDegraded); got != 3 {
		t.Errorf("got %d degraded events, want 3", got)
	}
}

func TestAlphaCapability(t *testing.T) {
	tests := []struct {
		name string
		img  *surface.Image
		want bool
	}{
		{"alpha", surface.NewImage(4, 4), true},
		{"opaque", surface.NewImage(4, 4, surface.WithoutAlpha()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPipeline(Options{})
			mustDo(t, p.Start(true))
			p.Capture(tt.img)
			mustDo(t, p.Stop())
			s := p.Session()
			if s.AlphaCapable != tt.want {
				t.Errorf("AlphaCapable = %v, want %v", s.AlphaCapable, tt.want)
			}
			if !s.Transparent {
				t.Error("Transparent = false, want true")
			}
		})
	}
}

func TestAbortExportReturnsToStopped(t *testing.T) {
	p, _ := newPipeline(Options{})
	mustDo(t, p.Start(false))
	p.Capture(surface.NewImage(4, 4))
	mustDo(t, p.Stop())
	s, err := p.BeginExport()
	if err != nil {
		t.Fatal(err)
	}
	mustDo(t, p.AbortExport(s))
	if p.State() != Stopped {
		t.Errorf("State() = %v, want stopped", p.State())
	}
	if _, err := p.BeginExport(); err != nil {
		t.Errorf("second BeginExport() = %v", err)
	}
}

func TestStaleExportLeavesNewSessionAlone(t *testing.T) {
	p, _ := newPipeline(Options{})
	img := surface.NewImage(4, 4)
	mustDo(t, p.Start(false))
	p.Capture(img)
	mustDo(t, p.Stop())
	old, err := p.BeginExport()
	if err != nil {
		t.Fatal(err)
	}
	mustDo(t, p.Cancel())

	mustDo(t, p.Start(false))
	p.Capture(img)
	mustDo(t, p.Stop())
	cur, err := p.BeginExport()
	if err != nil {
		t.Fatal(err)
	}

	for name, release := range map[string]func(*Session) error{
		"finish": p.EndExport,
		"abort":  p.AbortExport,
	} {
		if err := release(old); !errors.Is(err, ErrSessionReplaced) {
			t.Errorf("%s with the cancelled session = %v, want ErrSessionReplaced", name, err)
		}
	}
	if p.State() != Exporting || p.Session() != cur {
		t.Errorf("state=%v current=%v, want exporting the new session", p.State(), p.Session() == cur)
	}
	mustDo(t, p.EndExport(cur))
}

func TestBeginExportRejectsEmptySession(t *testing.T) {
	p, _ := newPipeline(Options{})
	mustDo(t, p.Start(false))
	mustDo(t, p.Stop())

	_, err := p.BeginExport()
	var ee *countup.EmptySessionError
	if !errors.As(err, &ee) {
		t.Fatalf("BeginExport() = %v, want EmptySessionError", err)
	}
	if ee.SessionID != p.Session().ID {
		t.Errorf("SessionID = %q, want %q", ee.SessionID, p.Session().ID)
	}
	if p.State() != Stopped {
		t.Errorf("State() = %v, want stopped", p.State())
	}
}

// A frame budget stops the session from Capture without waiting for the
// encoder. BeginExport must still see the frame once it lands.
func TestBeginExportWaitsForBudgetStop(t *testing.T) {
	release := make(chan struct{})
	enc := func(w io.Writer, img image.Image) error {
		<-release
		return png.Encode(w, img)
	}
	p, _ := newPipeline(Options{FPS: 10, MaxFrames: 1, Encode: enc})
	mustDo(t, p.Start(false))
	if !p.Capture(surface.NewImage(4, 4)) {
		t.Fatal("Capture() = false, want queued")
	}
	if p.State() != Stopped {
		t.Fatalf("State() = %v, want stopped", p.State())
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	s, err := p.BeginExport()
	if err != nil {
		t.Fatalf("BeginExport() = %v", err)
	}
	if s.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d, want 1", s.FrameCount())
	}
	if p.State() != Exporting {
		t.Errorf("State() = %v, want exporting", p.State())
	}
}

func TestCancelWhileBeginExportDrains(t *testing.T) {
	release := make(chan struct{})
	enc := func(w io.Writer, img image.Image) error {
		<-release
		return png.Encode(w, img)
	}
	p, _ := newPipeline(Options{FPS: 10, MaxFrames: 1, Encode: enc})
	mustDo(t, p.Start(false))
	p.Capture(surface.NewImage(4, 4))

	errc := make(chan error, 1)
	go func() {
		_, err := p.BeginExport()
		errc <- err
	}()
	for p.State() != Exporting {
		time.Sleep(time.Millisecond)
	}
	cancelled := make(chan error, 1)
	go func() { cancelled <- p.Cancel() }()
	for p.State() != Idle {
		time.Sleep(time.Millisecond)
	}
	close(release)

	mustDo(t, <-cancelled)
	var se *countup.StateTransitionError
	if err := <-errc; !errors.As(err, &se) {
		t.Errorf("BeginExport() = %v, want StateTransitionError", err)
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
