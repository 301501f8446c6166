// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package capture samples a render surface into a recording session.
//
// The Pipeline owns the recording lifecycle. Capture is called once per
// render tick and never blocks: due samples are snapshotted on the calling
// goroutine and handed to a single encoder worker through a bounded queue.
// When the queue is full the sample is dropped and counted, so a slow
// encoder costs captured frames, never display frames.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/surface"
)

// ErrSessionReplaced is returned when an export finishes after its
// session was cancelled and another one started.
var ErrSessionReplaced = errors.New("capture: export session is no longer current")

// Monitor is the view of a performance monitor the pipeline needs for
// adaptive sampling. *perf.Monitor satisfies it.
type Monitor interface {
	ShouldOptimize() bool
	AverageFPS() float64
}

// dropRecorder is implemented by monitors that also count drops.
type dropRecorder interface {
	RecordDrop(n int)
}

// EncodeFunc writes one frame image to w.
type EncodeFunc func(w io.Writer, img image.Image) error

// Options configures a Pipeline. Zero fields take the documented defaults.
type Options struct {
	// FPS is the target capture rate. Default 30.
	FPS float64
	// MinFPS is the floor for adaptive degradation. Default 10.
	MinFPS float64
	// ChunkFrames is the number of frames per chunk. Default 30.
	ChunkFrames int
	// QueueSize bounds the frames waiting for the encoder. Default 8.
	QueueSize int
	// MaxFrames stops the session after this many samples are accepted.
	// Zero means no limit.
	MaxFrames int
	// MaxBytes stops the session once stored frames exceed this size.
	// Zero means no limit.
	MaxBytes int64
	// Clock defaults to countup.SystemClock.
	Clock countup.Clock
	// Monitor enables adaptive sampling when set.
	Monitor Monitor
	// OnEvent receives pipeline events. It must not call back into the
	// pipeline.
	OnEvent func(Event)
	// Encode defaults to fast PNG compression.
	Encode EncodeFunc
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.MinFPS <= 0 {
		o.MinFPS = 10
	}
	if o.MinFPS > o.FPS {
		o.MinFPS = o.FPS
	}
	if o.ChunkFrames <= 0 {
		o.ChunkFrames = 30
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 8
	}
	if o.Clock == nil {
		o.Clock = countup.SystemClock{}
	}
	if o.Encode == nil {
		enc := &png.Encoder{CompressionLevel: png.BestSpeed}
		o.Encode = func(w io.Writer, img image.Image) error { return enc.Encode(w, img) }
	}
	return o
}

// degradeCooldown is the minimum recorded time between two degradations.
const degradeCooldown = time.Second

type job struct {
	session    *Session
	seq        int64
	elapsed    time.Duration
	capturedAt time.Time
	img        *image.RGBA
}

// Pipeline drives one recording session at a time. It is safe for
// concurrent use.
type Pipeline struct {
	opts Options

	mu          sync.Mutex
	state       State
	session     *Session
	queue       chan job
	drained     chan struct{}
	fps         float64
	nextAt      time.Duration
	seq         int64
	accepted    int
	lastDegrade time.Duration
}

// New creates an idle pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts.withDefaults()}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Session returns the current session, or nil when idle.
func (p *Pipeline) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// FPS returns the current target capture rate.
func (p *Pipeline) FPS() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Idle {
		return p.opts.FPS
	}
	return p.fps
}

// Duration returns the recorded time of the current session, excluding
// pauses. It is zero when idle.
func (p *Pipeline) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return 0
	}
	return p.session.Duration(p.opts.Clock.Now())
}

// Start begins a new session. transparent records whether the scene
// background leaves alpha untouched.
func (p *Pipeline) Start(transparent bool) error {
	p.mu.Lock()
	if p.state != Idle {
		err := p.transitionError("start")
		p.mu.Unlock()
		return err
	}
	now := p.opts.Clock.Now()
	s := &Session{
		ID:           uuid.NewString(),
		StartedAt:    now,
		Interval:     interval(p.opts.FPS),
		Transparent:  transparent,
		AlphaCapable: true,
	}
	p.session = s
	p.fps = p.opts.FPS
	p.nextAt, p.seq, p.accepted, p.lastDegrade = 0, 0, 0, 0
	p.queue = make(chan job, p.opts.QueueSize)
	p.drained = make(chan struct{})
	go p.work(p.queue, p.drained)
	p.state = Recording
	p.mu.Unlock()

	countup.Logger().Info("capture: session started",
		"id", s.ID, "fps", p.opts.FPS, "transparent", transparent)
	p.emit(Event{Kind: EventStateChanged, State: Recording, At: now})
	return nil
}

// Pause suspends sampling. Paused time is excluded from the duration.
func (p *Pipeline) Pause() error {
	p.mu.Lock()
	if p.state != Recording {
		err := p.transitionError("pause")
		p.mu.Unlock()
		return err
	}
	now := p.opts.Clock.Now()
	p.session.pausedAt = now
	p.state = Paused
	p.mu.Unlock()

	p.emit(Event{Kind: EventStateChanged, State: Paused, At: now})
	return nil
}

// Resume continues a paused session.
func (p *Pipeline) Resume() error {
	p.mu.Lock()
	if p.state != Paused {
		err := p.transitionError("resume")
		p.mu.Unlock()
		return err
	}
	now := p.opts.Clock.Now()
	if d := now.Sub(p.session.pausedAt); d > 0 {
		p.session.PausedAccum += d
	}
	p.session.pausedAt = time.Time{}
	p.state = Recording
	p.mu.Unlock()

	p.emit(Event{Kind: EventStateChanged, State: Recording, At: now})
	return nil
}

// Stop finalizes the session. It waits for frames already queued to be
// encoded. A session without chunks is valid but cannot be exported.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if p.state != Recording && p.state != Paused {
		err := p.transitionError("stop")
		p.mu.Unlock()
		return err
	}
	now := p.opts.Clock.Now()
	s := p.session
	drained := p.stopLocked(now)
	p.mu.Unlock()

	<-drained
	p.mu.Lock()
	frames, size := s.FrameCount(), s.Bytes
	p.mu.Unlock()

	countup.Logger().Info("capture: session stopped",
		"id", s.ID, "duration", s.Duration(now), "frames", frames,
		"drops", s.Drops, "size", humanize.IBytes(uint64(size)))
	p.emit(Event{Kind: EventStateChanged, State: Stopped, At: now})
	return nil
}

// stopLocked moves to Stopped and closes the queue. The returned channel
// is closed once the worker has stored every queued frame.
func (p *Pipeline) stopLocked(now time.Time) chan struct{} {
	s := p.session
	if !s.pausedAt.IsZero() {
		s.PausedAccum += now.Sub(s.pausedAt)
		s.pausedAt = time.Time{}
	}
	s.StoppedAt = now
	p.state = Stopped
	close(p.queue)
	return p.drained
}

// Cancel discards the session from any non-idle state and returns to
// idle. A session already handed to an export keeps its frames for that
// export; otherwise the chunks are released.
func (p *Pipeline) Cancel() error {
	p.mu.Lock()
	if p.state == Idle {
		err := p.transitionError("cancel")
		p.mu.Unlock()
		return err
	}
	from := p.state
	s := p.session
	s.discarded = true
	if from == Recording || from == Paused {
		close(p.queue)
	}
	drained := p.drained
	p.session = nil
	p.queue = nil
	p.state = Idle
	p.mu.Unlock()

	<-drained
	if from != Exporting {
		p.mu.Lock()
		s.Chunks = nil
		s.Bytes = 0
		p.mu.Unlock()
	}
	countup.Logger().Info("capture: session cancelled", "id", s.ID, "from", from.String())
	p.emit(Event{Kind: EventStateChanged, State: Idle, At: p.opts.Clock.Now()})
	return nil
}

// BeginExport hands the stopped session to an export and moves to
// Exporting. The session must not be modified by the caller. A session
// that stored no frames stays Stopped and yields an EmptySessionError.
func (p *Pipeline) BeginExport() (*Session, error) {
	p.mu.Lock()
	if p.state != Stopped {
		err := p.transitionError("export")
		p.mu.Unlock()
		return nil, err
	}
	drained := p.drained
	s := p.session
	p.state = Exporting
	p.mu.Unlock()

	// An automatic stop does not wait for the worker, so frames may still
	// be landing until drained closes.
	<-drained

	p.mu.Lock()
	if p.state != Exporting || p.session != s {
		// Cancelled while draining.
		err := p.transitionError("export")
		p.mu.Unlock()
		return nil, err
	}
	if s.Empty() {
		p.state = Stopped
		p.mu.Unlock()
		return nil, &countup.EmptySessionError{SessionID: s.ID}
	}
	p.mu.Unlock()

	p.emit(Event{Kind: EventStateChanged, State: Exporting, At: p.opts.Clock.Now()})
	return s, nil
}

// EndExport releases the exported session s and returns to idle.
func (p *Pipeline) EndExport(s *Session) error {
	p.mu.Lock()
	if err := p.exportingLocked(s, "finish export"); err != nil {
		p.mu.Unlock()
		return err
	}
	p.session = nil
	p.state = Idle
	p.mu.Unlock()

	p.emit(Event{Kind: EventStateChanged, State: Idle, At: p.opts.Clock.Now()})
	return nil
}

// AbortExport returns a failed or cancelled export of s to Stopped so
// the session can be exported again.
func (p *Pipeline) AbortExport(s *Session) error {
	p.mu.Lock()
	if err := p.exportingLocked(s, "abort export"); err != nil {
		p.mu.Unlock()
		return err
	}
	p.state = Stopped
	p.mu.Unlock()

	p.emit(Event{Kind: EventStateChanged, State: Stopped, At: p.opts.Clock.Now()})
	return nil
}

// exportingLocked checks that s is the session being exported. An export
// that outlived a Cancel must not touch the session recorded after it.
func (p *Pipeline) exportingLocked(s *Session, cmd string) error {
	if p.state != Exporting {
		return p.transitionError(cmd)
	}
	if p.session != s {
		return ErrSessionReplaced
	}
	return nil
}

// Capture samples s when a frame is due. It reports whether a frame was
// queued. Samples missed since the last call, and samples that find the
// encoder queue full, are counted as drops.
func (p *Pipeline) Capture(s surface.Surface) bool {
	var events []Event
	queued := p.capture(s, &events)
	p.emit(events...)
	return queued
}

func (p *Pipeline) capture(sf surface.Surface, events *[]Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Recording {
		return false
	}
	now := p.opts.Clock.Now()
	sess := p.session
	elapsed := sess.Duration(now)

	p.maybeDegradeLocked(now, elapsed, events)

	if elapsed < p.nextAt {
		return false
	}
	missed := int64((elapsed - p.nextAt) / sess.Interval)
	if missed > 0 {
		p.dropLocked(now, p.seq, int(missed), nil, events)
	}
	seq := p.seq + missed
	p.seq = seq + 1
	p.nextAt += time.Duration(missed+1) * sess.Interval

	if !sf.Alpha() {
		sess.AlphaCapable = false
	}
	sess.sampled = true

	select {
	case p.queue <- job{session: sess, seq: seq, elapsed: elapsed, capturedAt: now, img: sf.Snapshot()}:
	default:
		p.dropLocked(now, seq, 1, nil, events)
		return false
	}

	p.accepted++
	if p.opts.MaxFrames > 0 && p.accepted >= p.opts.MaxFrames {
		countup.Logger().Warn("capture: frame budget reached", "id", sess.ID, "frames", p.accepted)
		p.stopLocked(now)
		*events = append(*events,
			Event{Kind: EventBudgetExceeded, State: Stopped, At: now, Count: p.accepted},
			Event{Kind: EventStateChanged, State: Stopped, At: now})
	}
	return true
}

func (p *Pipeline) maybeDegradeLocked(now time.Time, elapsed time.Duration, events *[]Event) {
	m := p.opts.Monitor
	if m == nil || p.fps <= p.opts.MinFPS {
		return
	}
	if len(p.session.Degradations) > 0 && elapsed-p.lastDegrade < degradeCooldown {
		return
	}
	if !m.ShouldOptimize() {
		return
	}
	from := p.fps
	to := math.Max(p.opts.MinFPS, math.Floor(from*2/3))
	p.fps = to
	p.session.Interval = interval(to)
	p.lastDegrade = elapsed
	p.session.Degradations = append(p.session.Degradations, Degradation{Elapsed: elapsed, FromFPS: from, ToFPS: to})

	countup.Logger().Warn("capture: lowering capture rate",
		"id", p.session.ID, "from", from, "to", to, "render_fps", m.AverageFPS())
	*events = append(*events, Event{Kind: EventDegraded, State: p.state, At: now, FPS: to})
}

func (p *Pipeline) dropLocked(now time.Time, seq int64, n int, err error, events *[]Event) {
	p.session.Drops += n
	if r, ok := p.opts.Monitor.(dropRecorder); ok {
		r.RecordDrop(n)
	}
	kind := EventFrameDropped
	if err != nil {
		kind = EventCaptureFailed
	}
	countup.Logger().Debug("capture: frames dropped", "seq", seq, "count", n, "err", err)
	*events = append(*events, Event{Kind: kind, State: p.state, At: now, Seq: seq, Count: n, Err: err})
}

// work encodes queued frames in order and appends them to their session.
func (p *Pipeline) work(queue <-chan job, drained chan<- struct{}) {
	defer close(drained)
	var buf bytes.Buffer
	for j := range queue {
		buf.Reset()
		err := p.opts.Encode(&buf, j.img)

		var events []Event
		p.mu.Lock()
		switch {
		case j.session.discarded:
		case err != nil:
			p.failLocked(j, err, &events)
		default:
			f := Frame{Seq: j.seq, Elapsed: j.elapsed, CapturedAt: j.capturedAt, PNG: bytes.Clone(buf.Bytes())}
			j.session.append(f, p.opts.ChunkFrames)
			p.checkBytesLocked(j.session, &events)
		}
		p.mu.Unlock()
		p.emit(events...)
	}
}

func (p *Pipeline) failLocked(j job, err error, events *[]Event) {
	cerr := &countup.CaptureError{Seq: j.seq, Err: fmt.Errorf("encode: %w", err)}
	j.session.Drops++
	if r, ok := p.opts.Monitor.(dropRecorder); ok {
		r.RecordDrop(1)
	}
	countup.Logger().Warn("capture: frame encode failed", "seq", j.seq, "err", err)
	*events = append(*events, Event{Kind: EventCaptureFailed, State: p.state, At: j.capturedAt, Seq: j.seq, Count: 1, Err: cerr})
}

func (p *Pipeline) checkBytesLocked(s *Session, events *[]Event) {
	if p.opts.MaxBytes <= 0 || s.Bytes <= p.opts.MaxBytes || s != p.session {
		return
	}
	if p.state != Recording && p.state != Paused {
		return
	}
	now := p.opts.Clock.Now()
	countup.Logger().Warn("capture: memory budget reached",
		"id", s.ID, "size", humanize.IBytes(uint64(s.Bytes)), "budget", humanize.IBytes(uint64(p.opts.MaxBytes)))
	p.stopLocked(now)
	*events = append(*events,
		Event{Kind: EventBudgetExceeded, State: Stopped, At: now, Count: s.FrameCount()},
		Event{Kind: EventStateChanged, State: Stopped, At: now})
}

func (p *Pipeline) transitionError(cmd string) error {
	return &countup.StateTransitionError{Command: cmd, From: p.state.String()}
}

func (p *Pipeline) emit(events ...Event) {
	if p.opts.OnEvent == nil {
		return
	}
	for _, e := range events {
		p.opts.OnEvent(e)
	}
}

func interval(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / fps)
}
