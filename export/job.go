// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/capture"
	"github.com/gogpu/countup/codec"
)

// ErrCancelled is the cause reported by a job stopped through Cancel.
var ErrCancelled = errors.New("export: job cancelled")

// Status is the lifecycle of a Job.
type Status uint8

const (
	Pending Status = iota
	Running
	Completed
	Failed
	Cancelled
)

var statusNames = [...]string{
	Pending:   "pending",
	Running:   "running",
	Completed: "completed",
	Failed:    "failed",
	Cancelled: "cancelled",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Artifact is the finished export. The caller owns persistence.
type Artifact struct {
	Data      []byte
	MIMEType  string
	Extension string
	Format    Format
	Codec     string
	Width     int
	Height    int
	Frames    int
	Duration  time.Duration
	// AlphaPreserved reports that the output carries transparency.
	AlphaPreserved bool
	// Flattened reports that a transparent recording was composited onto
	// an opaque matte.
	Flattened bool
}

// Job encodes one session. Its only shared state is its progress.
type Job struct {
	ID      string
	Session *capture.Session
	Quality Quality
	Format  Format

	src       Source
	enc       codec.Encoder
	codecName string
	matte     color.Color
	loop      int
	alpha     bool
	flattened bool

	progress atomic.Uint64
	status   atomic.Uint32

	mu       sync.Mutex
	started  bool
	cancel   context.CancelCauseFunc
	done     chan struct{}
	artifact *Artifact
	err      error
}

func newJob(src Source, s *capture.Session, req Request, q Quality, enc codec.Encoder, name string) *Job {
	matte := req.Matte
	if matte == nil {
		matte = color.Black
	}
	c := color.NRGBAModel.Convert(matte).(color.NRGBA)
	c.A = 0xff
	return &Job{
		ID:        uuid.NewString(),
		Session:   s,
		Quality:   q,
		Format:    req.Format,
		src:       src,
		enc:       enc,
		codecName: name,
		matte:     c,
		loop:      req.Loop,
		done:      make(chan struct{}),
	}
}

// Progress returns the fraction of work done, in [0, 1]. It never
// decreases.
func (j *Job) Progress() float64 {
	return math.Float64frombits(j.progress.Load())
}

func (j *Job) advance(p float64) {
	p = math.Min(1, math.Max(0, p))
	for {
		old := j.progress.Load()
		if math.Float64frombits(old) >= p {
			return
		}
		if j.progress.CompareAndSwap(old, math.Float64bits(p)) {
			return
		}
	}
}

// Status returns the current job status.
func (j *Job) Status() Status {
	return Status(j.status.Load())
}

// Start runs the job on a new goroutine. Use Wait for the result.
func (j *Job) Start(ctx context.Context) {
	go func() { _, _ = j.Run(ctx) }()
}

// Wait blocks until the job finishes. Exactly one of the results is
// non-nil.
func (j *Job) Wait() (*Artifact, error) {
	<-j.done
	return j.artifact, j.err
}

// Cancel stops the job before its next frame. Buffered frames are
// released before Wait returns. Cancelling a job that has not started
// finishes it immediately.
func (j *Job) Cancel() {
	j.mu.Lock()
	if !j.started {
		j.started = true
		j.mu.Unlock()
		j.enc.Cancel()
		j.finish(nil, ErrCancelled)
		return
	}
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel(ErrCancelled)
	}
}

// Run encodes the session synchronously. A job runs at most once; later
// calls wait for and return the first result.
func (j *Job) Run(ctx context.Context) (*Artifact, error) {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return j.Wait()
	}
	j.started = true
	ctx, cancel := context.WithCancelCause(ctx)
	j.cancel = cancel
	j.mu.Unlock()
	defer cancel(nil)

	j.status.Store(uint32(Running))
	a, err := j.run(ctx)
	j.finish(a, err)
	return j.Wait()
}

func (j *Job) finish(a *Artifact, err error) {
	switch {
	case err == nil:
		j.advance(1)
		j.status.Store(uint32(Completed))
		j.release(j.src.EndExport)
		countup.Logger().Info("export: job completed",
			"id", j.ID, "format", j.Format.String(), "frames", a.Frames, "size", humanize.Bytes(uint64(len(a.Data))))
	case errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled):
		j.status.Store(uint32(Cancelled))
		a = nil
		j.release(j.src.AbortExport)
		countup.Logger().Info("export: job cancelled", "id", j.ID)
	default:
		j.status.Store(uint32(Failed))
		a = nil
		j.release(j.src.AbortExport)
		countup.Logger().Warn("export: job failed", "id", j.ID, "err", err)
	}
	j.artifact, j.err = a, err
	close(j.done)
}

// release hands the session back to the source. A session cancelled
// during the export is gone already and is left as is.
func (j *Job) release(fn func(*capture.Session) error) {
	err := fn(j.Session)
	switch {
	case err == nil:
	case errors.Is(err, capture.ErrSessionReplaced):
		countup.Logger().Debug("export: session replaced during export", "id", j.ID, "session", j.Session.ID)
	default:
		countup.Logger().Debug("export: release session", "id", j.ID, "err", err)
	}
}

func (j *Job) run(ctx context.Context) (*Artifact, error) {
	frames := j.Session.Frames()
	fps := j.Quality.FrameRate
	if j.Format == GIF {
		fps = math.Min(fps, MaxGIFFPS)
	}
	total := j.Session.Duration(j.Session.StoppedAt)
	steps := plan(frames, total, fps)

	cfg, err := png.DecodeConfig(bytes.NewReader(frames[0].PNG))
	if err != nil {
		return nil, &countup.CaptureError{Seq: frames[0].Seq, Err: err}
	}
	w, h := j.Quality.Size(cfg.Width, cfg.Height)

	var out bytes.Buffer
	params := codec.Params{Width: w, Height: h, FPS: fps, Bitrate: j.Quality.Bitrate, Loop: j.loop}
	if err := j.enc.Start(&out, params); err != nil {
		return nil, fmt.Errorf("export: start %s: %w", j.codecName, err)
	}

	var (
		cur      *image.RGBA
		curIndex = -1
		duration time.Duration
	)
	for i, st := range steps {
		if err := context.Cause(ctx); err != nil {
			j.enc.Cancel()
			return nil, err
		}
		if st.index != curIndex {
			f := frames[st.index]
			src, err := png.Decode(bytes.NewReader(f.PNG))
			if err != nil {
				j.enc.Cancel()
				return nil, &countup.CaptureError{Seq: f.Seq, Err: err}
			}
			cur = scale(src, w, h, j.Quality.Name == "draft")
			if !j.alpha {
				flatten(cur, j.matte)
			}
			curIndex = st.index
		}
		if err := j.enc.PushFrame(cur, st.delay); err != nil {
			j.enc.Cancel()
			return nil, fmt.Errorf("export: encode frame %d: %w", i, err)
		}
		duration += st.delay
		j.advance(float64(i+1) / float64(len(steps)+1))
	}

	if err := context.Cause(ctx); err != nil {
		j.enc.Cancel()
		return nil, err
	}
	if err := j.enc.Finalize(); err != nil {
		return nil, fmt.Errorf("export: finalize %s: %w", j.codecName, err)
	}
	return &Artifact{
		Data:           out.Bytes(),
		MIMEType:       j.enc.MIMEType(),
		Extension:      j.enc.Extension(),
		Format:         j.Format,
		Codec:          j.codecName,
		Width:          w,
		Height:         h,
		Frames:         len(steps),
		Duration:       duration,
		AlphaPreserved: j.alpha,
		Flattened:      j.flattened,
	}, nil
}
