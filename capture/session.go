// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import "time"

// Frame is one captured sample, PNG encoded.
type Frame struct {
	// Seq is the sample index. Dropped samples consume a number, so gaps
	// in Seq are the drops.
	Seq int64
	// Elapsed is the recording time at capture, excluding pauses.
	Elapsed time.Duration
	// CapturedAt is the clock reading at capture.
	CapturedAt time.Time
	PNG        []byte
}

// Chunk is an ordered group of frames. Chunks are appended in capture
// order and never reordered.
type Chunk struct {
	Index  int
	Frames []Frame
}

// Degradation records one adaptive reduction of the capture rate.
type Degradation struct {
	Elapsed time.Duration
	FromFPS float64
	ToFPS   float64
}

// Session is one recording. The capture worker is its only writer; read
// Chunks only once the pipeline has stopped or handed the session to an
// export.
type Session struct {
	ID        string
	StartedAt time.Time
	StoppedAt time.Time
	// PausedAccum is the total time spent paused. It only grows.
	PausedAccum time.Duration
	// Interval is the current target time between samples.
	Interval time.Duration

	// Transparent is set when the rendered background leaves alpha
	// untouched.
	Transparent bool
	// AlphaCapable is true when every sampled surface kept an alpha
	// channel.
	AlphaCapable bool

	Chunks       []Chunk
	Drops        int
	Bytes        int64
	Degradations []Degradation

	pausedAt  time.Time
	sampled   bool
	discarded bool
}

// Duration returns the recorded time up to now, excluding paused time.
// A stopped session reports its final duration regardless of now.
func (s *Session) Duration(now time.Time) time.Duration {
	end := now
	switch {
	case !s.StoppedAt.IsZero():
		end = s.StoppedAt
	case !s.pausedAt.IsZero():
		end = s.pausedAt
	}
	d := end.Sub(s.StartedAt) - s.PausedAccum
	if d < 0 {
		return 0
	}
	return d
}

// FrameCount returns the number of stored frames.
func (s *Session) FrameCount() int {
	n := 0
	for _, c := range s.Chunks {
		n += len(c.Frames)
	}
	return n
}

// Frames returns every stored frame in capture order.
func (s *Session) Frames() []Frame {
	out := make([]Frame, 0, s.FrameCount())
	for _, c := range s.Chunks {
		out = append(out, c.Frames...)
	}
	return out
}

// Empty reports whether the session holds no chunks.
func (s *Session) Empty() bool {
	return len(s.Chunks) == 0
}

func (s *Session) append(f Frame, chunkFrames int) {
	if n := len(s.Chunks); n == 0 || len(s.Chunks[n-1].Frames) >= chunkFrames {
		s.Chunks = append(s.Chunks, Chunk{Index: n, Frames: make([]Frame, 0, chunkFrames)})
	}
	last := &s.Chunks[len(s.Chunks)-1]
	last.Frames = append(last.Frames, f)
	s.Bytes += int64(len(f.PNG))
}
