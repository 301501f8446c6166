// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import "time"

// EventKind identifies a pipeline notification.
type EventKind uint8

const (
	// EventStateChanged follows every lifecycle transition.
	EventStateChanged EventKind = iota
	// EventFrameDropped reports samples that were not stored.
	EventFrameDropped
	// EventCaptureFailed carries a *countup.CaptureError. The sample is
	// also counted as a drop.
	EventCaptureFailed
	// EventDegraded reports a lowered capture rate.
	EventDegraded
	// EventBudgetExceeded reports an automatic stop on the frame or byte
	// budget.
	EventBudgetExceeded
)

var eventNames = [...]string{
	EventStateChanged:   "state-changed",
	EventFrameDropped:   "frame-dropped",
	EventCaptureFailed:  "capture-failed",
	EventDegraded:       "degraded",
	EventBudgetExceeded: "budget-exceeded",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is delivered to Options.OnEvent. Events raised by the encoder
// worker arrive on the worker goroutine.
type Event struct {
	Kind  EventKind
	State State
	At    time.Time
	// Seq is the first affected sample for drop and failure events.
	Seq int64
	// Count is the number of samples dropped.
	Count int
	// FPS is the new capture rate for EventDegraded.
	FPS float64
	Err error
}
