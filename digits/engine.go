// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package digits drives the per-slot digit transitions of a counter.
//
// A value is rendered as a fixed-width, zero-padded digit string. Each digit
// position is a Slot with its own transition: whenever a slot's digit
// changes, the slot records the glyph it was showing and starts a new
// transition offset by its stagger. Interrupting a running transition
// restarts it from the glyph currently on screen; changes are never queued.
package digits

import (
	"time"

	"github.com/gogpu/countup"
)

// TransitionState is the lifecycle of a slot's current digit change.
type TransitionState uint8

const (
	// Idle slots show Current with no animation.
	Idle TransitionState = iota
	// Waiting slots are inside their stagger delay and still show Previous.
	Waiting
	// Running slots are blending Previous into Current.
	Running
)

func (s TransitionState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Slot is one fixed digit position.
type Slot struct {
	Index    int
	Current  rune
	Previous rune
	State    TransitionState
	StartAt  time.Time
}

// SlotFrame is the renderable state of one slot at a point in time.
type SlotFrame struct {
	Index    int
	Previous rune
	Current  rune
	// Progress is the eased progress in [0,1]; 0 while waiting.
	Progress float64
	State    TransitionState
	Layers   []Layer
}

// Glyph returns the glyph that dominates the frame.
func (f SlotFrame) Glyph() rune {
	if f.State == Idle || f.Progress >= 0.5 {
		return f.Current
	}
	return f.Previous
}

// Engine owns the slots of one counter run. It is not safe for concurrent
// use; the tick scheduler calls it from a single goroutine.
type Engine struct {
	layout   Layout
	cfg      TransitionConfig
	slots    []Slot
	negative bool
}

// NewEngine creates an engine with every slot showing '0'.
func NewEngine(layout Layout, cfg TransitionConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if layout.IntDigits < MinIntDigits || layout.FracDigits < 0 || layout.FracDigits > MaxFracDigits {
		return nil, &countup.ConfigurationError{Field: "layout", Reason: "invalid slot layout"}
	}
	e := &Engine{cfg: cfg}
	e.Reset(layout)
	return e, nil
}

// Reset re-derives the slots for a new layout. All transitions are dropped.
func (e *Engine) Reset(layout Layout) {
	e.layout = layout
	e.negative = false
	e.slots = make([]Slot, layout.Slots())
	for i := range e.slots {
		e.slots[i] = Slot{Index: i, Current: '0', Previous: '0'}
	}
}

// Seed shows v immediately, without transitions.
func (e *Engine) Seed(v float64) {
	ds, neg := e.layout.Digits(v)
	e.negative = neg
	for i, d := range ds {
		e.slots[i] = Slot{Index: i, Current: d, Previous: d}
	}
}

// Layout returns the fixed slot layout.
func (e *Engine) Layout() Layout { return e.layout }

// Config returns the transition policy.
func (e *Engine) Config() TransitionConfig { return e.cfg }

// Negative reports whether the last value was below zero.
func (e *Engine) Negative() bool { return e.negative }

// Slots returns a copy of the slots.
func (e *Engine) Slots() []Slot {
	return append([]Slot(nil), e.slots...)
}

// Update feeds the value shown at now. Every slot whose digit changed starts
// a transition at now + Delay + order*Stagger. It returns the number of slots
// that changed.
func (e *Engine) Update(v float64, now time.Time) int {
	if e.layout.Overflows(v) {
		countup.Logger().Debug("digits: value clamped to layout", "value", v, "slots", e.layout.IntDigits)
	}
	ds, neg := e.layout.Digits(v)
	e.negative = neg

	changed := 0
	for i, d := range ds {
		s := &e.slots[i]
		if d == s.Current {
			continue
		}
		s.Previous = e.rendered(s, now)
		s.Current = d
		s.StartAt = now.Add(e.cfg.Delay + time.Duration(e.order(i))*e.cfg.Stagger)
		s.State = Waiting
		changed++
	}
	return changed
}

// order is the stagger position of slot i.
func (e *Engine) order(i int) int {
	if e.cfg.Direction == RightToLeft {
		return len(e.slots) - 1 - i
	}
	return i
}

// rendered returns the glyph slot s shows at now.
func (e *Engine) rendered(s *Slot, now time.Time) rune {
	if s.State == Idle {
		return s.Current
	}
	p, started := e.progress(s, now)
	if !started || p < 0.5 {
		return s.Previous
	}
	return s.Current
}

// progress returns the eased progress of s at now and whether the stagger
// delay has elapsed.
func (e *Engine) progress(s *Slot, now time.Time) (float64, bool) {
	elapsed := now.Sub(s.StartAt)
	if elapsed < 0 {
		return 0, false
	}
	if e.cfg.Duration <= 0 || elapsed >= e.cfg.Duration {
		return 1, true
	}
	return e.cfg.Easing.Apply(float64(elapsed) / float64(e.cfg.Duration)), true
}

// Frame advances slot states to now and returns one SlotFrame per slot.
// Transitions that reach progress 1 finish and their slots become idle.
func (e *Engine) Frame(now time.Time) []SlotFrame {
	frames := make([]SlotFrame, len(e.slots))
	for i := range e.slots {
		s := &e.slots[i]
		f := SlotFrame{Index: i, Previous: s.Previous, Current: s.Current}
		switch s.State {
		case Idle:
			f.Progress = 1
		default:
			p, started := e.progress(s, now)
			switch {
			case !started:
				s.State = Waiting
			case p >= 1:
				s.State = Idle
				s.Previous = s.Current
				f.Previous = s.Current
			default:
				s.State = Running
			}
			f.Progress = p
		}
		f.State = s.State
		if f.State == Idle {
			f.Layers = []Layer{plain(s.Current)}
		} else {
			f.Layers = Blend(e.cfg.Kind, f.Previous, f.Current, f.Progress)
		}
		frames[i] = f
	}
	return frames
}

// Busy reports whether any slot is still transitioning.
func (e *Engine) Busy() bool {
	for _, s := range e.slots {
		if s.State != Idle {
			return true
		}
	}
	return false
}
