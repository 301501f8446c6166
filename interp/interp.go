// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package interp maps elapsed animation time to the displayed counter value.
package interp

import (
	"math"
	"time"

	"github.com/gogpu/countup"
)

// CounterSpec describes one counter animation run. It is immutable once an
// Interpolator has been built from it.
type CounterSpec struct {
	Start    float64
	End      float64
	Duration time.Duration
	Easing   Easing
}

// Interpolator evaluates a validated CounterSpec.
type Interpolator struct {
	spec CounterSpec
}

// New validates spec and returns an Interpolator for it.
// A zero or negative duration is a *countup.ConfigurationError.
func New(spec CounterSpec) (*Interpolator, error) {
	if spec.Duration <= 0 {
		return nil, &countup.ConfigurationError{Field: "duration", Reason: "must be greater than zero"}
	}
	if math.IsNaN(spec.Start) || math.IsInf(spec.Start, 0) {
		return nil, &countup.ConfigurationError{Field: "start", Reason: "must be a finite number"}
	}
	if math.IsNaN(spec.End) || math.IsInf(spec.End, 0) {
		return nil, &countup.ConfigurationError{Field: "end", Reason: "must be a finite number"}
	}
	if int(spec.Easing) >= len(easingNames) {
		return nil, &countup.ConfigurationError{Field: "easing", Reason: "unknown easing"}
	}
	return &Interpolator{spec: spec}, nil
}

// Spec returns the counter spec.
func (in *Interpolator) Spec() CounterSpec { return in.spec }

// Progress returns the eased progress for elapsed, clamped to [0,1].
func (in *Interpolator) Progress(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= in.spec.Duration {
		return 1
	}
	return in.spec.Easing.Apply(float64(elapsed) / float64(in.spec.Duration))
}

// At returns the value displayed after elapsed. Elapsed is clamped to
// [0, Duration]; past the end the value holds at End.
func (in *Interpolator) At(elapsed time.Duration) float64 {
	p := in.Progress(elapsed)
	switch p {
	case 0:
		return in.spec.Start
	case 1:
		return in.spec.End
	}
	return in.spec.Start + (in.spec.End-in.spec.Start)*p
}

// Done reports whether elapsed has reached the end of the animation.
func (in *Interpolator) Done(elapsed time.Duration) bool {
	return elapsed >= in.spec.Duration
}

// Round rounds v to the given number of decimals, half away from zero.
func Round(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
