// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interp

import (
	"math"
	"strings"

	"github.com/gogpu/countup"
)

// Easing maps normalized time in [0,1] to normalized progress in [0,1].
// Every easing is pure and total: inputs are clamped and outputs never
// leave [0,1].
type Easing uint8

const (
	Linear Easing = iota
	EaseInQuad
	EaseOutQuad
	EaseInOutQuad
	EaseInCubic
	EaseOutCubic
	EaseInOutCubic
	EaseOutQuart
	EaseOutExpo
	EaseOutBack
	EaseOutBounce
)

var easingNames = [...]string{
	Linear:         "linear",
	EaseInQuad:     "easeInQuad",
	EaseOutQuad:    "easeOutQuad",
	EaseInOutQuad:  "easeInOutQuad",
	EaseInCubic:    "easeInCubic",
	EaseOutCubic:   "easeOutCubic",
	EaseInOutCubic: "easeInOutCubic",
	EaseOutQuart:   "easeOutQuart",
	EaseOutExpo:    "easeOutExpo",
	EaseOutBack:    "easeOutBack",
	EaseOutBounce:  "easeOutBounce",
}

// String returns the configuration name of the easing.
func (e Easing) String() string {
	if int(e) < len(easingNames) {
		return easingNames[e]
	}
	return "unknown"
}

// Easings returns all easing names in declaration order.
func Easings() []string {
	return append([]string(nil), easingNames[:]...)
}

// ParseEasing resolves a configuration name (case-insensitive, "-" and "_"
// ignored). An empty name selects Linear.
func ParseEasing(name string) (Easing, error) {
	if name == "" {
		return Linear, nil
	}
	key := normalize(name)
	for i, n := range easingNames {
		if normalize(n) == key {
			return Easing(i), nil
		}
	}
	return Linear, &countup.ConfigurationError{Field: "easing", Reason: "unknown easing " + name}
}

func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// Apply evaluates the easing at t.
func (e Easing) Apply(t float64) float64 {
	t = clamp01(t)
	var v float64
	switch e {
	case EaseInQuad:
		v = t * t
	case EaseOutQuad:
		v = t * (2 - t)
	case EaseInOutQuad:
		if t < 0.5 {
			v = 2 * t * t
		} else {
			v = -1 + (4-2*t)*t
		}
	case EaseInCubic:
		v = t * t * t
	case EaseOutCubic:
		u := t - 1
		v = u*u*u + 1
	case EaseInOutCubic:
		if t < 0.5 {
			v = 4 * t * t * t
		} else {
			u := 2*t - 2
			v = 0.5*u*u*u + 1
		}
	case EaseOutQuart:
		u := t - 1
		v = 1 - u*u*u*u
	case EaseOutExpo:
		if t == 1 {
			v = 1
		} else {
			v = 1 - math.Pow(2, -10*t)
		}
	case EaseOutBack:
		const c1 = 1.70158
		const c3 = c1 + 1
		u := t - 1
		v = 1 + c3*u*u*u + c1*u*u
	case EaseOutBounce:
		v = bounce(t)
	default:
		v = t
	}
	// Endpoints are exact so interpolation hits start and end values.
	switch t {
	case 0:
		return 0
	case 1:
		return 1
	}
	return clamp01(v)
}

func bounce(t float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
