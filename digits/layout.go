// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package digits

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/countup/interp"
)

// MinIntDigits is the smallest number of integer slots a layout carries.
const MinIntDigits = 2

// MaxFracDigits bounds the precision of float mode.
const MaxFracDigits = 6

// Layout fixes the slot geometry of one counter run: IntDigits slots left of
// the decimal point and FracDigits slots right of it.
type Layout struct {
	IntDigits  int
	FracDigits int
}

// NewLayout derives the layout for a run from start to end with the given
// number of decimals. The integer width is the larger digit count of |start|
// and |end| after rounding, never less than MinIntDigits.
func NewLayout(start, end float64, decimals int) Layout {
	decimals = min(max(decimals, 0), MaxFracDigits)
	n := max(intDigitCount(start, decimals), intDigitCount(end, decimals), MinIntDigits)
	return Layout{IntDigits: n, FracDigits: decimals}
}

// Slots returns the total number of digit slots.
func (l Layout) Slots() int { return l.IntDigits + l.FracDigits }

// Digits renders v as zero-padded slot digits. Values that do not fit the
// integer width clamp to all nines so existing slots never shift.
func (l Layout) Digits(v float64) (ds []rune, negative bool) {
	r := interp.Round(v, l.FracDigits)
	negative = r < 0
	intPart, fracPart := splitFixed(math.Abs(r), l.FracDigits)

	if len(intPart) > l.IntDigits {
		intPart = strings.Repeat("9", l.IntDigits)
		fracPart = strings.Repeat("9", l.FracDigits)
	}
	ds = make([]rune, 0, l.Slots())
	for i := len(intPart); i < l.IntDigits; i++ {
		ds = append(ds, '0')
	}
	ds = append(ds, []rune(intPart)...)
	ds = append(ds, []rune(fracPart)...)
	return ds, negative
}

// Overflows reports whether v needs more integer digits than the layout has.
func (l Layout) Overflows(v float64) bool {
	return intDigitCount(v, l.FracDigits) > l.IntDigits
}

func intDigitCount(v float64, decimals int) int {
	intPart, _ := splitFixed(math.Abs(interp.Round(v, decimals)), decimals)
	return len(intPart)
}

func splitFixed(abs float64, decimals int) (intPart, fracPart string) {
	s := strconv.FormatFloat(abs, 'f', decimals, 64)
	intPart, fracPart, _ = strings.Cut(s, ".")
	return intPart, fracPart
}
