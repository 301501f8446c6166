// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/countup/digits"
)

// Format controls the characters around and between digit slots.
type Format struct {
	Prefix string
	Suffix string
	// Grouping inserts the locale's thousands separator.
	Grouping bool
	// Locale supplies the grouping and decimal symbols. The zero tag is
	// English.
	Locale language.Tag
}

// Token is either a static string or a reference to a digit slot.
type Token struct {
	Static string
	Slot   int
}

// IsSlot reports whether the token is a digit slot.
func (t Token) IsSlot() bool { return t.Static == "" }

// Symbols returns the grouping and decimal separators for the locale.
func (f Format) Symbols() (group, decimal string) {
	tag := f.Locale
	if tag == language.Und {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	group = between(p.Sprintf("%d", 1000), "1", "000")
	decimal = between(p.Sprintf("%.1f", 1.5), "1", "5")
	if decimal == "" {
		decimal = "."
	}
	return group, decimal
}

// between returns the text of s between prefix and suffix.
func between(s, prefix, suffix string) string {
	s = strings.TrimPrefix(s, prefix)
	return strings.TrimSuffix(s, suffix)
}

// Tokens lays out prefix, sign, slots, separators and suffix for a layout.
// Adjacent static characters are merged.
func (f Format) Tokens(l digits.Layout, negative bool) []Token {
	group, decimal := f.Symbols()
	var out []Token
	static := func(s string) {
		if s == "" {
			return
		}
		if n := len(out); n > 0 && !out[n-1].IsSlot() {
			out[n-1].Static += s
			return
		}
		out = append(out, Token{Static: s})
	}

	static(f.Prefix)
	if negative {
		static("-")
	}
	for i := 0; i < l.IntDigits; i++ {
		if f.Grouping && i > 0 && (l.IntDigits-i)%3 == 0 {
			static(group)
		}
		out = append(out, Token{Slot: i})
	}
	if l.FracDigits > 0 {
		static(decimal)
		for i := 0; i < l.FracDigits; i++ {
			out = append(out, Token{Slot: l.IntDigits + i})
		}
	}
	static(f.Suffix)
	return out
}

// String formats v as it would be painted once every slot is idle.
func (f Format) String(l digits.Layout, v float64) string {
	ds, neg := l.Digits(v)
	var b strings.Builder
	for _, t := range f.Tokens(l, neg) {
		if t.IsSlot() {
			b.WriteRune(ds[t.Slot])
			continue
		}
		b.WriteString(t.Static)
	}
	return b.String()
}
