// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"bytes"
	"image/color"
	"reflect"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/gogpu/countup/digits"
	"github.com/gogpu/countup/surface"
)

func TestParseEffect(t *testing.T) {
	tests := []struct {
		id   string
		want Effect
	}{
		{"glow", Glow},
		{"NEON", Neon},
		{" fire ", Fire},
		{"chrome", Chrome},
		{"holographic", Classic},
		{"", Classic},
	}
	for _, tt := range tests {
		if got := ParseEffect(tt.id); got != tt.want {
			t.Errorf("ParseEffect(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestOpsPureAndDefaulted(t *testing.T) {
	s := DefaultSettings()
	pos := surface.Pt(10, 80)
	for _, id := range Effects() {
		e := ParseEffect(id)
		a := Ops(e, "42", pos, s)
		b := Ops(e, "42", pos, s)
		if len(a) == 0 {
			t.Errorf("%s: no paint ops", id)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: Ops is not deterministic", id)
		}
		last := a[len(a)-1]
		if last.X != pos.X || last.Y != pos.Y {
			t.Errorf("%s: final op at (%v,%v), want the text position", id, last.X, last.Y)
		}
	}
	if ops := Ops(Effect(200), "7", pos, s); len(ops) != 1 || ops[0].Paint.IsGradient() {
		t.Errorf("unknown effect ops = %+v, want one classic fill", ops)
	}
}

func TestFidelityReducesGlowPasses(t *testing.T) {
	s := DefaultSettings()
	full := len(Ops(Glow, "1", surface.Pt(0, 0), s))
	s.Fidelity = FidelityReduced
	reduced := len(Ops(Glow, "1", surface.Pt(0, 0), s))
	s.Fidelity = FidelityMinimal
	minimal := len(Ops(Glow, "1", surface.Pt(0, 0), s))
	if !(full > reduced && reduced > minimal && minimal == 1) {
		t.Errorf("glow ops full/reduced/minimal = %d/%d/%d", full, reduced, minimal)
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		name   string
		f      Format
		layout digits.Layout
		v      float64
		want   string
	}{
		{"plain", Format{}, digits.Layout{IntDigits: 4}, 617, "0617"},
		{"grouped", Format{Prefix: "$", Grouping: true}, digits.Layout{IntDigits: 4, FracDigits: 2}, 1234.5, "$1,234.50"},
		{"german", Format{Grouping: true, Locale: language.German}, digits.Layout{IntDigits: 7, FracDigits: 1}, 1234567.25, "1.234.567,3"},
		{"negative suffix", Format{Suffix: "%"}, digits.Layout{IntDigits: 2}, -5, "-05%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.String(tt.layout, tt.v); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff000080")
	if err != nil {
		t.Fatal(err)
	}
	if n := c.(color.NRGBA); n.R != 255 || n.A != 0x80 {
		t.Errorf("ParseColor = %+v", n)
	}
	if _, err := ParseColor("#zzz"); err == nil {
		t.Error("ParseColor(#zzz) should fail")
	}
	if c, err := ParseColor(" "); c != nil || err != nil {
		t.Errorf("ParseColor(blank) = %v, %v; want nil, nil", c, err)
	}
	if c, _ := ParseColor("Transparent"); c != color.Transparent {
		t.Errorf("ParseColor(Transparent) = %v, want color.Transparent", c)
	}
}

func TestUnsetColorsUseDefaults(t *testing.T) {
	custom := Background{Mode: BackgroundCustom}
	img := surface.NewImage(4, 4)
	custom.Paint(img)
	if got := img.Snapshot().RGBAAt(1, 1); got != (color.RGBA{A: 0xff}) {
		t.Errorf("custom background without a color = %v, want opaque black", got)
	}
	if custom.Transparent() {
		t.Error("custom background reports transparent")
	}
	if got := (Settings{}).textColor(); got != color.White {
		t.Errorf("unset text color = %v, want white", got)
	}
}

func testFrame(t *testing.T, v float64) Frame {
	t.Helper()
	layout := digits.NewLayout(0, 1234, 0)
	e, err := digits.NewEngine(layout, digits.DefaultTransition())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(0, 0)
	e.Seed(0)
	e.Update(v, now)
	return Frame{Layout: layout, Slots: e.Frame(now.Add(120 * time.Millisecond)), Negative: e.Negative()}
}

func TestRenderIdempotent(t *testing.T) {
	f := testFrame(t, 617)
	for _, id := range Effects() {
		sc := DefaultScene()
		sc.Design.Effect = ParseEffect(id)
		sc.Design.Font.Size = 40
		sc.Background = Background{
			Mode:  BackgroundGradient,
			Stops: []ColorStop{{0, MustColor("#112233")}, {1, MustColor("#445566")}},
		}
		sc.Caption = Caption{Enabled: true, Text: "visitors", Opacity: 0.8}

		a, b := surface.NewImage(240, 120), surface.NewImage(240, 120)
		if err := NewRenderer(0).Render(a, f, sc); err != nil {
			t.Fatalf("%s: Render() error = %v", id, err)
		}
		if err := NewRenderer(0).Render(b, f, sc); err != nil {
			t.Fatalf("%s: Render() error = %v", id, err)
		}
		if !bytes.Equal(a.Snapshot().Pix, b.Snapshot().Pix) {
			t.Errorf("%s: identical input rendered different pixels", id)
		}
	}
}

func TestRenderTransparentBackground(t *testing.T) {
	sc := DefaultScene()
	sc.Background = Background{Mode: BackgroundTransparent}
	sc.Design.Font.Size = 32
	s := surface.NewImage(200, 100)
	s.Clear(color.White)
	if err := NewRenderer(8).Render(s, testFrame(t, 42), sc); err != nil {
		t.Fatal(err)
	}
	img := s.Snapshot()
	if a := img.RGBAAt(1, 1).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	var opaque int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			opaque++
		}
	}
	if opaque == 0 {
		t.Error("counter painted no pixels")
	}
}

func TestRenderCaptionChangesPixels(t *testing.T) {
	f := testFrame(t, 7)
	sc := DefaultScene()
	sc.Design.Font.Size = 32
	plain := surface.NewImage(200, 140)
	_ = NewRenderer(0).Render(plain, f, sc)

	sc.Caption = Caption{Enabled: true, Text: "followers", Position: CaptionTop}
	captioned := surface.NewImage(200, 140)
	_ = NewRenderer(0).Render(captioned, f, sc)

	if bytes.Equal(plain.Snapshot().Pix, captioned.Snapshot().Pix) {
		t.Error("caption did not change the frame")
	}
}

func TestRenderRejectsSlotMismatch(t *testing.T) {
	f := testFrame(t, 1)
	f.Slots = f.Slots[:1]
	if err := NewRenderer(0).Render(surface.NewImage(10, 10), f, DefaultScene()); err == nil {
		t.Error("Render() with missing slots should fail")
	}
}
