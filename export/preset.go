// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"fmt"
	"strings"

	"github.com/gogpu/countup"
)

// Quality is the concrete encoding target of a named preset.
type Quality struct {
	Name            string
	ResolutionScale float64
	FrameRate       float64
	Bitrate         int // bits per second
}

// Presets lists the quality presets from lowest to highest.
var Presets = []Quality{
	{"draft", 0.5, 15, 1_000_000},
	{"standard", 1.0, 30, 4_000_000},
	{"high", 1.0, 60, 8_000_000},
	{"ultra", 2.0, 60, 16_000_000},
}

// DefaultPreset is used when a request names none.
const DefaultPreset = "standard"

// LookupPreset returns the preset called name. Unknown names return a
// *countup.InvalidPresetError.
func LookupPreset(name string) (Quality, error) {
	if name == "" {
		name = DefaultPreset
	}
	key := strings.ToLower(strings.TrimSpace(name))
	for _, q := range Presets {
		if q.Name == key {
			return q, nil
		}
	}
	return Quality{}, &countup.InvalidPresetError{Preset: name}
}

// Size returns the output size for a source of w x h pixels.
func (q Quality) Size(w, h int) (int, int) {
	sw := max(1, int(float64(w)*q.ResolutionScale+0.5))
	sh := max(1, int(float64(h)*q.ResolutionScale+0.5))
	return sw, sh
}

func (q Quality) String() string {
	return fmt.Sprintf("%s (%.0f%%, %g fps, %d kbps)", q.Name, q.ResolutionScale*100, q.FrameRate, q.Bitrate/1000)
}

// Format is the kind of artifact an export produces.
type Format uint8

const (
	// Video is a single playable file. Alpha survives only when the
	// scene was transparent and the codec keeps alpha.
	Video Format = iota
	// GIF is a palette animation resampled to at most MaxGIFFPS.
	GIF
	// Overlay is a video that must keep alpha end to end.
	Overlay
)

// MaxGIFFPS caps the GIF frame rate.
const MaxGIFFPS = 20

var formatNames = [...]string{
	Video:   "video",
	GIF:     "gif",
	Overlay: "transparent-overlay",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// ParseFormat accepts video, gif, transparent-overlay and overlay.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "video":
		return Video, nil
	case "gif":
		return GIF, nil
	case "overlay", "transparent-overlay":
		return Overlay, nil
	}
	return 0, &countup.ConfigurationError{Field: "format", Reason: fmt.Sprintf("unknown export format %q", name)}
}
