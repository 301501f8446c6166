// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads countup settings from TOML or YAML files.
//
// Defaults are filled in before decoding, so a file only needs the keys it
// changes. Unknown keys are ignored. Conversion to domain types happens in
// the conversion methods on File, which validate and return
// *countup.ConfigurationError.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/countup"
)

// File is the whole settings file.
type File struct {
	Counter    CounterConfig    `toml:"counter" yaml:"counter"`
	Transition TransitionConfig `toml:"transition" yaml:"transition"`
	Design     DesignConfig     `toml:"design" yaml:"design"`
	Background BackgroundConfig `toml:"background" yaml:"background"`
	Caption    CaptionConfig    `toml:"caption" yaml:"caption"`
	Format     FormatConfig     `toml:"format" yaml:"format"`
	Canvas     CanvasConfig     `toml:"canvas" yaml:"canvas"`
	Recording  RecordingConfig  `toml:"recording" yaml:"recording"`
	Export     ExportConfig     `toml:"export" yaml:"export"`
}

// CounterConfig maps the counter section.
type CounterConfig struct {
	Start    float64  `toml:"start" yaml:"start"`
	End      float64  `toml:"end" yaml:"end"`
	Duration Duration `toml:"duration" yaml:"duration"`
	Easing   string   `toml:"easing" yaml:"easing"`
	Decimals int      `toml:"decimals" yaml:"decimals"`
}

// TransitionConfig maps the per-digit transition section.
type TransitionConfig struct {
	Type      string   `toml:"type" yaml:"type"`
	Duration  Duration `toml:"duration" yaml:"duration"`
	Easing    string   `toml:"easing" yaml:"easing"`
	Delay     Duration `toml:"delay" yaml:"delay"`
	Stagger   Duration `toml:"stagger" yaml:"stagger"`
	Direction string   `toml:"direction" yaml:"direction"`
}

// DesignConfig maps the effect section.
type DesignConfig struct {
	Effect     string   `toml:"effect" yaml:"effect"`
	FontFamily string   `toml:"font-family" yaml:"font-family"`
	FontSize   float64  `toml:"font-size" yaml:"font-size"`
	TextColor  string   `toml:"text-color" yaml:"text-color"`
	GlowColor  string   `toml:"glow-color" yaml:"glow-color"`
	GlowRadius float64  `toml:"glow-radius" yaml:"glow-radius"`
	GlowAmount float64  `toml:"glow-intensity" yaml:"glow-intensity"`
	NeonColor  string   `toml:"neon-color" yaml:"neon-color"`
	Stops      []string `toml:"gradient" yaml:"gradient"`
	Outline    string   `toml:"outline-color" yaml:"outline-color"`
	OutlineW   float64  `toml:"outline-width" yaml:"outline-width"`
	Shadow     string   `toml:"shadow-color" yaml:"shadow-color"`
	ShadowX    float64  `toml:"shadow-x" yaml:"shadow-x"`
	ShadowY    float64  `toml:"shadow-y" yaml:"shadow-y"`
	Fidelity   string   `toml:"fidelity" yaml:"fidelity"`
}

// BackgroundConfig maps the background section.
type BackgroundConfig struct {
	Mode       string   `toml:"mode" yaml:"mode"`
	Color      string   `toml:"color" yaml:"color"`
	Custom     string   `toml:"custom" yaml:"custom"`
	Stops      []string `toml:"gradient" yaml:"gradient"`
	Horizontal bool     `toml:"horizontal" yaml:"horizontal"`
}

// CaptionConfig maps the caption section.
type CaptionConfig struct {
	Enabled    bool    `toml:"enabled" yaml:"enabled"`
	Text       string  `toml:"text" yaml:"text"`
	Position   string  `toml:"position" yaml:"position"`
	OffsetX    float64 `toml:"offset-x" yaml:"offset-x"`
	OffsetY    float64 `toml:"offset-y" yaml:"offset-y"`
	Opacity    float64 `toml:"opacity" yaml:"opacity"`
	FontFamily string  `toml:"font-family" yaml:"font-family"`
	FontSize   float64 `toml:"font-size" yaml:"font-size"`
	Color      string  `toml:"color" yaml:"color"`
}

// FormatConfig maps the number format section.
type FormatConfig struct {
	Prefix   string `toml:"prefix" yaml:"prefix"`
	Suffix   string `toml:"suffix" yaml:"suffix"`
	Grouping bool   `toml:"grouping" yaml:"grouping"`
	Locale   string `toml:"locale" yaml:"locale"`
}

// CanvasConfig maps the render target section.
type CanvasConfig struct {
	Width  int  `toml:"width" yaml:"width"`
	Height int  `toml:"height" yaml:"height"`
	Alpha  bool `toml:"alpha" yaml:"alpha"`
}

// RecordingConfig maps the capture section.
type RecordingConfig struct {
	FPS         float64 `toml:"fps" yaml:"fps"`
	MinFPS      float64 `toml:"min-fps" yaml:"min-fps"`
	ChunkFrames int     `toml:"chunk-frames" yaml:"chunk-frames"`
	QueueSize   int     `toml:"queue-size" yaml:"queue-size"`
	MaxFrames   int     `toml:"max-frames" yaml:"max-frames"`
	// MaxMemory is a human size such as "256MiB". Empty means no limit.
	MaxMemory string `toml:"max-memory" yaml:"max-memory"`
}

// ExportConfig maps the export section.
type ExportConfig struct {
	Preset string `toml:"preset" yaml:"preset"`
	Format string `toml:"format" yaml:"format"`
	Codec  string `toml:"codec" yaml:"codec"`
	Matte  string `toml:"matte" yaml:"matte"`
	Loop   int    `toml:"loop" yaml:"loop"`
}

// Default returns the settings used for keys a file leaves out.
func Default() File {
	return File{
		Counter: CounterConfig{
			End:      1000,
			Duration: Duration(2 * time.Second),
			Easing:   "ease-out-cubic",
		},
		Transition: TransitionConfig{
			Type:     "roll",
			Duration: Duration(300 * time.Millisecond),
			Easing:   "ease-out-cubic",
		},
		Design: DesignConfig{
			Effect:     "classic",
			FontFamily: "bold",
			FontSize:   96,
			TextColor:  "#ffffff",
			GlowColor:  "#00e5ff",
			GlowRadius: 8,
			GlowAmount: 0.8,
			NeonColor:  "#ff2bd6",
			Stops:      []string{"#ffd36e", "#ff5e62"},
			Outline:    "#000000",
			OutlineW:   3,
			Shadow:     "#00000099",
			ShadowX:    4,
			ShadowY:    4,
			Fidelity:   "full",
		},
		Background: BackgroundConfig{Mode: "solid", Color: "#0b0f19"},
		Caption:    CaptionConfig{Position: "bottom", Opacity: 1, FontFamily: "regular", FontSize: 24, Color: "#ffffffcc"},
		Canvas:     CanvasConfig{Width: 640, Height: 240, Alpha: true},
		Recording:  RecordingConfig{FPS: 30, MinFPS: 10, ChunkFrames: 30, QueueSize: 8},
		Export:     ExportConfig{Preset: "standard", Format: "video", Matte: "#000000"},
	}
}

// Load reads path, choosing the decoder by extension (.toml, .yaml,
// .yml). A missing file yields the defaults.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, fmt.Errorf("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	case ".toml", "":
		return DecodeTOML(data)
	default:
		return File{}, &countup.ConfigurationError{Field: "config", Reason: "unsupported file type " + ext}
	}
}

// DecodeTOML decodes TOML settings over the defaults.
func DecodeTOML(data []byte) (File, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return File{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		countup.Logger().Debug("config: ignoring unknown keys", "keys", fmt.Sprint(keys))
	}
	return cfg, nil
}

// DecodeYAML decodes YAML settings over the defaults.
func DecodeYAML(data []byte) (File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return File{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return &countup.ConfigurationError{Field: "duration", Reason: err.Error()}
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}
