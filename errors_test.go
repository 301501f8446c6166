// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package countup

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestInvalidPresetIsConfigurationError(t *testing.T) {
	var err error = &InvalidPresetError{Preset: "cinema"}

	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("errors.As(%v, *ConfigurationError) = false, want true", err)
	}
	if cfg.Field != "preset" {
		t.Errorf("Field = %q, want preset", cfg.Field)
	}
	if !strings.Contains(err.Error(), "cinema") {
		t.Errorf("Error() = %q, want preset name", err.Error())
	}
}

func TestCaptureErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &CaptureError{Seq: 7, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("CaptureError should unwrap to its cause")
	}
}

func TestEntitlementErrorMessage(t *testing.T) {
	if got := (&EntitlementError{}).Error(); !strings.Contains(got, "no export credits") {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("ledger closed")
	if !errors.Is(&EntitlementError{Err: cause}, cause) {
		t.Error("EntitlementError should unwrap to its cause")
	}
}

func TestManualClock(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewManualClock(start)
	c.Advance(250 * time.Millisecond)
	c.Advance(-time.Second)
	if got := c.Now().Sub(start); got != 250*time.Millisecond {
		t.Errorf("elapsed = %v, want 250ms", got)
	}
}
