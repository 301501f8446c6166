// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package countup

import "fmt"

// ConfigurationError reports an invalid counter spec, transition config,
// preset or settings value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "countup: invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("countup: invalid configuration %s: %s", e.Field, e.Reason)
}

// InvalidPresetError is returned for an unknown export quality preset.
// It unwraps to a *ConfigurationError.
type InvalidPresetError struct {
	Preset string
}

func (e *InvalidPresetError) Error() string {
	return fmt.Sprintf("countup: unknown quality preset %q", e.Preset)
}

// Unwrap lets errors.As match the preset error as a configuration error.
func (e *InvalidPresetError) Unwrap() error {
	return &ConfigurationError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", e.Preset)}
}

// StateTransitionError reports a control command that is not valid in the
// current recording state. The state is left unchanged.
type StateTransitionError struct {
	Command string
	From    string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("countup: cannot %s while %s", e.Command, e.From)
}

// CaptureError reports a failure to sample or encode a single frame.
// A capture error on one frame is recorded as a frame drop.
type CaptureError struct {
	Seq int64
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("countup: capture of frame %d failed: %v", e.Seq, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// AlphaUnsupportedError is returned before encoding starts when a
// transparent export cannot keep its alpha channel.
type AlphaUnsupportedError struct {
	Reason string
}

func (e *AlphaUnsupportedError) Error() string {
	return "countup: alpha channel unsupported: " + e.Reason
}

// EntitlementError is returned when an export is requested without credits.
type EntitlementError struct {
	Err error
}

func (e *EntitlementError) Error() string {
	if e.Err == nil {
		return "countup: no export credits available"
	}
	return "countup: entitlement check failed: " + e.Err.Error()
}

func (e *EntitlementError) Unwrap() error { return e.Err }

// EmptySessionError is returned when exporting a session with zero chunks.
type EmptySessionError struct {
	SessionID string
}

func (e *EmptySessionError) Error() string {
	return fmt.Sprintf("countup: recording session %s has no frames", e.SessionID)
}
