// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

// State is the recording lifecycle state.
//
//	idle -> recording <-> paused -> stopped -> exporting -> idle
//
// cancel returns any non-idle state to idle.
type State uint8

const (
	Idle State = iota
	Recording
	Paused
	Stopped
	Exporting
)

var stateNames = [...]string{
	Idle:      "idle",
	Recording: "recording",
	Paused:    "paused",
	Stopped:   "stopped",
	Exporting: "exporting",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
