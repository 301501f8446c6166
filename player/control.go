// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package player

import (
	"github.com/gogpu/countup"
	"github.com/gogpu/countup/capture"
)

func (p *Player) pipeline() (*capture.Pipeline, error) {
	if p.cfg.Pipeline == nil {
		return nil, &countup.ConfigurationError{Field: "pipeline", Reason: "player has no capture pipeline"}
	}
	return p.cfg.Pipeline, nil
}

// StartRecording begins a capture session. The session is marked
// transparent when the scene background is.
func (p *Player) StartRecording() error {
	c, err := p.pipeline()
	if err != nil {
		return err
	}
	return c.Start(p.cfg.Scene.Background.Transparent())
}

// PauseRecording pauses the capture session.
func (p *Player) PauseRecording() error {
	c, err := p.pipeline()
	if err != nil {
		return err
	}
	return c.Pause()
}

// ResumeRecording resumes a paused capture session.
func (p *Player) ResumeRecording() error {
	c, err := p.pipeline()
	if err != nil {
		return err
	}
	return c.Resume()
}

// StopRecording finalizes the capture session.
func (p *Player) StopRecording() error {
	c, err := p.pipeline()
	if err != nil {
		return err
	}
	return c.Stop()
}

// CancelRecording discards the capture session.
func (p *Player) CancelRecording() error {
	c, err := p.pipeline()
	if err != nil {
		return err
	}
	return c.Cancel()
}

// RecordingState returns the pipeline state, or idle without a pipeline.
func (p *Player) RecordingState() capture.State {
	if p.cfg.Pipeline == nil {
		return capture.Idle
	}
	return p.cfg.Pipeline.State()
}
