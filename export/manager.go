// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package export turns a stopped recording session into a media artifact.
//
// A Manager validates a request and creates a Job. Every check that can
// reject the request runs in NewJob, before any frame is encoded and
// before the capture pipeline leaves the stopped state:
//
//  1. preset and format
//  2. session stopped and not empty
//  3. alpha support for transparent output
//  4. entitlement (HasCredits, then ConsumeCredit)
//
// The Job then runs as a cancellable task that only reads the session.
package export

import (
	"context"
	"fmt"
	"image/color"

	"github.com/gogpu/countup"
	"github.com/gogpu/countup/capture"
	"github.com/gogpu/countup/codec"
)

// Entitlement gates exports. It is consulted once per job.
type Entitlement interface {
	HasCredits(ctx context.Context) (bool, error)
	ConsumeCredit(ctx context.Context) error
}

// Unlimited is an Entitlement that always grants.
type Unlimited struct{}

func (Unlimited) HasCredits(context.Context) (bool, error) { return true, nil }
func (Unlimited) ConsumeCredit(context.Context) error      { return nil }

// Source is the recording side of an export. *capture.Pipeline
// implements it.
type Source interface {
	State() capture.State
	Session() *capture.Session
	BeginExport() (*capture.Session, error)
	EndExport(s *capture.Session) error
	AbortExport(s *capture.Session) error
}

// Request selects what to produce.
type Request struct {
	// Preset names a quality preset. Empty means DefaultPreset.
	Preset string
	Format Format
	// Codec names a registered encoder for Video and Overlay. Empty picks
	// apng for transparent output and mjpeg otherwise. GIF always uses
	// the gif encoder.
	Codec string
	// Matte is the color transparent frames are flattened onto. Nil means
	// black.
	Matte color.Color
	// Loop is the repeat count for looping formats. Zero loops forever.
	Loop int
}

// Manager creates export jobs.
type Manager struct {
	entitlement Entitlement
}

// NewManager returns a manager that checks ent before every job. A nil
// ent grants every request.
func NewManager(ent Entitlement) *Manager {
	if ent == nil {
		ent = Unlimited{}
	}
	return &Manager{entitlement: ent}
}

// NewJob validates req against the stopped session in src and returns a
// job ready to run. On success src has moved to the exporting state and
// one credit has been consumed. On failure src is back in the stopped
// state and no credit has been consumed.
func (m *Manager) NewJob(ctx context.Context, src Source, req Request) (*Job, error) {
	q, err := LookupPreset(req.Preset)
	if err != nil {
		return nil, err
	}
	codecName := req.Codec
	if req.Format == GIF {
		codecName = "gif"
	}

	if st := src.State(); st != capture.Stopped {
		return nil, &countup.StateTransitionError{Command: "export", From: st.String()}
	}

	// BeginExport waits for the capture worker, so the session is only
	// read once it is complete. Every failure after it hands the session
	// back.
	sess, err := src.BeginExport()
	if err != nil {
		return nil, err
	}
	abort := func(err error) (*Job, error) {
		_ = src.AbortExport(sess)
		return nil, err
	}

	if codecName == "" {
		codecName = "mjpeg"
		if sess.Transparent || req.Format == Overlay {
			codecName = "apng"
		}
	}
	enc, err := codec.NewEncoder(codecName)
	if err != nil {
		return abort(&countup.ConfigurationError{Field: "codec", Reason: err.Error()})
	}

	alpha, flattened, err := alphaMode(req.Format, sess, enc, codecName)
	if err != nil {
		return abort(err)
	}
	if g, ok := enc.(*codec.GIF); ok {
		g.Transparent = alpha
	}

	if err := m.entitle(ctx); err != nil {
		return abort(err)
	}

	j := newJob(src, sess, req, q, enc, codecName)
	j.alpha, j.flattened = alpha, flattened
	countup.Logger().Info("export: job created",
		"id", j.ID, "session", sess.ID, "preset", q.Name, "format", req.Format.String(),
		"codec", codecName, "alpha", alpha, "flattened", flattened)
	return j, nil
}

// alphaMode decides whether output keeps alpha and whether transparent
// frames are flattened, failing when a transparent result cannot be
// guaranteed.
func alphaMode(f Format, s *capture.Session, enc codec.Encoder, name string) (alpha, flattened bool, err error) {
	switch f {
	case Overlay:
		if !s.AlphaCapable {
			return false, false, &countup.AlphaUnsupportedError{Reason: "capture surface has no alpha channel"}
		}
		if !enc.SupportsAlpha() {
			return false, false, &countup.AlphaUnsupportedError{Reason: fmt.Sprintf("codec %s is opaque", name)}
		}
		return true, false, nil
	case Video:
		if !s.Transparent {
			return false, false, nil
		}
		if !s.AlphaCapable {
			return false, false, &countup.AlphaUnsupportedError{Reason: "transparent background captured from a surface without alpha"}
		}
		if !enc.SupportsAlpha() {
			return false, true, nil
		}
		return true, false, nil
	default:
		if !s.Transparent {
			return false, false, nil
		}
		if !s.AlphaCapable {
			return false, true, nil
		}
		return true, false, nil
	}
}

func (m *Manager) entitle(ctx context.Context) error {
	ok, err := m.entitlement.HasCredits(ctx)
	if err != nil {
		return &countup.EntitlementError{Err: err}
	}
	if !ok {
		return &countup.EntitlementError{}
	}
	if err := m.entitlement.ConsumeCredit(ctx); err != nil {
		return &countup.EntitlementError{Err: err}
	}
	return nil
}

// Export creates a job and runs it to completion.
func (m *Manager) Export(ctx context.Context, src Source, req Request) (*Artifact, error) {
	j, err := m.NewJob(ctx, src, req)
	if err != nil {
		return nil, err
	}
	return j.Run(ctx)
}
