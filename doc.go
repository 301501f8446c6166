// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package countup renders animated numeric counters and captures them into
// exportable media.
//
// # Overview
//
// A counter animation is assembled from small packages that run inside one
// display-synchronized tick:
//
//   - interp: maps elapsed time to the displayed value (CounterSpec + easing)
//   - digits: fixed-width digit slots, each with its own transition
//   - design: paints digits, effects, background and caption onto a surface
//   - surface: the raster target capability, backed by gg.Context
//   - capture: samples the surface into an append-only recording session
//   - export: turns a stopped session into APNG, Motion-JPEG or GIF
//   - perf: rolling frame statistics and advisory suggestions
//   - player: the tick scheduler that wires the above together
//
// # Quick Start
//
//	surf := surface.NewImage(640, 240)
//	p, err := player.New(player.Config{
//	    Counter: interp.CounterSpec{End: 1234, Duration: time.Second, Easing: interp.EaseOutCubic},
//	    Scene:   design.DefaultScene(),
//	    Surface: surf,
//	})
//	if err != nil {
//	    return err
//	}
//	info, err := p.Tick()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(info.Value)
//	img := surf.Snapshot()
//
// # Logging
//
// The packages are silent by default. Call [SetLogger] to receive lifecycle
// and diagnostic records.
package countup
