// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface defines the raster target a counter is painted onto.
//
// Surface is a capability interface: rectangle and text fills with solid or
// gradient paint, image compositing for glyph tiles, and a snapshot for
// capture. Drawing code in package design only talks to this interface, so
// the concrete backend can change without touching effect logic.
//
// # Surface Types
//
//   - Image: CPU rendering through gg.Context, with or without alpha
//
// The host owns a surface; countup never creates or destroys the one it is
// handed by a caller.
//
// Surfaces are NOT thread-safe. The tick scheduler draws and snapshots from
// one goroutine.
package surface
