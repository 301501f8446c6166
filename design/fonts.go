// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package design

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/countup"
)

var fontData = map[string][]byte{
	"regular":  goregular.TTF,
	"bold":     gobold.TTF,
	"mono":     gomono.TTF,
	"monobold": gomonobold.TTF,
}

// Families lists the bundled font families.
func Families() []string {
	return []string{"regular", "bold", "mono", "monobold"}
}

type faceKey struct {
	family string
	size   float64
}

// fontBook lazily parses font sources and caches faces per size.
type fontBook struct {
	mu      sync.Mutex
	sources map[string]*text.FontSource
	faces   map[faceKey]text.Face
}

var fonts = &fontBook{
	sources: make(map[string]*text.FontSource),
	faces:   make(map[faceKey]text.Face),
}

// face returns the face for f. Unknown families fall back to bold.
func (b *fontBook) face(f Font) (text.Face, error) {
	family := f.Family
	if _, ok := fontData[family]; !ok {
		family = "bold"
	}
	size := f.Size
	if size <= 0 {
		size = DefaultSettings().Font.Size
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := faceKey{family, size}
	if face, ok := b.faces[key]; ok {
		return face, nil
	}
	src, ok := b.sources[family]
	if !ok {
		var err error
		src, err = text.NewFontSource(fontData[family])
		if err != nil {
			return nil, &countup.ConfigurationError{Field: "font", Reason: fmt.Sprintf("load %s: %v", family, err)}
		}
		b.sources[family] = src
	}
	face := src.Face(size)
	b.faces[key] = face
	return face, nil
}
