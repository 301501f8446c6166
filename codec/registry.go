// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package codec

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new encoder instance.
type Factory func() Encoder

var (
	registryMu sync.RWMutex
	encoders   = make(map[string]Factory)
)

// Register makes an encoder available by name. It is typically called
// from init(). Register panics if factory is nil or name is already
// registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("codec: Register factory is nil")
	}
	if _, dup := encoders[name]; dup {
		panic("codec: Register called twice for " + name)
	}
	encoders[name] = factory
}

// Unregister removes an encoder. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(encoders, name)
}

// NewEncoder returns a fresh encoder registered under name.
func NewEncoder(name string) (Encoder, error) {
	registryMu.RLock()
	factory, ok := encoders[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("codec: unknown encoder %q (forgotten import?)", name)
	}
	return factory(), nil
}

// MustEncoder is like NewEncoder but panics on an unknown name.
func MustEncoder(name string) Encoder {
	e, err := NewEncoder(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Encoders returns the registered names in sorted order.
func Encoders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name has a registered encoder.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := encoders[name]
	return ok
}
