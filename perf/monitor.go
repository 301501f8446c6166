// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package perf keeps rolling frame statistics for the render loop.
//
// The Monitor only observes. Its suggestions are advisory records; applying
// one (lowering effect fidelity, capture fps or resolution) is always the
// caller's decision, so nothing here holds a reference to renderer state.
package perf

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Sample is one frame observation.
type Sample struct {
	At         time.Time
	FPS        float64
	RenderTime time.Duration
	MemoryUsed uint64
	FrameDrops int
}

// MemoryProbe reports the bytes currently in use.
type MemoryProbe func() uint64

// RuntimeMemory reads the Go heap size.
func RuntimeMemory() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// Options configures a Monitor. Zero fields take the defaults below.
type Options struct {
	// Window is the number of samples kept. Default 60.
	Window int
	// Threshold is the average fps under which optimization is advised.
	// Default 45.
	Threshold float64
	// Sustain is how many consecutive low samples trigger ShouldOptimize.
	// Default 30.
	Sustain int
	// RenderBudget is the per-frame render time above which a resolution
	// suggestion is made. Default one 60 Hz refresh.
	RenderBudget time.Duration
	// MemoryLimit triggers a memory suggestion. Default 512 MiB.
	MemoryLimit uint64
	// Memory is sampled on every Record. Nil disables memory tracking.
	Memory MemoryProbe
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = 60
	}
	if o.Threshold <= 0 {
		o.Threshold = 45
	}
	if o.Sustain <= 0 {
		o.Sustain = 30
	}
	if o.RenderBudget <= 0 {
		o.RenderBudget = time.Second / 60
	}
	if o.MemoryLimit == 0 {
		o.MemoryLimit = 512 << 20
	}
	return o
}

// Monitor maintains a fixed-size ring of samples. It is safe for
// concurrent use.
type Monitor struct {
	opts Options

	mu        sync.Mutex
	ring      []Sample
	head      int
	n         int
	last      time.Time
	drops     int
	lowStreak int
}

// NewMonitor creates a monitor.
func NewMonitor(opts Options) *Monitor {
	opts = opts.withDefaults()
	return &Monitor{opts: opts, ring: make([]Sample, opts.Window)}
}

// Record adds the frame that finished at now after rendering for
// renderTime. The first frame has no fps because it has no predecessor.
func (m *Monitor) Record(now time.Time, renderTime time.Duration) Sample {
	var mem uint64
	if m.opts.Memory != nil {
		mem = m.opts.Memory()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := Sample{At: now, RenderTime: renderTime, MemoryUsed: mem, FrameDrops: m.drops}
	if !m.last.IsZero() {
		if dt := now.Sub(m.last); dt > 0 {
			s.FPS = float64(time.Second) / float64(dt)
		}
	}
	m.last = now

	m.ring[m.head] = s
	m.head = (m.head + 1) % len(m.ring)
	if m.n < len(m.ring) {
		m.n++
	}

	if avg, ok := m.averageLocked(); ok && avg < m.opts.Threshold {
		m.lowStreak++
	} else {
		m.lowStreak = 0
	}
	return s
}

// RecordDrop counts n capture samples that were not recorded.
func (m *Monitor) RecordDrop(n int) {
	m.mu.Lock()
	m.drops += n
	m.mu.Unlock()
}

// FrameDrops returns the total number of dropped captures.
func (m *Monitor) FrameDrops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drops
}

// FPS returns the instantaneous fps of the latest sample.
func (m *Monitor) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.n == 0 {
		return 0
	}
	return m.ring[(m.head-1+len(m.ring))%len(m.ring)].FPS
}

// AverageFPS returns the mean fps over the window.
func (m *Monitor) AverageFPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	avg, _ := m.averageLocked()
	return avg
}

func (m *Monitor) averageLocked() (float64, bool) {
	var sum float64
	var count int
	for i := 0; i < m.n; i++ {
		if fps := m.ring[i].FPS; fps > 0 {
			sum += fps
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// Samples returns the window in chronological order.
func (m *Monitor) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, 0, m.n)
	start := (m.head - m.n + len(m.ring)) % len(m.ring)
	for i := 0; i < m.n; i++ {
		out = append(out, m.ring[(start+i)%len(m.ring)])
	}
	return out
}

// ShouldOptimize reports whether the average fps has stayed under the
// threshold for Sustain consecutive samples.
func (m *Monitor) ShouldOptimize() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lowStreak >= m.opts.Sustain
}

// Reset clears all samples and counters.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.ring)
	m.head, m.n, m.drops, m.lowStreak = 0, 0, 0, 0
	m.last = time.Time{}
}

// Impact ranks how much a suggestion is expected to help.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Suggestion is an advisory optimization.
type Suggestion struct {
	Suggestion string
	Impact     Impact
	// Type names the knob: "effects", "fps", "resolution", "memory" or
	// "capture".
	Type      string
	AutoApply bool
}

// Suggestions returns the optimizations that the current window supports.
func (m *Monitor) Suggestions() []Suggestion {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Suggestion
	avg, ok := m.averageLocked()
	if ok && avg < m.opts.Threshold {
		out = append(out, Suggestion{
			Suggestion: fmt.Sprintf("Average %.0f fps is under %.0f; lower effect fidelity", avg, m.opts.Threshold),
			Impact:     ImpactHigh,
			Type:       "effects",
			AutoApply:  true,
		})
		if avg < m.opts.Threshold/2 {
			out = append(out, Suggestion{
				Suggestion: "Reduce the capture frame rate",
				Impact:     ImpactHigh,
				Type:       "fps",
				AutoApply:  true,
			})
		}
	}

	var total time.Duration
	var peak uint64
	for i := 0; i < m.n; i++ {
		total += m.ring[i].RenderTime
		peak = max(peak, m.ring[i].MemoryUsed)
	}
	if m.n > 0 && total/time.Duration(m.n) > m.opts.RenderBudget {
		out = append(out, Suggestion{
			Suggestion: fmt.Sprintf("Frames take %v to render; reduce the output resolution", total/time.Duration(m.n)),
			Impact:     ImpactMedium,
			Type:       "resolution",
		})
	}
	if peak > m.opts.MemoryLimit {
		out = append(out, Suggestion{
			Suggestion: fmt.Sprintf("Memory use %s exceeds %s; shorten the recording", humanize.IBytes(peak), humanize.IBytes(m.opts.MemoryLimit)),
			Impact:     ImpactHigh,
			Type:       "memory",
		})
	}
	if m.drops > 0 {
		out = append(out, Suggestion{
			Suggestion: fmt.Sprintf("%d captured frames were dropped", m.drops),
			Impact:     ImpactLow,
			Type:       "capture",
		})
	}
	return out
}
