// Package history keeps a short, in-memory trail of each server's metrics
// across the snapshots pulled during one session, for sparklines. Nothing is
// persisted.
package history

import (
	"sync"

	"github.com/server-sentinel/sentinel/pkg/sdk"
)

// DefaultSize is the number of samples retained per metric.
const DefaultSize = 30

// History holds per-server ring buffers of CPU, memory and swap percentages.
type History struct {
	mu      sync.RWMutex
	size    int
	servers map[string]*serverHistory
}

type serverHistory struct {
	cpu  *ringBuffer
	mem  *ringBuffer
	swap *ringBuffer
	last string // timestamp of the newest recorded report
}

type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

func New(size int) *History {
	if size <= 0 {
		size = DefaultSize
	}
	return &History{
		size:    size,
		servers: make(map[string]*serverHistory),
	}
}

// Record pushes one sample per online server in reports. Offline servers
// produce no sample so a gap does not read as 0%. A report carrying the same
// timestamp as the last one recorded for its server is a re-served copy of
// the same run and is skipped.
func (h *History) Record(reports []sdk.ServerReport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range reports {
		if !r.IsOnline {
			continue
		}
		hist := h.getOrCreate(r.ServerName)
		if r.Timestamp != "" && r.Timestamp == hist.last {
			continue
		}
		hist.last = r.Timestamp
		hist.cpu.push(r.CPUUsage)
		if r.MemTotalMB > 0 {
			hist.mem.push(r.MemUsedPercent())
		}
		if r.SwapTotalMB > 0 {
			hist.swap.push(r.SwapUsedPercent())
		}
	}
}

// CPU returns up to count CPU samples for name, oldest first.
func (h *History) CPU(name string, count int) []float64 {
	return h.get(name, count, func(s *serverHistory) *ringBuffer { return s.cpu })
}

// Memory returns up to count memory-used percentages for name, oldest first.
func (h *History) Memory(name string, count int) []float64 {
	return h.get(name, count, func(s *serverHistory) *ringBuffer { return s.mem })
}

// Swap returns up to count swap-used percentages for name, oldest first.
func (h *History) Swap(name string, count int) []float64 {
	return h.get(name, count, func(s *serverHistory) *ringBuffer { return s.swap })
}

func (h *History) get(name string, count int, pick func(*serverHistory) *ringBuffer) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.servers[name]
	if !ok {
		return nil
	}
	return pick(hist).getLast(count)
}

// Count returns the number of CPU samples stored for name.
func (h *History) Count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.servers[name]
	if !ok {
		return 0
	}
	return hist.cpu.count
}

// Clear drops every server's history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.servers = make(map[string]*serverHistory)
}

// Must be called with h.mu held.
func (h *History) getOrCreate(name string) *serverHistory {
	hist, ok := h.servers[name]
	if !ok {
		hist = &serverHistory{
			cpu:  newRingBuffer(h.size),
			mem:  newRingBuffer(h.size),
			swap: newRingBuffer(h.size),
		}
		h.servers[name] = hist
	}
	return hist
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order.
// head is the next write position, so the newest value sits at head-1.
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || count > r.count {
		count = r.count
	}
	if count == 0 {
		return nil
	}

	result := make([]float64, count)
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
