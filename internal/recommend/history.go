package recommend

import (
	"math"
	"sync"
)

// minSamples is how many observed signals a (ticker, strategy) pair needs
// before its distribution is trusted for z-score normalization.
const minSamples = 10

// ring is a fixed-capacity rolling window of raw signal values.
// Order does not matter, only the distribution, so an overwrite cursor
// is enough.
type ring struct {
	values []float64
	next   int
	full   bool
}

func (r *ring) push(v float64) {
	if len(r.values) < cap(r.values) {
		r.values = append(r.values, v)
		return
	}
	r.values[r.next] = v
	r.next = (r.next + 1) % len(r.values)
	r.full = true
}

// signalHistory retains a bounded history of raw strategy signals per
// (ticker, strategy) key so heterogeneous signal scales can be
// normalized against their own distributions. Bounded capacity keeps
// memory flat under long-running services.
type signalHistory struct {
	mu       sync.Mutex
	capacity int
	rings    map[string]*ring
}

func newSignalHistory(capacity int) *signalHistory {
	if capacity < minSamples {
		capacity = minSamples
	}
	return &signalHistory{
		capacity: capacity,
		rings:    make(map[string]*ring),
	}
}

// observe records a raw signal for the pair.
func (h *signalHistory) observe(ticker, strategy string, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := ticker + "\x00" + strategy
	r, ok := h.rings[key]
	if !ok {
		r = &ring{values: make([]float64, 0, h.capacity)}
		h.rings[key] = r
	}
	r.push(value)
}

// stats returns the mean, sample standard deviation, and count of the
// retained window for the pair.
func (h *signalHistory) stats(ticker, strategy string) (mean, std float64, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rings[ticker+"\x00"+strategy]
	if !ok || len(r.values) == 0 {
		return 0, 0, 0
	}

	n = len(r.values)
	var sum float64
	for _, v := range r.values {
		sum += v
	}
	mean = sum / float64(n)

	if n < 2 {
		return mean, 0, n
	}
	var variance float64
	for _, v := range r.values {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(n-1)), n
}
