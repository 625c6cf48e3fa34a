package playback

import (
	"sync"

	"github.com/faiface/beep"
)

// Tap wraps a beep.Streamer and records the last N samples into a ring buffer
// so the analyser can look at recently played audio.
type Tap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	mu        sync.RWMutex
}

func NewTap(src beep.Streamer, ringSize int) *Tap {
	return &Tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex++
			if t.nextIndex >= len(t.buffer) {
				t.nextIndex = 0
			}
		}
		t.mu.Unlock()
	}
	return n, ok
}

func (t *Tap) Err() error { return t.Source.Err() }

// Clear zeroes the ring, e.g. after a seek so stale audio does not linger.
func (t *Tap) Clear() {
	t.mu.Lock()
	for i := range t.buffer {
		t.buffer[i] = [2]float64{}
	}
	t.nextIndex = 0
	t.mu.Unlock()
}

// Mono writes the last len(dst) samples, down-mixed to mono, into dst in
// chronological order. It returns how many were written.
func (t *Tap) Mono(dst []float64) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := len(dst)
	if n > len(t.buffer) {
		n = len(t.buffer)
	}
	// oldest wanted sample sits n slots behind nextIndex
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := 0; i < n; i++ {
		s := t.buffer[idx]
		dst[i] = (s[0] + s[1]) * 0.5
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return n
}
