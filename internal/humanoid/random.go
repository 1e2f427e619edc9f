// internal/humanoid/random.go
package humanoid

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness the engine draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSeededSource returns a deterministic source for reproducible runs.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// lockedSource serializes access to a Source that is not goroutine safe.
type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func newLockedSource(src Source) *lockedSource {
	if src == nil {
		src = NewSeededSource(time.Now().UnixNano())
	}
	if ls, ok := src.(*lockedSource); ok {
		return ls
	}
	return &lockedSource{src: src}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

// chance reports true with probability p.
func (h *Humanoid) chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return h.rng.Float64() < p
}

// between draws a float uniformly from [lo, hi).
func (h *Humanoid) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + h.rng.Float64()*(hi-lo)
}

// intBetween draws an integer uniformly from [lo, hi], inclusive.
func (h *Humanoid) intBetween(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + h.rng.Intn(hi-lo+1)
}
