// Package randengine wraps golang.org/x/exp/rand so every random decision in a
// simulation run comes from one injectable, seedable source.
package randengine

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// Engine is a mutex-guarded random generator.
type Engine struct {
	mtx sync.Mutex
	r   *rand.Rand
}

// New creates an engine from a seed. A zero seed is replaced by the current time.
func New(seed uint64) *Engine {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Engine{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a value in [0, n).
func (e *Engine) Intn(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.r.Intn(n)
}

// Float64 returns a value in [0.0, 1.0).
func (e *Engine) Float64() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.r.Float64()
}

// PTrue returns true with probability p.
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Sign returns +1 or -1 with equal probability.
func (e *Engine) Sign() float64 {
	if e.PTrue(0.5) {
		return 1
	}
	return -1
}

// DurationBetween returns a duration uniformly chosen in [min, max].
func (e *Engine) DurationBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return min + time.Duration(e.r.Int63n(int64(max-min)+1))
}
