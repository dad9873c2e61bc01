package simulation

import (
	"math"
	"time"
)

const (
	DefaultTickInterval = 200 * time.Millisecond
	DefaultMinDuration  = 30 * time.Second
	DefaultMaxDuration  = 60 * time.Second
)

// Clock advances progress by a fixed interval per tick over a total duration.
type Clock struct {
	Interval time.Duration
	Total    time.Duration
	Step     int
}

// NewClock creates a clock at progress 0.
func NewClock(interval, total time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if total < interval {
		total = interval
	}
	return &Clock{Interval: interval, Total: total}
}

// Tick advances one step and returns the new progress.
func (c *Clock) Tick() float64 {
	c.Step++
	return c.Progress()
}

// Progress is min(step*interval/total, 1).
func (c *Clock) Progress() float64 {
	return math.Min(float64(c.Step)*float64(c.Interval)/float64(c.Total), 1)
}

// Elapsed is the simulated time covered so far.
func (c *Clock) Elapsed() time.Duration {
	e := time.Duration(c.Step) * c.Interval
	if e > c.Total {
		return c.Total
	}
	return e
}

// Remaining is the simulated time left.
func (c *Clock) Remaining() time.Duration {
	return c.Total - c.Elapsed()
}

// TotalSteps is the number of ticks needed to reach progress 1.
func (c *Clock) TotalSteps() int {
	return int(math.Ceil(float64(c.Total) / float64(c.Interval)))
}
