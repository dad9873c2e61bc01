package simulation

import (
	"math"

	"github.com/ukydev/emergency-priority/internal/models"
)

// StepTracker maps distance travelled onto the turn-by-turn list. The index
// never decreases and completed flags never revert within a run.
type StepTracker struct {
	steps    []models.DirectionStep
	totalKm  float64
	index    int
	revision int
}

// NewStepTracker copies steps so the caller's slice is never mutated.
func NewStepTracker(steps []models.DirectionStep, totalKm float64) *StepTracker {
	return &StepTracker{
		steps:   append([]models.DirectionStep(nil), steps...),
		totalKm: totalKm,
	}
}

// Advance moves the index for the given progress and reports whether it changed.
func (t *StepTracker) Advance(progress float64) bool {
	n := len(t.steps)
	if n == 0 {
		return false
	}

	var idx int
	if t.totalKm > 0 {
		traveled := progress * t.totalKm
		stepsPerKm := float64(n) / t.totalKm
		idx = int(math.Floor(traveled * stepsPerKm))
	} else {
		idx = int(math.Floor(progress * float64(n)))
	}
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	if idx <= t.index {
		return false
	}

	t.index = idx
	for i := 0; i < idx; i++ {
		t.steps[i].Completed = true
	}
	t.revision++
	return true
}

// CompleteAll marks every step completed.
func (t *StepTracker) CompleteAll() {
	changed := false
	for i := range t.steps {
		if !t.steps[i].Completed {
			t.steps[i].Completed = true
			changed = true
		}
	}
	if changed {
		t.revision++
	}
}

func (t *StepTracker) Index() int    { return t.index }
func (t *StepTracker) Revision() int { return t.revision }
func (t *StepTracker) Len() int      { return len(t.steps) }

// Current returns the step at the current index.
func (t *StepTracker) Current() (models.DirectionStep, bool) {
	if len(t.steps) == 0 {
		return models.DirectionStep{}, false
	}
	return t.steps[t.index], true
}

// Steps returns a copy of the step list.
func (t *StepTracker) Steps() []models.DirectionStep {
	return append([]models.DirectionStep{}, t.steps...)
}
