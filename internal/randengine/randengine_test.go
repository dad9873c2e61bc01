package randengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngine_SameSeedSameSequence(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestEngine_DurationBetween(t *testing.T) {
	e := New(7)
	for i := 0; i < 1000; i++ {
		d := e.DurationBetween(30*time.Second, 60*time.Second)
		assert.GreaterOrEqual(t, d, 30*time.Second)
		assert.LessOrEqual(t, d, 60*time.Second)
	}
	assert.Equal(t, 5*time.Second, e.DurationBetween(5*time.Second, 5*time.Second))
	assert.Equal(t, 5*time.Second, e.DurationBetween(5*time.Second, time.Second))
}

func TestEngine_Sign(t *testing.T) {
	e := New(3)
	pos, neg := 0, 0
	for i := 0; i < 200; i++ {
		switch e.Sign() {
		case 1:
			pos++
		case -1:
			neg++
		default:
			t.Fatal("sign must be +1 or -1")
		}
	}
	assert.NotZero(t, pos)
	assert.NotZero(t, neg)
}

func TestNew_ZeroSeed(t *testing.T) {
	e := New(0)
	v := e.Float64()
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
}
