package sample

import (
	"math"
	"testing"

	"chartanim/define"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInitialLine(t *testing.T) {
	seq := Generate(define.ModeLine, 0)

	assert.Len(t, seq, Count)
	for i, p := range seq {
		assert.Equal(t, i+1, p.X)
		assert.InDelta(t, math.Sin(float64(p.X)/4), p.Y, 1e-12)
	}
}

func TestGenerateBarIsNonNegative(t *testing.T) {
	for phase := 0; phase < 100; phase++ {
		for _, p := range Generate(define.ModeBar, phase) {
			assert.GreaterOrEqual(t, p.Y, 0.0)
		}
	}
}

func TestGeneratePhaseShift(t *testing.T) {
	seq := Generate(define.ModeLine, 3)
	for _, p := range seq {
		assert.InDelta(t, math.Sin(float64(p.X)/4+0.24), p.Y, 1e-12)
	}
}

func TestLabelsAndValues(t *testing.T) {
	labels := Labels()
	assert.Len(t, labels, Count)
	assert.Equal(t, 1, labels[0])
	assert.Equal(t, Count, labels[Count-1])

	values := Generate(define.ModeBar, 1).Values()
	assert.Len(t, values, Count)
	assert.InDelta(t, math.Abs(math.Sin(1.0/4+0.08)), values[0], 1e-12)
}
