package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNan(t *testing.T) {
	G := NewGridBuffer(2, 2)
	assert.False(t, IsNan(G))
	G.Set(1, 1, math.NaN())
	assert.True(t, IsNan(G))
	assert.True(t, IsNan(math.NaN()))
	assert.False(t, IsNan([]float64{1, 2}))
	assert.False(t, IsNan("not a number"))
	assert.Contains(t, GetMemUsage(), "Alloc =")
}
