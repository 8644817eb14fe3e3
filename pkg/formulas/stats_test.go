package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	// sample stdev of 2,4,4,4,5,5,7,9 is sqrt(32/7)
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestCalculateReturns(t *testing.T) {
	assert.Empty(t, CalculateReturns([]float64{100}))

	returns := CalculateReturns([]float64{100, 110, 0, 50})
	assert.Len(t, returns, 3)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -1.0, returns[1], 1e-12)
	assert.Equal(t, 0.0, returns[2])
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.01}, WeeksPerYear))
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.01, 0.02}, 0))

	returns := []float64{0.01, -0.01, 0.01, -0.01}
	expected := StdDev(returns) * math.Sqrt(52)
	assert.InDelta(t, expected, AnnualizedVolatility(returns, WeeksPerYear), 1e-12)
}

func TestSafeDivAndPercent(t *testing.T) {
	assert.Equal(t, 0.0, SafeDiv(10, 0))
	assert.Equal(t, 2.5, SafeDiv(5, 2))
	assert.Equal(t, 0.0, Percent(10, 0))
	assert.Equal(t, 0.0, Percent(10, -5))
	assert.Equal(t, 25.0, Percent(25, 100))
}
