package series

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
)

func TestDailyReturns(t *testing.T) {
	assert.Nil(t, DailyReturns([]float64{1}))
	r := DailyReturns([]float64{1, 1.1, 0.99})
	require.Len(t, r, 2)
	assert.InDelta(t, 0.1, r[0], 1e-12)
	assert.InDelta(t, -0.1, r[1], 1e-12)
}

func TestAlignInnerJoin(t *testing.T) {
	a := &models.CanonicalSeries{Points: []models.Point{
		{Date: day(2024, 1, 2), Price: 1},
		{Date: day(2024, 1, 3), Price: 2},
		{Date: day(2024, 1, 4), Price: 3},
	}}
	b := &models.CanonicalSeries{Points: []models.Point{
		{Date: day(2024, 1, 3), Price: 20},
		{Date: day(2024, 1, 4), Price: 30},
		{Date: day(2024, 1, 5), Price: 40},
	}}
	al := Align(a, b)
	assert.Len(t, al.Dates, 2)
	assert.Equal(t, []float64{2, 3}, al.A)
	assert.Equal(t, []float64{20, 30}, al.B)
}

func TestStdDevAndCovariance(t *testing.T) {
	_, ok := StdDev([]float64{1})
	assert.False(t, ok)

	sd, ok := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.True(t, ok)
	// sample deviation of the classic population-2 example
	assert.InDelta(t, math.Sqrt(32.0/7.0), sd, 1e-12)

	cov, ok := Covariance([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.True(t, ok)
	assert.InDelta(t, 2.0, cov, 1e-12)
}
