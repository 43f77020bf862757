package signals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
	"FundLens/internal/services/indicators"
	applogger "FundLens/pkg/logger"
)

var nan = math.NaN()

func seriesOf(prices ...float64) *models.CanonicalSeries {
	s := &models.CanonicalSeries{Code: "T"}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		s.Points = append(s.Points, models.Point{Date: start.AddDate(0, 0, i), Price: p, Cumulative: p / prices[0]})
	}
	return s
}

func maTable(short, long []float64) *models.IndicatorTable {
	prices := make([]float64, len(short))
	for i := range prices {
		prices[i] = 1
	}
	cfg := models.IndicatorConfig{ShortWindow: 5, LongWindow: 10, RSIWindow: 14}
	t := models.NewIndicatorTable(seriesOf(prices...), cfg)
	t.Columns[models.ColMAShort] = short
	t.Columns[models.ColMALong] = long
	t.Computed = []models.IndicatorName{models.IndicatorMAShort, models.IndicatorMALong}
	return t
}

func TestDetectCrosses(t *testing.T) {
	table := maTable(
		[]float64{nan, 1, 2, 3, 2, 1},
		[]float64{nan, 2, 2, 2, 2, 2},
	)
	dates := table.Series.Dates()
	c := DetectCrosses(table, 5, 10)

	assert.Equal(t, []time.Time{dates[3]}, c.Golden)
	assert.Equal(t, []time.Time{dates[5]}, c.Death)

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.CrossGolden, events[0].Kind)
	assert.Equal(t, models.CrossDeath, events[1].Kind)
}

func TestDetectCrossesSkipsUndefinedNeighbours(t *testing.T) {
	table := maTable(
		[]float64{1, nan, 3, 1},
		[]float64{2, 2, 2, 2},
	)
	c := DetectCrosses(table, 5, 10)
	assert.Empty(t, c.Golden)
	assert.Equal(t, []time.Time{table.Series.Dates()[3]}, c.Death)
}

func TestDetectCrossesWindowMismatch(t *testing.T) {
	table := maTable([]float64{1, 3}, []float64{2, 2})
	c := DetectCrosses(table, 20, 60)
	assert.Empty(t, c.Golden)
	assert.Empty(t, c.Death)

	assert.Empty(t, DetectCrosses(nil, 5, 10).Events())
}

func TestDetectCrossesFromEngine(t *testing.T) {
	s := seriesOf(10, 9, 8, 7, 6, 7, 8, 9, 10)
	cfg := models.IndicatorConfig{ShortWindow: 2, LongWindow: 4, RSIWindow: 14}
	table, err := indicators.NewEngine(applogger.Nop(), nil).Compute(s, cfg,
		[]models.IndicatorName{models.IndicatorMAShort, models.IndicatorMALong})
	require.NoError(t, err)

	c := DetectCrosses(table, 2, 4)
	assert.Equal(t, []time.Time{s.Points[6].Date}, c.Golden)
	assert.Empty(t, c.Death)
}
