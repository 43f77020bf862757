package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndicators(t *testing.T) {
	known, unknown := ParseIndicators(" rsi, MACD ,,foo,kdj")
	assert.Equal(t, []IndicatorName{IndicatorRSI, IndicatorMACD, IndicatorKDJ}, known)
	assert.Equal(t, []string{"FOO"}, unknown)

	known, unknown = ParseIndicators("")
	assert.Empty(t, known)
	assert.Empty(t, unknown)
}

func TestIndicatorConfigValidate(t *testing.T) {
	require.NoError(t, DefaultIndicatorConfig().Validate())
	err := IndicatorConfig{ShortWindow: 20, LongWindow: 20, RSIWindow: 14}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestIndicatorTableJSONUsesNull(t *testing.T) {
	s := &CanonicalSeries{Points: []Point{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Price: 1},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Price: 1.1},
	}}
	table := NewIndicatorTable(s, DefaultIndicatorConfig())
	table.Columns[ColRSI] = []float64{math.NaN(), 55.5}
	table.Computed = []IndicatorName{IndicatorRSI}

	b, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"RSI":[null,55.5]`)
	assert.Contains(t, string(b), `"price":[1,1.1]`)

	v, ok := table.Latest(ColRSI)
	assert.True(t, ok)
	assert.Equal(t, 55.5, v)
	table.Columns[ColRSI][1] = math.Inf(1)
	_, ok = table.Latest(ColRSI)
	assert.False(t, ok)
	_, ok = table.Latest(ColMFI)
	assert.False(t, ok)
}

func TestColumnErrorMatchesSentinel(t *testing.T) {
	var err error = &ColumnError{Role: "price", Candidates: []string{"unit_nav", "close"}}
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "unit_nav")
}

func TestIndicatorErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("overflow")
	err := &IndicatorError{Indicator: IndicatorCCI, Err: cause}
	assert.True(t, errors.Is(err, ErrIndicatorComputation))
	assert.True(t, errors.Is(err, cause))
}
