package series

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizePrefersFieldsByPriority(t *testing.T) {
	raw := []models.RawRecord{
		{"ann_date": "20240103", "trade_date": "20240102", "unit_nav": json.Number("1.10"), "adj_nav": 2.2},
		{"ann_date": "20240102", "trade_date": "20240101", "unit_nav": "1.00", "adj_nav": 2.0},
	}
	s, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "ann_date", s.DateField)
	assert.Equal(t, "unit_nav", s.PriceField)
	assert.Equal(t, []time.Time{day(2024, 1, 2), day(2024, 1, 3)}, s.Dates())
	assert.Equal(t, []float64{1.0, 1.1}, s.Prices())
	assert.False(t, s.HasRange)
	assert.False(t, s.HasVolume)
}

func TestNormalizeFallsBackToClose(t *testing.T) {
	raw := []models.RawRecord{
		{"trade_date": "20240102", "close": 3.5, "high": 3.6, "low": 3.4, "vol": 1200.0},
		{"trade_date": "20240103", "close": 3.7, "high": 3.8, "low": 3.5, "vol": 900.0},
	}
	s, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "close", s.PriceField)
	assert.True(t, s.HasRange)
	assert.True(t, s.HasVolume)
	assert.Equal(t, []float64{3.6, 3.8}, s.Highs())
	v, synthetic := s.Volumes(1)
	assert.False(t, synthetic)
	assert.Equal(t, []float64{1200, 900}, v)
}

func TestNormalizeMissingColumns(t *testing.T) {
	_, err := Normalize([]models.RawRecord{{"unit_nav": 1.0}})
	var colErr *models.ColumnError
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "date", colErr.Role)
	assert.True(t, errors.Is(err, models.ErrMissingColumn))

	_, err = Normalize([]models.RawRecord{{"trade_date": "20240102", "nav": 1.0}})
	require.ErrorAs(t, err, &colErr)
	assert.Equal(t, "price", colErr.Role)
	assert.Equal(t, PriceFields, colErr.Candidates)
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := Normalize(nil)
	assert.ErrorIs(t, err, models.ErrEmptySeries)

	_, err = Normalize([]models.RawRecord{
		{"trade_date": "not a date", "close": 1.0},
		{"trade_date": "20240102", "close": -1.0},
		{"trade_date": "20240103", "close": "n/a"},
	})
	assert.ErrorIs(t, err, models.ErrEmptySeries)
}

func TestNormalizeSortsDedupesAndDropsInvalid(t *testing.T) {
	raw := []models.RawRecord{
		{"trade_date": "20240105", "close": 1.2},
		{"trade_date": "20240103", "close": 1.0},
		{"trade_date": "20240104", "close": 0.0},
		{"trade_date": "20240103", "close": 1.05},
		{"trade_date": "2024-01-08", "close": 1.3},
	}
	s, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2024, 1, 3), day(2024, 1, 5), day(2024, 1, 8)}, s.Dates())
	// the later duplicate wins
	assert.Equal(t, []float64{1.05, 1.2, 1.3}, s.Prices())
}

func TestNormalizeCumulativeStartsAtOne(t *testing.T) {
	raw := []models.RawRecord{
		{"trade_date": "20240102", "close": 2.0},
		{"trade_date": "20240103", "close": 3.0},
		{"trade_date": "20240104", "close": 1.0},
	}
	s, err := Normalize(raw)
	require.NoError(t, err)

	cum := s.Cumulative()
	assert.Equal(t, 1.0, cum[0])
	assert.InDelta(t, 1.5, cum[1], 1e-12)
	assert.InDelta(t, 0.5, cum[2], 1e-12)
}

func TestNormalizePartialRangeDisablesRange(t *testing.T) {
	raw := []models.RawRecord{
		{"trade_date": "20240102", "close": 2.0, "high": 2.1, "low": 1.9},
		{"trade_date": "20240103", "close": 2.2, "high": nil, "low": 2.0},
	}
	s, err := Normalize(raw)
	require.NoError(t, err)
	assert.False(t, s.HasRange)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := []models.RawRecord{
		{"trade_date": "20240104", "close": 1.1, "high": 1.2, "low": 1.0, "vol": 10.0},
		{"trade_date": "20240102", "close": 1.0, "high": 1.1, "low": 0.9, "vol": 12.0},
		{"trade_date": "20240103", "close": 1.05, "high": 1.1, "low": 1.0, "vol": 8.0},
	}
	first, err := Normalize(raw)
	require.NoError(t, err)
	second, err := Normalize(first.Records())
	require.NoError(t, err)

	assert.Equal(t, first.Points, second.Points)
	assert.Equal(t, first.HasRange, second.HasRange)
	assert.Equal(t, first.HasVolume, second.HasVolume)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{json.Number("1.2345"), 1.2345, true},
		{" 2.5 ", 2.5, true},
		{3, 3, true},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		assert.Equal(t, c.ok, ok, "%v", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-12)
		}
	}
}
