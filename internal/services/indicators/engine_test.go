package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
	applogger "FundLens/pkg/logger"
)

func series(n int, withRange bool) *models.CanonicalSeries {
	s := &models.CanonicalSeries{Code: "TEST", HasRange: withRange, HasVolume: withRange}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := 10 + 0.05*float64(i) + math.Sin(float64(i)/3)
		pt := models.Point{Date: start.AddDate(0, 0, i), Price: p}
		if withRange {
			pt.High, pt.Low = p*1.01, p*0.99
			pt.Volume = 1000 + 100*math.Cos(float64(i))
		}
		s.Points = append(s.Points, pt)
	}
	return s
}

func linear(n int) *models.CanonicalSeries {
	s := &models.CanonicalSeries{Code: "LIN"}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, models.Point{Date: start.AddDate(0, 0, i), Price: float64(i + 1)})
	}
	return s
}

func TestMovingAverageWarmUp(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	cfg := models.IndicatorConfig{ShortWindow: 3, LongWindow: 5, RSIWindow: 14}
	table, err := e.Compute(linear(10), cfg, []models.IndicatorName{models.IndicatorMAShort, models.IndicatorMALong})
	require.NoError(t, err)

	ma, ok := table.Column(models.ColMAShort)
	require.True(t, ok)
	assert.True(t, math.IsNaN(ma[0]))
	assert.True(t, math.IsNaN(ma[1]))
	assert.InDelta(t, 2.0, ma[2], 1e-12)
	assert.InDelta(t, 9.0, ma[9], 1e-12)

	long, _ := table.Column(models.ColMALong)
	assert.True(t, math.IsNaN(long[3]))
	assert.InDelta(t, 3.0, long[4], 1e-12)

	latest, ok := table.Latest(models.ColMALong)
	require.True(t, ok)
	assert.InDelta(t, 8.0, latest, 1e-12)
}

func TestComputeFullCatalog(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	s := series(120, true)
	table, err := e.Compute(s, models.DefaultIndicatorConfig(), models.Catalog())
	require.NoError(t, err)

	assert.Empty(t, table.Failures)
	assert.ElementsMatch(t, models.Catalog(), table.Computed)
	assert.False(t, table.SyntheticVolumeUsed)
	for col, vals := range table.Columns {
		assert.Len(t, vals, s.Len(), col)
	}

	warmUps := map[string]int{
		models.ColRSI:        14,
		models.ColBollUpper:  19,
		models.ColMACDDif:    25,
		models.ColMACDDea:    33,
		models.ColKDJK:       12,
		models.ColCCI:        19,
		models.ColDMIPlus:    14,
		models.ColADX:        27,
		models.ColBBI:        23,
		models.ColTRIX:       34,
		models.ColTRIXSignal: 42,
		models.ColATR:        14,
		models.ColMFI:        14,
		models.ColOBV:        0,
	}
	for col, first := range warmUps {
		vals, ok := table.Column(col)
		require.True(t, ok, col)
		if first > 0 {
			assert.True(t, math.IsNaN(vals[first-1]), "%s[%d] should be undefined", col, first-1)
		}
		assert.False(t, math.IsNaN(vals[first]), "%s[%d] should be defined", col, first)
	}
}

func TestKDJJIsDerivedFromKAndD(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	table, err := e.Compute(series(60, true), models.DefaultIndicatorConfig(), []models.IndicatorName{models.IndicatorKDJ})
	require.NoError(t, err)

	k, _ := table.Column(models.ColKDJK)
	d, _ := table.Column(models.ColKDJD)
	j, _ := table.Column(models.ColKDJJ)
	for i := 12; i < len(j); i++ {
		assert.InDelta(t, 3*k[i]-2*d[i], j[i], 1e-9)
	}
}

func TestShortSeriesYieldsUndefinedColumns(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	table, err := e.Compute(linear(5), models.DefaultIndicatorConfig(), models.Catalog())
	require.NoError(t, err)

	assert.Empty(t, table.Failures)
	rsi, ok := table.Column(models.ColRSI)
	require.True(t, ok)
	assert.Len(t, rsi, 5)
	for _, v := range rsi {
		assert.True(t, math.IsNaN(v))
	}
	_, ok = table.Latest(models.ColMACDHist)
	assert.False(t, ok)
}

func TestSyntheticVolumeFlag(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	table, err := e.Compute(series(40, false), models.DefaultIndicatorConfig(), []models.IndicatorName{models.IndicatorOBV})
	require.NoError(t, err)
	assert.True(t, table.SyntheticVolumeUsed)

	table, err = e.Compute(series(40, false), models.DefaultIndicatorConfig(), []models.IndicatorName{models.IndicatorRSI})
	require.NoError(t, err)
	assert.False(t, table.SyntheticVolumeUsed)
}

func TestUnknownAndDuplicateIndicatorsAreIgnored(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	table, err := e.Compute(linear(30), models.DefaultIndicatorConfig(),
		[]models.IndicatorName{"FOO", models.IndicatorRSI, models.IndicatorRSI})
	require.NoError(t, err)
	assert.Equal(t, []models.IndicatorName{models.IndicatorRSI}, table.Computed)
	assert.False(t, table.Has(models.IndicatorMACD))
}

func TestInvalidConfig(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	for _, cfg := range []models.IndicatorConfig{
		{ShortWindow: 1, LongWindow: 60, RSIWindow: 14},
		{ShortWindow: 60, LongWindow: 20, RSIWindow: 14},
		{ShortWindow: 20, LongWindow: 60, RSIWindow: 1},
	} {
		_, err := e.Compute(linear(30), cfg, models.Catalog())
		assert.ErrorIs(t, err, models.ErrInvalidConfig, "%+v", cfg)
	}
}

type failureRecorder struct {
	failures []string
}

func (r *failureRecorder) RecordFetch(string, string) {}
func (r *failureRecorder) RecordCache(string, string) {}
func (r *failureRecorder) RecordError(string) {}
func (r *failureRecorder) RecordLatency(string, float64) {}
func (r *failureRecorder) RecordIndicatorFailure(name string) { r.failures = append(r.failures, name) }

func TestFailingIndicatorIsIsolated(t *testing.T) {
	rec := &failureRecorder{}
	e := NewEngine(applogger.Nop(), rec)
	e.calcs[models.IndicatorCCI] = func(input, models.IndicatorConfig) (map[string][]float64, error) {
		panic("boom")
	}
	e.calcs[models.IndicatorBBI] = func(input, models.IndicatorConfig) (map[string][]float64, error) {
		return nil, errors.New("bad input")
	}

	table, err := e.Compute(series(60, true), models.DefaultIndicatorConfig(),
		[]models.IndicatorName{models.IndicatorRSI, models.IndicatorCCI, models.IndicatorBBI})
	require.NoError(t, err)

	assert.Equal(t, []models.IndicatorName{models.IndicatorRSI}, table.Computed)
	assert.Contains(t, table.Failures[models.IndicatorCCI], "boom")
	assert.Contains(t, table.Failures[models.IndicatorBBI], "bad input")
	_, ok := table.Column(models.ColCCI)
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"CCI", "BBI"}, rec.failures)
}

func TestMaskRejectsNonFiniteAfterWarmUp(t *testing.T) {
	_, err := mask([]float64{0, 0, 1, math.Inf(1)}, 2)
	assert.Error(t, err)

	out, err := mask([]float64{5, 5, 1, 2}, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 1.0, out[2])
}

// flatThenRising holds the price at 1.0 for flat points, then adds 0.002 a day.
func flatThenRising(flat, rising int) *models.CanonicalSeries {
	s := &models.CanonicalSeries{Code: "NEW"}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < flat+rising; i++ {
		p := 1.0
		if i >= flat {
			p += 0.002 * float64(i-flat+1)
		}
		s.Points = append(s.Points, models.Point{Date: start.AddDate(0, 0, i), Price: p})
	}
	return s
}

func TestMFIStaysAlignedAfterFlatPrefix(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	table, err := e.Compute(flatThenRising(20, 60), models.DefaultIndicatorConfig(),
		[]models.IndicatorName{models.IndicatorMFI, models.IndicatorRSI})
	require.NoError(t, err)
	require.Empty(t, table.Failures)

	mfi, _ := table.Column(models.ColMFI)
	for i := 0; i < 20; i++ {
		assert.True(t, math.IsNaN(mfi[i]), "MFI[%d] should be undefined", i)
	}
	for i := 20; i < len(mfi); i++ {
		assert.InDelta(t, 100.0, mfi[i], 1e-9, "MFI[%d]", i)
	}

	rsi, _ := table.Column(models.ColRSI)
	assert.True(t, math.IsNaN(rsi[19]))
	assert.InDelta(t, 100.0, rsi[20], 1e-9)
	latest, ok := table.Latest(models.ColRSI)
	require.True(t, ok)
	assert.InDelta(t, 100.0, latest, 1e-9)
}

func TestKDJAndCCIUndefinedOverFlatWindows(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	table, err := e.Compute(flatThenRising(20, 40), models.DefaultIndicatorConfig(),
		[]models.IndicatorName{models.IndicatorKDJ, models.IndicatorCCI})
	require.NoError(t, err)

	k, _ := table.Column(models.ColKDJK)
	d, _ := table.Column(models.ColKDJD)
	j, _ := table.Column(models.ColKDJJ)
	// the last flat %K window ends at 19
	assert.True(t, math.IsNaN(k[21]))
	assert.InDelta(t, 100.0, k[22], 1e-6)
	assert.True(t, math.IsNaN(d[23]))
	assert.True(t, math.IsNaN(j[23]))
	assert.InDelta(t, 100.0, d[24], 1e-6)
	assert.InDelta(t, 100.0, j[24], 1e-6)

	cci, _ := table.Column(models.ColCCI)
	assert.True(t, math.IsNaN(cci[19]))
	assert.False(t, math.IsNaN(cci[20]))
}

func TestFlatSeriesLeavesOscillatorsUndefined(t *testing.T) {
	e := NewEngine(applogger.Nop(), nil)
	requested := []models.IndicatorName{
		models.IndicatorRSI, models.IndicatorKDJ, models.IndicatorMFI, models.IndicatorCCI, models.IndicatorDMI,
	}
	table, err := e.Compute(flatThenRising(60, 0), models.DefaultIndicatorConfig(), requested)
	require.NoError(t, err)
	require.Empty(t, table.Failures)

	for _, col := range []string{
		models.ColRSI, models.ColKDJK, models.ColKDJD, models.ColKDJJ, models.ColMFI, models.ColCCI,
		models.ColDMIPlus, models.ColDMIMinus, models.ColADX,
	} {
		vals, ok := table.Column(col)
		require.True(t, ok, col)
		for i, v := range vals {
			assert.True(t, math.IsNaN(v), "%s[%d] = %v", col, i, v)
		}
	}
}

func TestFallingSeriesKeepsRSIAtZero(t *testing.T) {
	s := &models.CanonicalSeries{Code: "DOWN"}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		s.Points = append(s.Points, models.Point{Date: start.AddDate(0, 0, i), Price: 2 - 0.01*float64(i)})
	}
	e := NewEngine(applogger.Nop(), nil)
	table, err := e.Compute(s, models.DefaultIndicatorConfig(), []models.IndicatorName{models.IndicatorRSI})
	require.NoError(t, err)

	v, ok := table.Latest(models.ColRSI)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}
