package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundLens/internal/domain/models"
	"FundLens/internal/services/series"
	"FundLens/pkg/cache"
	applogger "FundLens/pkg/logger"
)

type countingSource struct {
	fundCalls, benchCalls, profileCalls int
	fundErr                             error
}

func (s *countingSource) FetchFundSeries(_ context.Context, code string, _, _ time.Time) ([]models.RawRecord, error) {
	s.fundCalls++
	if s.fundErr != nil {
		return nil, s.fundErr
	}
	return []models.RawRecord{
		{"ts_code": code, "ann_date": "20240103", "unit_nav": 1.2345678901},
		{"ts_code": code, "ann_date": "20240102", "unit_nav": 1.2},
	}, nil
}

func (s *countingSource) FetchBenchmarkSeries(_ context.Context, _ string, _, _ time.Time) ([]models.RawRecord, error) {
	s.benchCalls++
	return []models.RawRecord{{"trade_date": "20240102", "close": 3500.12}}, nil
}

func (s *countingSource) FetchStaticInfo(_ context.Context, code string) (*models.FundProfile, error) {
	s.profileCalls++
	return &models.FundProfile{Code: code, Basic: models.RawRecord{"name": "Growth"}}, nil
}

type cacheRecorder struct {
	results []string
}

func (r *cacheRecorder) RecordFetch(string, string) {}
func (r *cacheRecorder) RecordIndicatorFailure(string) {}
func (r *cacheRecorder) RecordError(string) {}
func (r *cacheRecorder) RecordLatency(string, float64) {}
func (r *cacheRecorder) RecordCache(kind, result string) { r.results = append(r.results, kind+":"+result) }

func newCached(t *testing.T, next *countingSource, rec *cacheRecorder) *CachedSource {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return NewCachedSource(next, mc, time.Minute, time.Hour, rec, applogger.Nop())
}

func TestCachedSeriesIsServedOnce(t *testing.T) {
	next := &countingSource{}
	rec := &cacheRecorder{}
	src := newCached(t, next, rec)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cold, err := src.FetchFundSeries(ctx, "110011.OF", start, time.Time{})
	require.NoError(t, err)
	warm, err := src.FetchFundSeries(ctx, "110011.of", start, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 1, next.fundCalls)
	assert.Equal(t, []string{"series:miss", "series:hit"}, rec.results)

	// a warm hit normalizes to exactly the same series as the cold fetch
	a, err := series.Normalize(cold)
	require.NoError(t, err)
	b, err := series.Normalize(warm)
	require.NoError(t, err)
	assert.Equal(t, a.Points, b.Points)

	_, err = src.FetchFundSeries(ctx, "110011.OF", start.AddDate(0, 0, 1), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.fundCalls)
}

func TestCachedSourceSeparatesFundAndIndex(t *testing.T) {
	next := &countingSource{}
	src := newCached(t, next, &cacheRecorder{})
	ctx := context.Background()

	_, err := src.FetchFundSeries(ctx, "000300.SH", time.Time{}, time.Time{})
	require.NoError(t, err)
	_, err = src.FetchBenchmarkSeries(ctx, "000300.SH", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, next.fundCalls)
	assert.Equal(t, 1, next.benchCalls)
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	next := &countingSource{fundErr: errors.New("vendor down")}
	src := newCached(t, next, &cacheRecorder{})
	ctx := context.Background()

	_, err := src.FetchFundSeries(ctx, "110011.OF", time.Time{}, time.Time{})
	require.Error(t, err)
	_, err = src.FetchFundSeries(ctx, "110011.OF", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Equal(t, 2, next.fundCalls)
}

func TestCachedProfileAndPurge(t *testing.T) {
	next := &countingSource{}
	src := newCached(t, next, &cacheRecorder{})
	ctx := context.Background()

	p, err := src.FetchStaticInfo(ctx, "110011.OF")
	require.NoError(t, err)
	assert.Equal(t, "Growth", p.Name())
	_, err = src.FetchStaticInfo(ctx, "110011.OF")
	require.NoError(t, err)
	assert.Equal(t, 1, next.profileCalls)

	_, err = src.FetchFundSeries(ctx, "110011.OF", time.Time{}, time.Time{})
	require.NoError(t, err)

	require.NoError(t, src.Purge(ctx))
	_, err = src.FetchStaticInfo(ctx, "110011.OF")
	require.NoError(t, err)
	_, err = src.FetchFundSeries(ctx, "110011.OF", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.profileCalls)
	assert.Equal(t, 2, next.fundCalls)
}
