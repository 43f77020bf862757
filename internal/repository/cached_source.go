package repository

import (
	"context"
	"errors"
	"time"

	"FundLens/internal/domain/models"
	domrepo "FundLens/internal/domain/repository"
	"FundLens/pkg/cache"
	applogger "FundLens/pkg/logger"
	"FundLens/pkg/util"
)

const (
	seriesPrefix  = "series"
	profilePrefix = "profile"
)

// CachedSource memoizes another FundSource's rows by (kind, code, range) with a TTL.
// Cache failures are logged and bypassed, so results never depend on cache state.
type CachedSource struct {
	next      domrepo.FundSource
	cache     cache.Service
	seriesTTL time.Duration
	staticTTL time.Duration
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewCachedSource(next domrepo.FundSource, c cache.Service, seriesTTL, staticTTL time.Duration, m domrepo.Metrics, l *applogger.Logger) *CachedSource {
	return &CachedSource{next: next, cache: c, seriesTTL: seriesTTL, staticTTL: staticTTL, metrics: m, l: l}
}

func (s *CachedSource) FetchFundSeries(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error) {
	key := cache.GenerateKeyWithParams(seriesPrefix, "fund", util.NormalizeCode(code), util.FormatCompact(start), util.FormatCompact(end))
	return s.rows(ctx, key, func() ([]models.RawRecord, error) {
		return s.next.FetchFundSeries(ctx, code, start, end)
	})
}

func (s *CachedSource) FetchBenchmarkSeries(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error) {
	key := cache.GenerateKeyWithParams(seriesPrefix, "index", util.NormalizeCode(code), util.FormatCompact(start), util.FormatCompact(end))
	return s.rows(ctx, key, func() ([]models.RawRecord, error) {
		return s.next.FetchBenchmarkSeries(ctx, code, start, end)
	})
}

func (s *CachedSource) FetchStaticInfo(ctx context.Context, code string) (*models.FundProfile, error) {
	key := cache.GenerateKeyWithParams(profilePrefix, util.NormalizeCode(code))
	var p models.FundProfile
	if s.lookup(ctx, profilePrefix, key, &p) {
		return &p, nil
	}
	fresh, err := s.next.FetchStaticInfo(ctx, code)
	if err != nil || fresh == nil {
		return fresh, err
	}
	s.store(ctx, key, fresh, s.staticTTL)
	return fresh, nil
}

// Purge drops every cached series and profile.
func (s *CachedSource) Purge(ctx context.Context) error {
	return errors.Join(
		s.cache.DeleteByPattern(ctx, cache.BuildPattern(seriesPrefix+":")),
		s.cache.DeleteByPattern(ctx, cache.BuildPattern(profilePrefix+":")),
	)
}

func (s *CachedSource) rows(ctx context.Context, key string, fetch func() ([]models.RawRecord, error)) ([]models.RawRecord, error) {
	var rows []models.RawRecord
	if s.lookup(ctx, seriesPrefix, key, &rows) {
		return rows, nil
	}
	rows, err := fetch()
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows, s.seriesTTL)
	return rows, nil
}

func (s *CachedSource) lookup(ctx context.Context, kind, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		s.recordCache(kind, "hit")
		return true
	case errors.Is(err, cache.ErrCacheMiss):
		s.recordCache(kind, "miss")
	default:
		s.recordCache(kind, "error")
		s.l.Warn("cache get failed", applogger.String("key", key), applogger.Error(err))
	}
	return false
}

func (s *CachedSource) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.l.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (s *CachedSource) recordCache(kind, result string) {
	if s.metrics != nil {
		s.metrics.RecordCache(kind, result)
	}
}

var (
	_ domrepo.FundSource  = (*CachedSource)(nil)
	_ domrepo.CachePurger = (*CachedSource)(nil)
)
