package repository

import (
	"context"
	"time"

	"FundLens/internal/domain/models"
)

// FundSource supplies raw vendor rows for a fund, its benchmark and its static info.
type FundSource interface {
	FetchFundSeries(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error)
	FetchBenchmarkSeries(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error)
	FetchStaticInfo(ctx context.Context, code string) (*models.FundProfile, error)
}

// CachePurger drops cached vendor responses.
type CachePurger interface {
	Purge(ctx context.Context) error
}

type Metrics interface {
	RecordFetch(api, outcome string)
	RecordCache(kind, result string)
	RecordIndicatorFailure(indicator string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
