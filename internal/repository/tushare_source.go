package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FundLens/internal/domain/models"
	domrepo "FundLens/internal/domain/repository"
	"FundLens/internal/service/tushare"
	applogger "FundLens/pkg/logger"
	"FundLens/pkg/util"
)

// TushareSource implements FundSource on top of the Tushare Pro API.
type TushareSource struct {
	client *tushare.Client
	l      *applogger.Logger
}

func NewTushareSource(client *tushare.Client, l *applogger.Logger) *TushareSource {
	return &TushareSource{client: client, l: l}
}

// FetchFundSeries prefers published NAVs and falls back to exchange bars when none exist.
func (s *TushareSource) FetchFundSeries(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error) {
	code = util.NormalizeCode(code)
	rows, navErr := s.client.FundNAV(ctx, code, start, end)
	if navErr == nil && len(rows) > 0 {
		return rows, nil
	}
	if navErr != nil {
		s.l.Warn("fund_nav failed, trying fund_daily", applogger.String("code", code), applogger.Error(navErr))
	}
	rows, dailyErr := s.client.FundDaily(ctx, code, start, end)
	if dailyErr == nil && len(rows) > 0 {
		return rows, nil
	}
	if navErr != nil && dailyErr != nil {
		return nil, fmt.Errorf("fetch fund %s: %w", code, navErr)
	}
	if dailyErr != nil {
		return nil, fmt.Errorf("fetch fund %s: %w", code, dailyErr)
	}
	return nil, fmt.Errorf("%w: no NAV or daily data for fund %s between %s and %s",
		models.ErrDataUnavailable, code, util.FormatCompact(start), util.FormatCompact(end))
}

func (s *TushareSource) FetchBenchmarkSeries(ctx context.Context, code string, start, end time.Time) ([]models.RawRecord, error) {
	code = util.NormalizeCode(code)
	rows, err := s.client.IndexDaily(ctx, code, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch index %s: %w", code, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no index data for %s", models.ErrDataUnavailable, code)
	}
	return rows, nil
}

// FetchStaticInfo looks the fund up in the exchange fund list, by full code and then by bare code.
// Manager, share and dividend lookups are best effort. Returns (nil, nil) when the fund is not listed.
func (s *TushareSource) FetchStaticInfo(ctx context.Context, code string) (*models.FundProfile, error) {
	code = util.NormalizeCode(code)
	list, err := s.client.FundBasic(ctx, "E")
	if err != nil {
		return nil, fmt.Errorf("fetch fund_basic: %w", err)
	}
	basic := findBasic(list, code)
	if basic == nil {
		return nil, nil
	}
	p := &models.FundProfile{Code: code, Basic: basic}
	if v, ok := basic["ts_code"].(string); ok && v != "" {
		p.Code = v
	}
	p.Managers = s.bestEffort(ctx, tushare.APIFundManager, p.Code, s.client.FundManager)
	p.Shares = s.bestEffort(ctx, tushare.APIFundShare, p.Code, s.client.FundShare)
	p.Dividends = s.bestEffort(ctx, tushare.APIFundDiv, p.Code, s.client.FundDiv)
	return p, nil
}

func (s *TushareSource) bestEffort(ctx context.Context, api, code string, fetch func(context.Context, string) ([]models.RawRecord, error)) []models.RawRecord {
	rows, err := fetch(ctx, code)
	if err != nil {
		s.l.Warn("profile lookup failed", applogger.String("api", api), applogger.String("code", code), applogger.Error(err))
		return nil
	}
	return rows
}

func findBasic(list []models.RawRecord, code string) models.RawRecord {
	for _, r := range list {
		if v, ok := r["ts_code"].(string); ok && util.NormalizeCode(v) == code {
			return r
		}
	}
	bare := util.BareCode(code)
	for _, r := range list {
		if v, ok := r["ts_code"].(string); ok && strings.HasPrefix(util.NormalizeCode(v), bare) {
			return r
		}
	}
	return nil
}

var _ domrepo.FundSource = (*TushareSource)(nil)
