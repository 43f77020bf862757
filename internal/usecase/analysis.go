package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"FundLens/internal/domain/models"
	domrepo "FundLens/internal/domain/repository"
	domsvc "FundLens/internal/domain/service"
	"FundLens/internal/services/performance"
	"FundLens/internal/services/series"
	"FundLens/internal/services/signals"
	applogger "FundLens/pkg/logger"
)

// NoBenchmark disables benchmark-relative metrics for a run.
const NoBenchmark = "none"

// AnalysisParams describes one run. Zero dates and windows take the use case defaults.
type AnalysisParams struct {
	Code       string
	Benchmark  string
	Start      time.Time
	End        time.Time
	Config     models.IndicatorConfig
	Indicators []models.IndicatorName
	// WithProfile also fetches static fund information.
	WithProfile bool
}

// AnalysisDefaults holds the fallbacks applied to AnalysisParams.
type AnalysisDefaults struct {
	Config        models.IndicatorConfig
	Indicators    []models.IndicatorName
	RollingWindow int
	Benchmark     string
	Timeout       time.Duration
}

// AnalysisUseCase fetches a fund and its benchmark and runs the indicator pipeline over them.
type AnalysisUseCase struct {
	source   domrepo.FundSource
	engine   domsvc.IndicatorEngine
	metrics  domrepo.Metrics
	l        *applogger.Logger
	defaults AnalysisDefaults
	now      func() time.Time
}

func NewAnalysisUseCase(source domrepo.FundSource, engine domsvc.IndicatorEngine, m domrepo.Metrics, l *applogger.Logger, d AnalysisDefaults) *AnalysisUseCase {
	if d.Config == (models.IndicatorConfig{}) {
		d.Config = models.DefaultIndicatorConfig()
	}
	if len(d.Indicators) == 0 {
		d.Indicators = models.Catalog()
	}
	if d.RollingWindow <= 0 {
		d.RollingWindow = performance.DefaultRollingWindow
	}
	if d.Timeout <= 0 {
		d.Timeout = 30 * time.Second
	}
	return &AnalysisUseCase{source: source, engine: engine, metrics: m, l: l, defaults: d, now: time.Now}
}

// Defaults returns the effective defaults.
func (uc *AnalysisUseCase) Defaults() AnalysisDefaults { return uc.defaults }

// Run executes fetch, normalize, indicators, performance, crosses and signals for one fund.
// A fund that cannot be fetched or normalized fails the run; benchmark and profile problems
// are reported in Analysis.Errors and the run continues without them.
func (uc *AnalysisUseCase) Run(ctx context.Context, p AnalysisParams) (*models.Analysis, error) {
	started := time.Now()
	a, err := uc.run(ctx, p)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("analysis", time.Since(started).Seconds())
		if err != nil {
			uc.metrics.RecordError(errorKind(err))
		}
	}
	return a, err
}

func (uc *AnalysisUseCase) run(ctx context.Context, p AnalysisParams) (*models.Analysis, error) {
	p = uc.withDefaults(p)
	if p.Code == "" {
		return nil, fmt.Errorf("%w: fund code required", models.ErrInvalidConfig)
	}
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, uc.defaults.Timeout)
	defer cancel()

	res := &models.Analysis{
		RunID:     uuid.NewString(),
		Code:      p.Code,
		Benchmark: p.Benchmark,
		Start:     p.Start,
		End:       p.End,
		Config:    p.Config,
		Errors:    map[string]string{},
	}
	l := uc.l.With(applogger.String("run_id", res.RunID), applogger.String("code", p.Code))

	raw, err := uc.source.FetchFundSeries(ctx, p.Code, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("fetch fund: %w", err)
	}
	fund, err := series.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize fund %s: %w", p.Code, err)
	}
	fund.Code = p.Code

	// benchmark and profile are optional inputs, fetched concurrently
	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	if p.Benchmark != "" && p.Benchmark != NoBenchmark {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := uc.source.FetchBenchmarkSeries(ctx, p.Benchmark, p.Start, p.End)
			if err != nil {
				ch <- item{"benchmark", nil, err}
				return
			}
			s, err := series.Normalize(rows)
			if err == nil {
				s.Code = p.Benchmark
			}
			ch <- item{"benchmark", s, err}
		}()
	}
	if p.WithProfile {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := uc.source.FetchStaticInfo(ctx, p.Code)
			ch <- item{"profile", v, err}
		}()
	}

	go func() { wg.Wait(); close(ch) }()

	var bench *models.CanonicalSeries
	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			l.Warn("optional input unavailable", applogger.String("input", it.name), applogger.Error(it.err))
			continue
		}
		switch it.name {
		case "benchmark":
			bench = it.val.(*models.CanonicalSeries)
		case "profile":
			res.Profile = it.val.(*models.FundProfile)
		}
	}

	table, err := uc.engine.Compute(fund, p.Config, p.Indicators)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	for name, msg := range table.Failures {
		res.Errors["indicator:"+string(name)] = msg
	}
	res.Table = table
	res.RollingVolatility = models.NullableFloats(performance.RollingVolatility(fund, uc.defaults.RollingWindow))
	res.Performance = performance.Analyze(fund, bench)
	if bench != nil && !res.Performance.HasBenchmark() {
		res.Errors["benchmark"] = "benchmark shares fewer than two dates with the fund"
	}
	res.Crosses = signals.DetectCrosses(table, p.Config.ShortWindow, p.Config.LongWindow)
	res.Signals = signals.Summarize(table)
	res.YearlyReturns = performance.YearlyReturns(fund, bench)

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	l.Info("analysis complete",
		applogger.Int("points", fund.Len()),
		applogger.String("overall", string(res.Signals.Overall)),
		applogger.String("risk", string(res.Signals.RiskTier)))
	return res, nil
}

// Profile returns static info for a fund, or ErrDataUnavailable when it is not listed.
func (uc *AnalysisUseCase) Profile(ctx context.Context, code string) (*models.FundProfile, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: fund code required", models.ErrInvalidConfig)
	}
	p, err := uc.source.FetchStaticInfo(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: no profile for %s", models.ErrDataUnavailable, code)
	}
	return p, nil
}

func (uc *AnalysisUseCase) withDefaults(p AnalysisParams) AnalysisParams {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if p.Config.ShortWindow == 0 {
		p.Config.ShortWindow = uc.defaults.Config.ShortWindow
	}
	if p.Config.LongWindow == 0 {
		p.Config.LongWindow = uc.defaults.Config.LongWindow
	}
	if p.Config.RSIWindow == 0 {
		p.Config.RSIWindow = uc.defaults.Config.RSIWindow
	}
	if len(p.Indicators) == 0 {
		p.Indicators = uc.defaults.Indicators
	}
	if p.Benchmark == "" {
		p.Benchmark = uc.defaults.Benchmark
	}
	r := domrepo.NormalizeRange(p.Start, p.End, uc.now())
	p.Start, p.End = r.Start, r.End
	return p
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, models.ErrEmptySeries):
		return "empty_series"
	case errors.Is(err, models.ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, models.ErrInvalidConfig):
		return "invalid_config"
	default:
		return "analysis"
	}
}
