package indicators

import (
	"fmt"
	"time"

	"FundLens/internal/domain/models"
	domrepo "FundLens/internal/domain/repository"
	domsvc "FundLens/internal/domain/service"
	applogger "FundLens/pkg/logger"
)

// SyntheticVolume is the constant volume assumed for NAV series that carry none.
const SyntheticVolume = 1_000_000.0

type input struct {
	close  []float64
	high   []float64
	low    []float64
	volume []float64
}

type calcFunc func(in input, cfg models.IndicatorConfig) (map[string][]float64, error)

// Engine computes catalog indicators. Each indicator is isolated: a failure drops only its columns.
type Engine struct {
	l       *applogger.Logger
	metrics domrepo.Metrics
	calcs   map[models.IndicatorName]calcFunc
}

func NewEngine(l *applogger.Logger, m domrepo.Metrics) *Engine {
	return &Engine{
		l:       l,
		metrics: m,
		calcs: map[models.IndicatorName]calcFunc{
			models.IndicatorMAShort: maShort,
			models.IndicatorMALong:  maLong,
			models.IndicatorRSI:     rsi,
			models.IndicatorBOLL:    boll,
			models.IndicatorMACD:    macd,
			models.IndicatorKDJ:     kdj,
			models.IndicatorCCI:     cci,
			models.IndicatorDMI:     dmi,
			models.IndicatorBBI:     bbi,
			models.IndicatorTRIX:    trix,
			models.IndicatorATR:     atr,
			models.IndicatorOBV:     obv,
			models.IndicatorMFI:     mfi,
		},
	}
}

// Compute builds a table holding the columns of every requested indicator that succeeded.
// Only an invalid config is returned as an error; per-indicator failures land in table.Failures.
func (e *Engine) Compute(s *models.CanonicalSeries, cfg models.IndicatorConfig, requested []models.IndicatorName) (*models.IndicatorTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return nil, models.ErrEmptySeries
	}
	start := time.Now()
	table := models.NewIndicatorTable(s, cfg)
	volume, synthetic := s.Volumes(SyntheticVolume)
	in := input{close: s.Prices(), high: s.Highs(), low: s.Lows(), volume: volume}

	seen := make(map[models.IndicatorName]bool, len(requested))
	for _, name := range requested {
		if seen[name] {
			continue
		}
		seen[name] = true
		calc, ok := e.calcs[name]
		if !ok {
			e.l.Debug("unknown indicator ignored", applogger.String("indicator", string(name)))
			continue
		}
		cols, err := e.run(name, calc, in, cfg)
		if err != nil {
			table.Failures[name] = err.Error()
			e.l.Warn("indicator failed",
				applogger.String("indicator", string(name)),
				applogger.Int("points", s.Len()),
				applogger.Error(err))
			if e.metrics != nil {
				e.metrics.RecordIndicatorFailure(string(name))
			}
			continue
		}
		for col, vals := range cols {
			table.Columns[col] = vals
		}
		table.Computed = append(table.Computed, name)
		if synthetic && (name == models.IndicatorOBV || name == models.IndicatorMFI) {
			table.SyntheticVolumeUsed = true
		}
	}
	if e.metrics != nil {
		e.metrics.RecordLatency("indicators", time.Since(start).Seconds())
	}
	return table, nil
}

func (e *Engine) run(name models.IndicatorName, calc calcFunc, in input, cfg models.IndicatorConfig) (cols map[string][]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			cols = nil
			err = &models.IndicatorError{Indicator: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	cols, err = calc(in, cfg)
	if err != nil {
		return nil, &models.IndicatorError{Indicator: name, Err: err}
	}
	n := len(in.close)
	for col, vals := range cols {
		if len(vals) != n {
			return nil, &models.IndicatorError{Indicator: name, Err: fmt.Errorf("column %s has %d values, want %d", col, len(vals), n)}
		}
	}
	return cols, nil
}

var _ domsvc.IndicatorEngine = (*Engine)(nil)
