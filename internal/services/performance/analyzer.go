package performance

import (
	"fmt"
	"math"

	"FundLens/internal/domain/models"
	"FundLens/internal/services/series"
)

const (
	TradingDaysPerYear = 252
	RiskFreeRate       = 0.03
	// MinAnnualizationObservations is the smallest sample that gets a compounded annual return.
	MinAnnualizationObservations = 20
)

// Analyze computes return, risk and risk-adjusted metrics for fund.
// Benchmark-relative metrics are filled only when benchmark shares at least two dates with fund.
func Analyze(fund, benchmark *models.CanonicalSeries) models.PerformanceMetrics {
	var m models.PerformanceMetrics
	n := fund.Len()
	m.Observations = n
	if n == 0 {
		m.Warnings = append(m.Warnings, fmt.Sprintf("%v: empty series", models.ErrInsufficientData))
		return m
	}
	cum := fund.Cumulative()
	m.TotalReturn = cum[n-1]/cum[0] - 1

	if n >= MinAnnualizationObservations {
		years := float64(n) / TradingDaysPerYear
		m.AnnualReturn = math.Pow(1+m.TotalReturn, 1/years) - 1
		m.Annualized = true
	} else {
		m.AnnualReturn = m.TotalReturn
		m.Warnings = append(m.Warnings, fmt.Sprintf("%v: %d observations, annual return not compounded", models.ErrInsufficientData, n))
	}

	returns := series.DailyReturns(fund.Prices())
	if sd, ok := series.StdDev(returns); ok {
		m.AnnualVolatility = sd * math.Sqrt(TradingDaysPerYear)
	} else {
		m.Warnings = append(m.Warnings, fmt.Sprintf("%v: volatility needs at least 3 points", models.ErrInsufficientData))
	}

	m.MaxDrawdown = MaxDrawdown(cum)
	if m.AnnualVolatility > 0 {
		m.SharpeRatio = (m.AnnualReturn - RiskFreeRate) / m.AnnualVolatility
	}
	if m.MaxDrawdown != 0 {
		m.CalmarRatio = m.AnnualReturn / math.Abs(m.MaxDrawdown)
	}

	if benchmark != nil {
		relative(&m, fund, benchmark)
	}
	return m
}

// MaxDrawdown is the most negative (cum - running max) / running max. It is never positive.
func MaxDrawdown(cum []float64) float64 {
	worst, peak := 0.0, math.Inf(-1)
	for _, v := range cum {
		if v > peak {
			peak = v
		}
		if dd := (v - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

func relative(m *models.PerformanceMetrics, fund, benchmark *models.CanonicalSeries) {
	aligned := series.Align(fund, benchmark)
	if len(aligned.Dates) < 2 {
		return
	}
	fr := series.DailyReturns(aligned.A)
	br := series.DailyReturns(aligned.B)

	// same ddof on both sides: a fund tracking k times its benchmark has beta exactly k
	beta := 1.0
	if cov, ok := series.Covariance(fr, br); ok {
		if v, ok := series.Covariance(br, br); ok && v > 0 {
			beta = cov / v
		}
	}

	excess := make([]float64, len(fr))
	for i := range fr {
		excess[i] = fr[i] - br[i]
	}
	te := 0.0
	if sd, ok := series.StdDev(excess); ok {
		te = sd * math.Sqrt(TradingDaysPerYear)
	}
	ir := 0.0
	if te > 0 {
		ir = series.Mean(excess) * math.Sqrt(TradingDaysPerYear) / te
	}
	m.Beta, m.TrackingError, m.InformationRatio = &beta, &te, &ir
}
