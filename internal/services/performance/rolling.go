package performance

import (
	"math"

	"FundLens/internal/domain/models"
	"FundLens/internal/services/series"
)

// DefaultRollingWindow is the trailing window of daily returns used for rolling volatility.
const DefaultRollingWindow = 60

// RollingVolatility computes annualized volatility over a rolling window of daily returns.
// The result is aligned with the series; the first window points are NaN.
func RollingVolatility(s *models.CanonicalSeries, window int) []float64 {
	n := s.Len()
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if window < 2 {
		return out
	}
	returns := series.DailyReturns(s.Prices())
	// returns[i-1] is the return ending at point i
	for i := window; i < n; i++ {
		if sd, ok := series.StdDev(returns[i-window : i]); ok {
			out[i] = sd * math.Sqrt(TradingDaysPerYear)
		}
	}
	return out
}

// YearlyReturns computes last/first - 1 for every calendar year with more than one point.
// The benchmark value is nil for years where it has fewer than two points.
func YearlyReturns(fund, benchmark *models.CanonicalSeries) []models.YearlyReturn {
	fy := byYear(fund)
	by := byYear(benchmark)
	var out []models.YearlyReturn
	for _, y := range fy.order {
		span := fy.spans[y]
		if span.count < 2 {
			continue
		}
		yr := models.YearlyReturn{Year: y, Fund: span.last/span.first - 1}
		if b, ok := by.spans[y]; ok && b.count > 1 {
			v := b.last/b.first - 1
			yr.Benchmark = &v
		}
		out = append(out, yr)
	}
	return out
}

type yearSpan struct {
	first, last float64
	count       int
}

type yearIndex struct {
	order []int
	spans map[int]yearSpan
}

func byYear(s *models.CanonicalSeries) yearIndex {
	idx := yearIndex{spans: make(map[int]yearSpan)}
	if s == nil {
		return idx
	}
	for _, p := range s.Points {
		y := p.Date.Year()
		span, ok := idx.spans[y]
		if !ok {
			idx.order = append(idx.order, y)
			span.first = p.Price
		}
		span.last = p.Price
		span.count++
		idx.spans[y] = span
	}
	return idx
}
