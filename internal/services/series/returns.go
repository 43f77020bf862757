package series

import (
	"math"
	"time"

	"FundLens/internal/domain/models"
)

// DailyReturns computes simple returns r_t = P_t / P_{t-1} - 1.
// It returns a slice of length len(prices)-1, or nil if insufficient data.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out = append(out, prices[i]/prices[i-1]-1)
	}
	return out
}

// Aligned holds two price sequences sharing the same dates.
type Aligned struct {
	Dates []time.Time
	A     []float64
	B     []float64
}

// Align inner-joins two series on exact dates.
func Align(a, b *models.CanonicalSeries) Aligned {
	var out Aligned
	if a.Len() == 0 || b.Len() == 0 {
		return out
	}
	idx := make(map[time.Time]float64, b.Len())
	for _, p := range b.Points {
		idx[p.Date] = p.Price
	}
	for _, p := range a.Points {
		if v, ok := idx[p.Date]; ok {
			out.Dates = append(out.Dates, p.Date)
			out.A = append(out.A, p.Price)
			out.B = append(out.B, v)
		}
	}
	return out
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev is the sample standard deviation. ok is false with fewer than two values.
func StdDev(xs []float64) (float64, bool) {
	v, ok := Covariance(xs, xs)
	if !ok {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v), true
}

// Covariance is the sample covariance of two equal-length slices.
func Covariance(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || len(ys) != n {
		return 0, false
	}
	mx, my := Mean(xs), Mean(ys)
	sum := 0.0
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1), true
}
