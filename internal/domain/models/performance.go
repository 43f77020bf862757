package models

// PerformanceMetrics summarises a fund series. Benchmark-relative fields are nil without an alignable benchmark.
type PerformanceMetrics struct {
	TotalReturn      float64  `json:"total_return"`
	AnnualReturn     float64  `json:"annual_return"`
	AnnualVolatility float64  `json:"annual_volatility"`
	MaxDrawdown      float64  `json:"max_drawdown"`
	SharpeRatio      float64  `json:"sharpe_ratio"`
	CalmarRatio      float64  `json:"calmar_ratio"`
	Beta             *float64 `json:"beta,omitempty"`
	InformationRatio *float64 `json:"information_ratio,omitempty"`
	TrackingError    *float64 `json:"tracking_error,omitempty"`
	Observations     int      `json:"observations"`
	Annualized       bool     `json:"annualized"`
	Warnings         []string `json:"warnings,omitempty"`
}

// HasBenchmark reports whether relative metrics were computed.
func (m PerformanceMetrics) HasBenchmark() bool {
	return m.Beta != nil
}

// YearlyReturn is the calendar-year return of the fund and, when available, the benchmark.
type YearlyReturn struct {
	Year      int      `json:"year"`
	Fund      float64  `json:"fund"`
	Benchmark *float64 `json:"benchmark,omitempty"`
}
