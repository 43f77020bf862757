package models

import "time"

// Analysis is the full result of one pipeline run.
type Analysis struct {
	RunID             string             `json:"run_id"`
	Code              string             `json:"code"`
	Benchmark         string             `json:"benchmark,omitempty"`
	Start             time.Time          `json:"start"`
	End               time.Time          `json:"end"`
	Config            IndicatorConfig    `json:"config"`
	Table             *IndicatorTable    `json:"table"`
	Performance       PerformanceMetrics `json:"performance"`
	Crosses           Crosses            `json:"crosses"`
	Signals           SignalSummary      `json:"signals"`
	RollingVolatility []*float64         `json:"rolling_volatility"`
	YearlyReturns     []YearlyReturn     `json:"yearly_returns"`
	Profile           *FundProfile       `json:"profile,omitempty"`
	Errors            map[string]string  `json:"errors,omitempty"`
}

// FundProfile is the static information shown next to the charts.
type FundProfile struct {
	Code      string      `json:"code"`
	Basic     RawRecord   `json:"basic,omitempty"`
	Managers  []RawRecord `json:"managers,omitempty"`
	Shares    []RawRecord `json:"shares,omitempty"`
	Dividends []RawRecord `json:"dividends,omitempty"`
}

// Name returns the fund name from the basic record when present.
func (p *FundProfile) Name() string {
	if p == nil || p.Basic == nil {
		return ""
	}
	if s, ok := p.Basic["name"].(string); ok {
		return s
	}
	return ""
}
