package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"FundLens/internal/domain/models"
)

func sampleAnalysis() *models.Analysis {
	beta, ir, te := 0.95, 0.4, 0.031
	bench := 0.08
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.Analysis{
		RunID:     "run-42",
		Code:      "510300.SH",
		Benchmark: "000300.SH",
		Start:     time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Config:    models.DefaultIndicatorConfig(),
		Performance: models.PerformanceMetrics{
			TotalReturn:      0.1234,
			AnnualReturn:     0.04,
			AnnualVolatility: 0.18,
			MaxDrawdown:      -0.2512,
			SharpeRatio:      0.06,
			CalmarRatio:      0.16,
			Beta:             &beta,
			InformationRatio: &ir,
			TrackingError:    &te,
			Observations:     730,
			Annualized:       true,
		},
		Crosses: models.Crosses{Golden: []time.Time{d}, Death: []time.Time{d.AddDate(0, 1, 0)}},
		Signals: models.SignalSummary{
			Overall:  models.LabelBullish,
			RiskTier: models.RiskMedium,
			PerIndicator: map[models.IndicatorName]models.IndicatorSignal{
				models.IndicatorRSI:  {Label: models.LabelNeutral, Vote: models.VoteNone, Rationale: "RSI 55.0"},
				models.IndicatorMACD: {Label: models.LabelBullish, Vote: models.VoteBullish, Rationale: "DIF above DEA"},
			},
			BullishCount: 1,
			RiskFlags:    []string{"ATR 0.0300 above 0.02"},
			Suggestion:   "Consider holding.",
		},
		YearlyReturns: []models.YearlyReturn{{Year: 2023, Fund: 0.05, Benchmark: &bench}, {Year: 2024, Fund: -0.02}},
		Profile: &models.FundProfile{
			Code:  "510300.SH",
			Basic: models.RawRecord{"name": "CSI 300 ETF", "management": "Huatai", "m_fee": json.Number("0.5")},
			Managers: []models.RawRecord{
				{"name": "Liu", "end_date": "20200101"},
				{"name": "Chen", "end_date": nil},
			},
			Shares: []models.RawRecord{
				{"trade_date": "20231229", "fd_share": 900000.0},
				{"trade_date": "20240628", "fd_share": json.Number("912345.5")},
			},
		},
		Errors: map[string]string{"indicator:CCI": "boom"},
	}
}

func TestAnalysisReport(t *testing.T) {
	md := Analysis(sampleAnalysis())

	assert.True(t, strings.HasPrefix(md, "# CSI 300 ETF (510300.SH)\n"))
	assert.Contains(t, md, "Period **2021-06-30** to **2024-06-30**")
	assert.Contains(t, md, "| Total return | 12.34% |")
	assert.Contains(t, md, "| Max drawdown | -25.12% |")
	assert.Contains(t, md, "| Beta | 0.95 |")
	assert.Contains(t, md, "Overall **bullish**, risk **medium**")
	assert.Contains(t, md, "| MACD | bullish | +1 | DIF above DEA |")
	assert.Contains(t, md, "| 2024-04-01 | death |")
	assert.Contains(t, md, "| 2023 | 5.00% | 8.00% |")
	assert.Contains(t, md, "| 2024 | -2.00% | - |")
	assert.Contains(t, md, "**Managers**: Chen")
	assert.Contains(t, md, "9,123,455,000 (2024-06-28)")
	assert.Contains(t, md, "| Management fee | 0.5 |")
	assert.Contains(t, md, "- indicator:CCI: boom")
	assert.Contains(t, md, "_run run-42_")

	// MACD is listed before RSI, following the catalog
	assert.Less(t, strings.Index(md, "| MACD |"), strings.Index(md, "| RSI |"))
}

func TestAnalysisReportWithoutOptionalParts(t *testing.T) {
	a := sampleAnalysis()
	a.Profile = nil
	a.Performance.Beta = nil
	a.Performance.Annualized = false
	a.Crosses = models.Crosses{}
	a.Errors = nil
	md := Analysis(a)

	assert.True(t, strings.HasPrefix(md, "# 510300.SH\n"))
	assert.NotContains(t, md, "| Beta |")
	assert.Contains(t, md, "(not annualized)")
	assert.Contains(t, md, "No crosses in the period.")
	assert.NotContains(t, md, "## Profile")
	assert.NotContains(t, md, "## Notes")
}

func TestProfileReport(t *testing.T) {
	md := Profile(&models.FundProfile{Code: "110011.OF"})
	assert.Contains(t, md, "# 110011.OF")
	assert.Contains(t, md, "No static information available.")
}
