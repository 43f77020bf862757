// Package report renders analysis results as markdown for terminals and files.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"FundLens/internal/domain/models"
	"FundLens/internal/services/series"
)

const dateLayout = "2006-01-02"

// maxCrossRows caps the crossover table to the most recent events.
const maxCrossRows = 10

// Analysis renders a full analysis run.
func Analysis(a *models.Analysis) string {
	var b strings.Builder
	title := a.Code
	if name := a.Profile.Name(); name != "" {
		title = fmt.Sprintf("%s (%s)", name, a.Code)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Period **%s** to **%s**", a.Start.Format(dateLayout), a.End.Format(dateLayout))
	if a.Benchmark != "" {
		fmt.Fprintf(&b, ", benchmark `%s`", a.Benchmark)
	}
	if a.Table != nil && a.Table.Series != nil {
		fmt.Fprintf(&b, ", %s observations", humanize.Comma(int64(a.Table.Series.Len())))
	}
	fmt.Fprintf(&b, ". Windows %d/%d, RSI %d.\n\n", a.Config.ShortWindow, a.Config.LongWindow, a.Config.RSIWindow)

	writePerformance(&b, a.Performance)
	writeSignals(&b, a.Signals)
	writeCrosses(&b, a.Crosses)
	writeYearly(&b, a.YearlyReturns)
	if a.Profile != nil {
		writeProfileBody(&b, a.Profile, "##")
	}
	writeNotes(&b, a)
	fmt.Fprintf(&b, "\n_run %s_\n", a.RunID)
	return b.String()
}

// Profile renders static fund information on its own.
func Profile(p *models.FundProfile) string {
	var b strings.Builder
	title := p.Code
	if name := p.Name(); name != "" {
		title = fmt.Sprintf("%s (%s)", name, p.Code)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	writeProfileBody(&b, p, "##")
	return b.String()
}

func writePerformance(b *strings.Builder, m models.PerformanceMetrics) {
	b.WriteString("## Performance\n\n| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(b, "| Total return | %s |\n", pct(m.TotalReturn))
	annual := pct(m.AnnualReturn)
	if !m.Annualized {
		annual += " (not annualized)"
	}
	fmt.Fprintf(b, "| Annual return | %s |\n", annual)
	fmt.Fprintf(b, "| Annual volatility | %s |\n", pct(m.AnnualVolatility))
	fmt.Fprintf(b, "| Max drawdown | %s |\n", pct(m.MaxDrawdown))
	fmt.Fprintf(b, "| Sharpe ratio | %.2f |\n", m.SharpeRatio)
	fmt.Fprintf(b, "| Calmar ratio | %.2f |\n", m.CalmarRatio)
	if m.HasBenchmark() {
		fmt.Fprintf(b, "| Beta | %.2f |\n", *m.Beta)
		if m.InformationRatio != nil {
			fmt.Fprintf(b, "| Information ratio | %.2f |\n", *m.InformationRatio)
		}
		if m.TrackingError != nil {
			fmt.Fprintf(b, "| Tracking error | %s |\n", pct(*m.TrackingError))
		}
	}
	b.WriteString("\n")
}

func writeSignals(b *strings.Builder, s models.SignalSummary) {
	fmt.Fprintf(b, "## Signals\n\nOverall **%s**, risk **%s** (%d bullish, %d bearish).\n\n",
		s.Overall, s.RiskTier, s.BullishCount, s.BearishCount)
	if s.Suggestion != "" {
		fmt.Fprintf(b, "> %s\n\n", s.Suggestion)
	}
	if len(s.PerIndicator) > 0 {
		b.WriteString("| Indicator | Signal | Vote | Reading |\n|---|---|---:|---|\n")
		for _, name := range models.Catalog() {
			sig, ok := s.PerIndicator[name]
			if !ok {
				continue
			}
			fmt.Fprintf(b, "| %s | %s | %+d | %s |\n", name, sig.Label, int(sig.Vote), escape(sig.Rationale))
		}
		b.WriteString("\n")
	}
	for _, f := range s.RiskFlags {
		fmt.Fprintf(b, "- %s\n", f)
	}
	if len(s.RiskFlags) > 0 {
		b.WriteString("\n")
	}
}

func writeCrosses(b *strings.Builder, c models.Crosses) {
	events := c.Events()
	b.WriteString("## Moving average crosses\n\n")
	if len(events) == 0 {
		b.WriteString("No crosses in the period.\n\n")
		return
	}
	fmt.Fprintf(b, "%d golden, %d death.\n\n| Date | Kind |\n|---|---|\n", len(c.Golden), len(c.Death))
	if len(events) > maxCrossRows {
		events = events[len(events)-maxCrossRows:]
	}
	for i := len(events) - 1; i >= 0; i-- {
		fmt.Fprintf(b, "| %s | %s |\n", events[i].Date.Format(dateLayout), events[i].Kind)
	}
	b.WriteString("\n")
}

func writeYearly(b *strings.Builder, ys []models.YearlyReturn) {
	if len(ys) == 0 {
		return
	}
	b.WriteString("## Calendar years\n\n| Year | Fund | Benchmark |\n|---|---:|---:|\n")
	for _, y := range ys {
		bench := "-"
		if y.Benchmark != nil {
			bench = pct(*y.Benchmark)
		}
		fmt.Fprintf(b, "| %d | %s | %s |\n", y.Year, pct(y.Fund), bench)
	}
	b.WriteString("\n")
}

// basicFields are the fund_basic columns worth showing, in display order.
var basicFields = []struct{ key, label string }{
	{"fund_type", "Type"},
	{"invest_type", "Strategy"},
	{"management", "Manager company"},
	{"custodian", "Custodian"},
	{"found_date", "Founded"},
	{"benchmark", "Benchmark"},
	{"m_fee", "Management fee"},
	{"c_fee", "Custody fee"},
	{"status", "Status"},
}

func writeProfileBody(b *strings.Builder, p *models.FundProfile, h string) {
	fmt.Fprintf(b, "%s Profile\n\n", h)
	if len(p.Basic) == 0 && len(p.Managers) == 0 && len(p.Shares) == 0 && len(p.Dividends) == 0 {
		b.WriteString("No static information available.\n\n")
		return
	}
	if len(p.Basic) > 0 {
		b.WriteString("| Field | Value |\n|---|---|\n")
		for _, f := range basicFields {
			if v := text(p.Basic[f.key]); v != "" {
				fmt.Fprintf(b, "| %s | %s |\n", f.label, escape(v))
			}
		}
		b.WriteString("\n")
	}
	if managers := currentManagers(p.Managers); len(managers) > 0 {
		fmt.Fprintf(b, "**Managers**: %s\n\n", strings.Join(managers, ", "))
	}
	if share, date, ok := latestShare(p.Shares); ok {
		// fund_share reports in units of 10k shares.
		fmt.Fprintf(b, "**Shares**: %s (%s)\n\n", humanize.Commaf(share*1e4), date)
	}
	if len(p.Dividends) > 0 {
		fmt.Fprintf(b, "**Dividends**: %d distributions", len(p.Dividends))
		if last := text(p.Dividends[0]["ex_date"]); last != "" {
			fmt.Fprintf(b, ", latest ex-date %s", last)
		}
		b.WriteString("\n\n")
	}
}

func writeNotes(b *strings.Builder, a *models.Analysis) {
	var notes []string
	notes = append(notes, a.Performance.Warnings...)
	if a.Table != nil {
		if a.Table.SyntheticVolumeUsed {
			notes = append(notes, "volume-based indicators used a constant synthetic volume")
		}
		for name, msg := range a.Table.Failures {
			notes = append(notes, fmt.Sprintf("%s failed: %s", name, msg))
		}
	}
	for k, v := range a.Errors {
		notes = append(notes, fmt.Sprintf("%s: %s", k, v))
	}
	if len(notes) == 0 {
		return
	}
	sort.Strings(notes[len(a.Performance.Warnings):])
	b.WriteString("## Notes\n\n")
	for _, n := range notes {
		fmt.Fprintf(b, "- %s\n", escape(n))
	}
}

// currentManagers lists managers without an end date, falling back to everyone listed.
func currentManagers(rows []models.RawRecord) []string {
	var current, all []string
	seen := map[string]bool{}
	for _, r := range rows {
		name := text(r["name"])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		all = append(all, name)
		if text(r["end_date"]) == "" {
			current = append(current, name)
		}
	}
	if len(current) > 0 {
		return current
	}
	return all
}

func latestShare(rows []models.RawRecord) (float64, string, bool) {
	var (
		best     float64
		bestDate time.Time
		found    bool
	)
	for _, r := range rows {
		v, ok := series.ParseNumber(r["fd_share"])
		if !ok {
			continue
		}
		d, _ := time.Parse("20060102", text(r["trade_date"]))
		if !found || d.After(bestDate) {
			best, bestDate, found = v, d, true
		}
	}
	if !found {
		return 0, "", false
	}
	if bestDate.IsZero() {
		return best, "-", true
	}
	return best, bestDate.Format(dateLayout), true
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case fmt.Stringer:
		return x.String()
	default:
		if f, ok := series.ParseNumber(v); ok {
			return humanize.Ftoa(f)
		}
		return fmt.Sprint(v)
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
