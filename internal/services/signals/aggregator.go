package signals

import (
	"fmt"
	"math"

	"FundLens/internal/domain/models"
)

// Thresholds of the rule table.
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
	KDJHigh       = 80.0
	KDJLow        = 20.0
	CCIHigh       = 100.0
	CCILow        = -100.0
	ADXTrending   = 25.0
	MFIHigh       = 80.0
	MFILow        = 20.0
	// RSIExtreme is the distance from 50 that raises a risk flag.
	RSIExtreme = 30.0
	// ATRHigh is an absolute threshold in price units.
	ATRHigh = 0.02
)

type rule func(t *models.IndicatorTable, price float64) (models.IndicatorSignal, bool)

// voting lists the indicators that take part in the overall verdict, in display order.
var voting = []struct {
	name models.IndicatorName
	eval rule
}{
	{models.IndicatorMACD, macdRule},
	{models.IndicatorRSI, rsiRule},
	{models.IndicatorKDJ, kdjRule},
	{models.IndicatorBOLL, bollRule},
	{models.IndicatorCCI, cciRule},
	{models.IndicatorDMI, dmiRule},
	{models.IndicatorMFI, mfiRule},
	{models.IndicatorBBI, bbiRule},
	{models.IndicatorTRIX, trixRule},
}

var suggestions = map[models.SignalLabel]string{
	models.LabelBullish: "Most indicators lean bullish; the trend is constructive. Consider holding or adding gradually.",
	models.LabelBearish: "Most indicators lean bearish; the trend is weak. Consider reducing exposure and watching for a reversal.",
	models.LabelNeutral: "Indicators are mixed; no clear trend. Consider waiting for a clearer signal.",
}

// Summarize applies the rule table to the latest row of the table.
// Indicators that were not computed are absent; an undefined latest value yields insufficient_data.
func Summarize(t *models.IndicatorTable) models.SignalSummary {
	sum := models.SignalSummary{PerIndicator: make(map[models.IndicatorName]models.IndicatorSignal)}
	price := math.NaN()
	if t != nil {
		if p, ok := t.Series.Last(); ok {
			price = p.Price
		}
	}
	for _, v := range voting {
		if !t.Has(v.name) {
			continue
		}
		sig, ok := v.eval(t, price)
		if !ok {
			sig = models.IndicatorSignal{Label: models.LabelInsufficientData, Rationale: "latest value undefined"}
		}
		sum.PerIndicator[v.name] = sig
		switch sig.Vote {
		case models.VoteBullish:
			sum.BullishCount++
		case models.VoteBearish:
			sum.BearishCount++
		}
	}
	switch {
	case sum.BullishCount > sum.BearishCount:
		sum.Overall = models.LabelBullish
	case sum.BearishCount > sum.BullishCount:
		sum.Overall = models.LabelBearish
	default:
		sum.Overall = models.LabelNeutral
	}
	sum.RiskFlags = riskFlags(t)
	switch len(sum.RiskFlags) {
	case 0:
		sum.RiskTier = models.RiskLow
	case 1:
		sum.RiskTier = models.RiskMedium
	default:
		sum.RiskTier = models.RiskHigh
	}
	sum.Suggestion = suggestions[sum.Overall]
	return sum
}

func riskFlags(t *models.IndicatorTable) []string {
	var flags []string
	if v, ok := t.Latest(models.ColRSI); ok && math.Abs(v-50) > RSIExtreme {
		flags = append(flags, fmt.Sprintf("RSI %.1f is extreme", v))
	}
	if v, ok := t.Latest(models.ColATR); ok && v > ATRHigh {
		flags = append(flags, fmt.Sprintf("ATR %.4f above %.2f", v, ATRHigh))
	}
	return flags
}

func latest(t *models.IndicatorTable, cols ...string) ([]float64, bool) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, ok := t.Latest(c)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func bull(label models.SignalLabel, format string, args ...any) models.IndicatorSignal {
	return models.IndicatorSignal{Label: label, Vote: models.VoteBullish, Rationale: fmt.Sprintf(format, args...)}
}

func bear(label models.SignalLabel, format string, args ...any) models.IndicatorSignal {
	return models.IndicatorSignal{Label: label, Vote: models.VoteBearish, Rationale: fmt.Sprintf(format, args...)}
}

func neutral(label models.SignalLabel, format string, args ...any) models.IndicatorSignal {
	return models.IndicatorSignal{Label: label, Vote: models.VoteNone, Rationale: fmt.Sprintf(format, args...)}
}

func macdRule(t *models.IndicatorTable, _ float64) (models.IndicatorSignal, bool) {
	v, ok := latest(t, models.ColMACDDif, models.ColMACDDea, models.ColMACDHist)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	dif, dea, hist := v[0], v[1], v[2]
	switch {
	case dif > dea && hist > 0:
		return bull(models.LabelBullish, "DIF %.4f above DEA %.4f, histogram positive", dif, dea), true
	case dif < dea && hist < 0:
		return bear(models.LabelBearish, "DIF %.4f below DEA %.4f, histogram negative", dif, dea), true
	default:
		return neutral(models.LabelNeutral, "DIF %.4f, DEA %.4f", dif, dea), true
	}
}

func rsiRule(t *models.IndicatorTable, _ float64) (models.IndicatorSignal, bool) {
	v, ok := t.Latest(models.ColRSI)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	switch {
	case v > RSIOverbought:
		return bear(models.LabelOverbought, "RSI %.1f above %.0f", v, RSIOverbought), true
	case v < RSIOversold:
		return bull(models.LabelOversold, "RSI %.1f below %.0f", v, RSIOversold), true
	default:
		return neutral(models.LabelNeutral, "RSI %.1f", v), true
	}
}

func kdjRule(t *models.IndicatorTable, _ float64) (models.IndicatorSignal, bool) {
	v, ok := latest(t, models.ColKDJK, models.ColKDJD, models.ColKDJJ)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	k, d, j := v[0], v[1], v[2]
	switch {
	case k > KDJHigh && d > KDJHigh:
		return bear(models.LabelOverbought, "K %.1f and D %.1f above %.0f", k, d, KDJHigh), true
	case k < KDJLow && d < KDJLow:
		return bull(models.LabelOversold, "K %.1f and D %.1f below %.0f", k, d, KDJLow), true
	case k > d && j > 0:
		return bull(models.LabelBullish, "K %.1f above D %.1f, J %.1f", k, d, j), true
	case k < d && j < 0:
		return bear(models.LabelBearish, "K %.1f below D %.1f, J %.1f", k, d, j), true
	default:
		return neutral(models.LabelNeutral, "K %.1f, D %.1f, J %.1f", k, d, j), true
	}
}

func bollRule(t *models.IndicatorTable, price float64) (models.IndicatorSignal, bool) {
	v, ok := latest(t, models.ColBollUpper, models.ColBollMiddle, models.ColBollLower)
	if !ok || math.IsNaN(price) {
		return models.IndicatorSignal{}, false
	}
	upper, middle, lower := v[0], v[1], v[2]
	switch {
	case price > upper:
		return bear(models.LabelBreakoutUpper, "price %.4f above upper band %.4f", price, upper), true
	case price < lower:
		return bull(models.LabelBreakdownLower, "price %.4f below lower band %.4f", price, lower), true
	case price > middle:
		return bull(models.LabelStrongZone, "price %.4f above middle band %.4f", price, middle), true
	default:
		return bear(models.LabelWeakZone, "price %.4f at or below middle band %.4f", price, middle), true
	}
}

func cciRule(t *models.IndicatorTable, _ float64) (models.IndicatorSignal, bool) {
	v, ok := t.Latest(models.ColCCI)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	switch {
	case v > CCIHigh:
		return bear(models.LabelOverbought, "CCI %.1f above %.0f", v, CCIHigh), true
	case v < CCILow:
		return bull(models.LabelOversold, "CCI %.1f below %.0f", v, CCILow), true
	default:
		return neutral(models.LabelNeutral, "CCI %.1f", v), true
	}
}

func dmiRule(t *models.IndicatorTable, _ float64) (models.IndicatorSignal, bool) {
	v, ok := latest(t, models.ColDMIPlus, models.ColDMIMinus, models.ColADX)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	plus, minus, adx := v[0], v[1], v[2]
	if adx <= ADXTrending {
		return neutral(models.LabelRanging, "ADX %.1f at or below %.0f", adx, ADXTrending), true
	}
	if plus > minus {
		return bull(models.LabelUptrend, "ADX %.1f, +DI %.1f above -DI %.1f", adx, plus, minus), true
	}
	return bear(models.LabelDowntrend, "ADX %.1f, +DI %.1f not above -DI %.1f", adx, plus, minus), true
}

func mfiRule(t *models.IndicatorTable, _ float64) (models.IndicatorSignal, bool) {
	v, ok := t.Latest(models.ColMFI)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	switch {
	case v > MFIHigh:
		return bear(models.LabelOverbought, "MFI %.1f above %.0f", v, MFIHigh), true
	case v < MFILow:
		return bull(models.LabelOversold, "MFI %.1f below %.0f", v, MFILow), true
	default:
		return neutral(models.LabelNeutral, "MFI %.1f", v), true
	}
}

func bbiRule(t *models.IndicatorTable, price float64) (models.IndicatorSignal, bool) {
	v, ok := t.Latest(models.ColBBI)
	if !ok || math.IsNaN(price) {
		return models.IndicatorSignal{}, false
	}
	if price > v {
		return bull(models.LabelBullish, "price %.4f above BBI %.4f", price, v), true
	}
	return bear(models.LabelBearish, "price %.4f at or below BBI %.4f", price, v), true
}

func trixRule(t *models.IndicatorTable, _ float64) (models.IndicatorSignal, bool) {
	v, ok := t.Latest(models.ColTRIX)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	if v > 0 {
		return bull(models.LabelBullish, "TRIX %.4f above zero", v), true
	}
	return bear(models.LabelBearish, "TRIX %.4f at or below zero", v), true
}
