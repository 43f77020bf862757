package indicators

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"FundLens/internal/domain/models"
)

// Fixed periods of the catalog. Only the moving-average and RSI windows are configurable.
const (
	bollPeriod   = 20
	bollDev      = 2.0
	macdFast     = 12
	macdSlow     = 26
	macdSignal   = 9
	kdjPeriod    = 9
	kdjSlowK     = 3
	kdjSlowD     = 3
	cciPeriod    = 20
	dmiPeriod    = 14
	trixPeriod   = 12
	trixSignal   = 9
	atrPeriod    = 14
	mfiPeriod    = 14
	bbiMaxPeriod = 24

	// flatEpsilon is the denominator below which talib reports 0 instead of 0/0.
	flatEpsilon = 1e-14
)

func maShort(in input, cfg models.IndicatorConfig) (map[string][]float64, error) {
	return sma(in.close, cfg.ShortWindow, models.ColMAShort)
}

func maLong(in input, cfg models.IndicatorConfig) (map[string][]float64, error) {
	return sma(in.close, cfg.LongWindow, models.ColMALong)
}

func sma(close []float64, period int, col string) (map[string][]float64, error) {
	vals, err := masked(len(close), period-1, func() []float64 { return talib.Sma(close, period) })
	if err != nil {
		return nil, err
	}
	return map[string][]float64{col: vals}, nil
}

func rsi(in input, cfg models.IndicatorConfig) (map[string][]float64, error) {
	vals, err := masked(len(in.close), cfg.RSIWindow, func() []float64 { return talib.Rsi(in.close, cfg.RSIWindow) })
	if err != nil {
		return nil, err
	}
	den := wilderAbsChange(in.close, cfg.RSIWindow)
	for i := range vals {
		if !(den[i] >= flatEpsilon) {
			vals[i] = math.NaN()
		}
	}
	return map[string][]float64{models.ColRSI: vals}, nil
}

func boll(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	n, lookback := len(in.close), bollPeriod-1
	if n <= lookback {
		return map[string][]float64{
			models.ColBollUpper: nanSeries(n), models.ColBollMiddle: nanSeries(n), models.ColBollLower: nanSeries(n),
		}, nil
	}
	upper, middle, lower := talib.BBands(in.close, bollPeriod, bollDev, bollDev, talib.SMA)
	return maskAll(lookback, map[string][]float64{
		models.ColBollUpper: upper, models.ColBollMiddle: middle, models.ColBollLower: lower,
	})
}

// macd builds DIF from two EMAs and DEA as the EMA of the defined part of DIF.
func macd(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	n := len(in.close)
	difLookback := macdSlow - 1
	deaLookback := difLookback + macdSignal - 1
	dif, dea, hist := nanSeries(n), nanSeries(n), nanSeries(n)
	if n > difLookback {
		fast := talib.Ema(in.close, macdFast)
		slow := talib.Ema(in.close, macdSlow)
		for i := difLookback; i < n; i++ {
			dif[i] = fast[i] - slow[i]
		}
	}
	if n > deaLookback {
		sig := talib.Ema(dif[difLookback:], macdSignal)
		for i := deaLookback; i < n; i++ {
			dea[i] = sig[i-difLookback]
			hist[i] = dif[i] - dea[i]
		}
	}
	cols := map[string][]float64{models.ColMACDDif: dif, models.ColMACDDea: dea, models.ColMACDHist: hist}
	return cols, checkFinite(cols)
}

func kdj(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	n := len(in.close)
	lookback := (kdjPeriod - 1) + (kdjSlowK - 1) + (kdjSlowD - 1)
	if n <= lookback {
		return map[string][]float64{models.ColKDJK: nanSeries(n), models.ColKDJD: nanSeries(n), models.ColKDJJ: nanSeries(n)}, nil
	}
	k, d := talib.Stoch(in.high, in.low, in.close, kdjPeriod, kdjSlowK, talib.SMA, kdjSlowD, talib.SMA)
	j := make([]float64, n)
	for i := range j {
		j[i] = 3*k[i] - 2*d[i]
	}
	cols, err := maskAll(lookback, map[string][]float64{models.ColKDJK: k, models.ColKDJD: d, models.ColKDJJ: j})
	if err != nil {
		return nil, err
	}
	// fast %K is 0/0 where the window high equals the window low; K and D average it
	flat := flatRange(in.high, in.low, kdjPeriod)
	for i := lookback; i < n; i++ {
		if anyIn(flat, i-(kdjSlowK-1), i) {
			cols[models.ColKDJK][i] = math.NaN()
		}
		if anyIn(flat, i-(kdjSlowK-1)-(kdjSlowD-1), i) {
			cols[models.ColKDJD][i] = math.NaN()
			cols[models.ColKDJJ][i] = math.NaN()
		}
	}
	return cols, nil
}

func cci(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	vals, err := masked(len(in.close), cciPeriod-1, func() []float64 { return talib.Cci(in.high, in.low, in.close, cciPeriod) })
	if err != nil {
		return nil, err
	}
	// zero mean deviation when every typical price in the window is equal
	tp := typicalPrices(in)
	for i := cciPeriod - 1; i < len(vals); i++ {
		lo, hi := minMax(tp[i-cciPeriod+1 : i+1])
		if lo == hi {
			vals[i] = math.NaN()
		}
	}
	return map[string][]float64{models.ColCCI: vals}, nil
}

func dmi(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	n := len(in.close)
	plus, err := masked(n, dmiPeriod, func() []float64 { return talib.PlusDI(in.high, in.low, in.close, dmiPeriod) })
	if err != nil {
		return nil, fmt.Errorf("+DI: %w", err)
	}
	minus, err := masked(n, dmiPeriod, func() []float64 { return talib.MinusDI(in.high, in.low, in.close, dmiPeriod) })
	if err != nil {
		return nil, fmt.Errorf("-DI: %w", err)
	}
	adx, err := masked(n, 2*dmiPeriod-1, func() []float64 { return talib.Adx(in.high, in.low, in.close, dmiPeriod) })
	if err != nil {
		return nil, fmt.Errorf("ADX: %w", err)
	}
	tr := wilderTrueRange(in, dmiPeriod)
	for i := range plus {
		if !(tr[i] >= flatEpsilon) {
			plus[i], minus[i], adx[i] = math.NaN(), math.NaN(), math.NaN()
		}
	}
	return map[string][]float64{models.ColDMIPlus: plus, models.ColDMIMinus: minus, models.ColADX: adx}, nil
}

// bbi averages the 3, 6, 12 and 24 period SMAs.
func bbi(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	vals, err := masked(len(in.close), bbiMaxPeriod-1, func() []float64 {
		out := make([]float64, len(in.close))
		for _, p := range []int{3, 6, 12, bbiMaxPeriod} {
			ma := talib.Sma(in.close, p)
			for i := range out {
				out[i] += ma[i] / 4
			}
		}
		return out
	})
	if err != nil {
		return nil, err
	}
	return map[string][]float64{models.ColBBI: vals}, nil
}

// trix is the one-period percent rate of change of a triple EMA, with an SMA signal line.
func trix(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	n := len(in.close)
	emaLookback := trixPeriod - 1
	trixLookback := 3*emaLookback + 1
	signalLookback := trixLookback + trixSignal - 1
	line, signal := nanSeries(n), nanSeries(n)
	if n > trixLookback {
		triple := make([]float64, n)
		e1 := talib.Ema(in.close, trixPeriod)
		e2 := talib.Ema(e1[emaLookback:], trixPeriod)
		e3 := talib.Ema(e2[emaLookback:], trixPeriod)
		copy(triple[2*emaLookback:], e3)
		roc := talib.Roc(triple, 1)
		copy(line[trixLookback:], roc[trixLookback:])
	}
	if n > signalLookback {
		sig := talib.Sma(line[trixLookback:], trixSignal)
		copy(signal[signalLookback:], sig[trixSignal-1:])
	}
	cols := map[string][]float64{models.ColTRIX: line, models.ColTRIXSignal: signal}
	return cols, checkFinite(cols)
}

func atr(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	vals, err := masked(len(in.close), atrPeriod, func() []float64 { return talib.Atr(in.high, in.low, in.close, atrPeriod) })
	if err != nil {
		return nil, err
	}
	return map[string][]float64{models.ColATR: vals}, nil
}

func obv(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	vals, err := masked(len(in.close), 0, func() []float64 { return talib.Obv(in.close, in.volume) })
	if err != nil {
		return nil, err
	}
	return map[string][]float64{models.ColOBV: vals}, nil
}

// mfi is 100·pos/(pos+neg) over the raw money flow of the trailing window ending at i.
// A window with no money flow is undefined.
func mfi(in input, _ models.IndicatorConfig) (map[string][]float64, error) {
	n := len(in.close)
	out := nanSeries(n)
	if n <= mfiPeriod {
		return map[string][]float64{models.ColMFI: out}, nil
	}
	tp := typicalPrices(in)
	pos, neg := make([]float64, n), make([]float64, n)
	for i := 1; i < n; i++ {
		flow := tp[i] * in.volume[i]
		switch {
		case tp[i] > tp[i-1]:
			pos[i] = flow
		case tp[i] < tp[i-1]:
			neg[i] = flow
		}
	}
	for i := mfiPeriod; i < n; i++ {
		var p, m float64
		for j := i - mfiPeriod + 1; j <= i; j++ {
			p += pos[j]
			m += neg[j]
		}
		if p+m > 0 {
			out[i] = 100 * p / (p + m)
		}
	}
	return map[string][]float64{models.ColMFI: out}, checkFinite(map[string][]float64{models.ColMFI: out})
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// masked runs compute only when the series is longer than lookback and blanks the warm-up prefix.
func masked(n, lookback int, compute func() []float64) ([]float64, error) {
	if n <= lookback {
		return nanSeries(n), nil
	}
	return mask(compute(), lookback)
}

// mask copies vals with positions before lookback set to NaN.
// A non-finite value after the warm-up is an error.
func mask(vals []float64, lookback int) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if i < lookback {
			out[i] = math.NaN()
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite value at position %d", i)
		}
		out[i] = v
	}
	return out, nil
}

func maskAll(lookback int, cols map[string][]float64) (map[string][]float64, error) {
	out := make(map[string][]float64, len(cols))
	for name, vals := range cols {
		m, err := mask(vals, lookback)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = m
	}
	return out, nil
}

// checkFinite rejects infinities; NaN marks warm-up positions in pre-masked columns.
func checkFinite(cols map[string][]float64) error {
	for name, vals := range cols {
		for i, v := range vals {
			if math.IsInf(v, 0) {
				return fmt.Errorf("%s: infinite value at position %d", name, i)
			}
		}
	}
	return nil
}

func typicalPrices(in input) []float64 {
	tp := make([]float64, len(in.close))
	for i := range tp {
		tp[i] = (in.high[i] + in.low[i] + in.close[i]) / 3
	}
	return tp
}

func minMax(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}

// flatRange marks positions whose trailing window has equal highest high and lowest low.
func flatRange(high, low []float64, period int) []bool {
	flat := make([]bool, len(high))
	for i := period - 1; i < len(high); i++ {
		_, hh := minMax(high[i-period+1 : i+1])
		ll, _ := minMax(low[i-period+1 : i+1])
		flat[i] = hh == ll
	}
	return flat
}

func anyIn(flags []bool, from, to int) bool {
	for i := max(from, 0); i <= to && i < len(flags); i++ {
		if flags[i] {
			return true
		}
	}
	return false
}

// wilderAbsChange is the Wilder average of absolute price changes, the avg gain + avg loss
// denominator of talib.Rsi. NaN during warm-up.
func wilderAbsChange(close []float64, period int) []float64 {
	out := nanSeries(len(close))
	if len(close) <= period {
		return out
	}
	avg := 0.0
	for i := 1; i <= period; i++ {
		avg += math.Abs(close[i] - close[i-1])
	}
	avg /= float64(period)
	out[period] = avg
	for i := period + 1; i < len(close); i++ {
		avg = (avg*float64(period-1) + math.Abs(close[i]-close[i-1])) / float64(period)
		out[i] = avg
	}
	return out
}

// wilderTrueRange is the smoothed true-range sum that divides talib's +DI and -DI. NaN during warm-up.
func wilderTrueRange(in input, period int) []float64 {
	n := len(in.close)
	out := nanSeries(n)
	if n <= period {
		return out
	}
	trueRange := func(i int) float64 {
		r := in.high[i] - in.low[i]
		r = math.Max(r, math.Abs(in.high[i]-in.close[i-1]))
		return math.Max(r, math.Abs(in.low[i]-in.close[i-1]))
	}
	sum := 0.0
	for i := 1; i < period; i++ {
		sum += trueRange(i)
	}
	for i := period; i < n; i++ {
		sum = sum - sum/float64(period) + trueRange(i)
		out[i] = sum
	}
	return out
}
