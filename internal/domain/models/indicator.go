package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// IndicatorName identifies one entry of the indicator catalog.
type IndicatorName string

const (
	IndicatorMAShort IndicatorName = "MA_SHORT"
	IndicatorMALong  IndicatorName = "MA_LONG"
	IndicatorRSI     IndicatorName = "RSI"
	IndicatorBOLL    IndicatorName = "BOLL"
	IndicatorMACD    IndicatorName = "MACD"
	IndicatorKDJ     IndicatorName = "KDJ"
	IndicatorCCI     IndicatorName = "CCI"
	IndicatorDMI     IndicatorName = "DMI"
	IndicatorBBI     IndicatorName = "BBI"
	IndicatorTRIX    IndicatorName = "TRIX"
	IndicatorATR     IndicatorName = "ATR"
	IndicatorOBV     IndicatorName = "OBV"
	IndicatorMFI     IndicatorName = "MFI"
)

// Column names written into an IndicatorTable.
const (
	ColMAShort    = "MA_SHORT"
	ColMALong     = "MA_LONG"
	ColRSI        = "RSI"
	ColBollUpper  = "BOLL_UPPER"
	ColBollMiddle = "BOLL_MIDDLE"
	ColBollLower  = "BOLL_LOWER"
	ColMACDDif    = "MACD_DIF"
	ColMACDDea    = "MACD_DEA"
	ColMACDHist   = "MACD_HIST"
	ColKDJK       = "KDJ_K"
	ColKDJD       = "KDJ_D"
	ColKDJJ       = "KDJ_J"
	ColCCI        = "CCI"
	ColDMIPlus    = "DMI_PLUS"
	ColDMIMinus   = "DMI_MINUS"
	ColADX        = "DMI_ADX"
	ColBBI        = "BBI"
	ColTRIX       = "TRIX"
	ColTRIXSignal = "TRIX_SIGNAL"
	ColATR        = "ATR"
	ColOBV        = "OBV"
	ColMFI        = "MFI"
)

// Catalog lists every supported indicator in display order.
func Catalog() []IndicatorName {
	return []IndicatorName{
		IndicatorMAShort, IndicatorMALong, IndicatorRSI, IndicatorBOLL, IndicatorMACD, IndicatorKDJ,
		IndicatorCCI, IndicatorDMI, IndicatorBBI, IndicatorTRIX, IndicatorATR, IndicatorOBV, IndicatorMFI,
	}
}

// ParseIndicators turns a comma separated list into catalog names. Unknown entries are returned separately.
func ParseIndicators(csv string) (known []IndicatorName, unknown []string) {
	valid := make(map[IndicatorName]bool)
	for _, n := range Catalog() {
		valid[n] = true
	}
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if valid[IndicatorName(part)] {
			known = append(known, IndicatorName(part))
		} else {
			unknown = append(unknown, part)
		}
	}
	return known, unknown
}

// IndicatorConfig holds the user-tunable windows.
type IndicatorConfig struct {
	ShortWindow int `json:"short_window"`
	LongWindow  int `json:"long_window"`
	RSIWindow   int `json:"rsi_window"`
}

// DefaultIndicatorConfig returns 20/60/14.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{ShortWindow: 20, LongWindow: 60, RSIWindow: 14}
}

func (c IndicatorConfig) Validate() error {
	if c.ShortWindow < 2 {
		return fmt.Errorf("%w: short window %d < 2", ErrInvalidConfig, c.ShortWindow)
	}
	if c.ShortWindow >= c.LongWindow {
		return fmt.Errorf("%w: short window %d must be below long window %d", ErrInvalidConfig, c.ShortWindow, c.LongWindow)
	}
	if c.RSIWindow < 2 {
		return fmt.Errorf("%w: rsi window %d < 2", ErrInvalidConfig, c.RSIWindow)
	}
	return nil
}

// IndicatorTable is the series plus one value column per computed output, NaN where undefined.
type IndicatorTable struct {
	Series              *CanonicalSeries
	Config              IndicatorConfig
	Columns             map[string][]float64
	Computed            []IndicatorName
	Failures            map[IndicatorName]string
	SyntheticVolumeUsed bool
}

func NewIndicatorTable(s *CanonicalSeries, cfg IndicatorConfig) *IndicatorTable {
	return &IndicatorTable{
		Series:   s,
		Config:   cfg,
		Columns:  make(map[string][]float64),
		Failures: make(map[IndicatorName]string),
	}
}

// Column returns a column by name.
func (t *IndicatorTable) Column(name string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.Columns[name]
	return c, ok
}

// Latest returns the last value of a column; ok is false when the column is absent or the value undefined.
func (t *IndicatorTable) Latest(name string) (float64, bool) {
	c, ok := t.Column(name)
	if !ok || len(c) == 0 {
		return 0, false
	}
	v := c[len(c)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Has reports whether the indicator was computed successfully.
func (t *IndicatorTable) Has(name IndicatorName) bool {
	if t == nil {
		return false
	}
	for _, n := range t.Computed {
		if n == name {
			return true
		}
	}
	return false
}

type indicatorTableJSON struct {
	Dates               []time.Time              `json:"dates"`
	Price               []float64                `json:"price"`
	Columns             map[string][]*float64    `json:"columns"`
	Computed            []IndicatorName          `json:"computed"`
	Failures            map[IndicatorName]string `json:"failures,omitempty"`
	SyntheticVolumeUsed bool                     `json:"synthetic_volume_used"`
	Config              IndicatorConfig          `json:"config"`
}

// MarshalJSON encodes undefined values as null.
func (t *IndicatorTable) MarshalJSON() ([]byte, error) {
	out := indicatorTableJSON{
		Dates:               t.Series.Dates(),
		Price:               t.Series.Prices(),
		Columns:             make(map[string][]*float64, len(t.Columns)),
		Computed:            t.Computed,
		Failures:            t.Failures,
		SyntheticVolumeUsed: t.SyntheticVolumeUsed,
		Config:              t.Config,
	}
	for name, col := range t.Columns {
		out.Columns[name] = NullableFloats(col)
	}
	return json.Marshal(out)
}

// NullableFloats maps NaN and Inf to nil pointers.
func NullableFloats(in []float64) []*float64 {
	out := make([]*float64, len(in))
	for i := range in {
		if math.IsNaN(in[i]) || math.IsInf(in[i], 0) {
			continue
		}
		v := in[i]
		out[i] = &v
	}
	return out
}
