package series

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"FundLens/internal/domain/models"
	"FundLens/pkg/util"
)

// Field priorities. The first present field wins.
var (
	DateFields   = []string{"ann_date", "trade_date"}
	PriceFields  = []string{"unit_nav", "adj_nav", "close"}
	VolumeFields = []string{"vol", "volume"}
)

type row struct {
	date   time.Time
	price  float64
	high   float64
	low    float64
	volume float64
	// rangeOK and volOK are false when the optional field is missing or unparseable
	rangeOK bool
	volOK   bool
}

// Normalize converts vendor rows into a canonical series: schema resolution, numeric coercion,
// stable date sort, removal of invalid rows and duplicate dates, then cumulative values.
func Normalize(raw []models.RawRecord) (*models.CanonicalSeries, error) {
	if len(raw) == 0 {
		return nil, models.ErrEmptySeries
	}
	dateField := firstPresent(raw, DateFields)
	if dateField == "" {
		return nil, &models.ColumnError{Role: "date", Candidates: DateFields}
	}
	priceField := firstPresent(raw, PriceFields)
	if priceField == "" {
		return nil, &models.ColumnError{Role: "price", Candidates: PriceFields}
	}
	hasRange := firstPresent(raw, []string{"high"}) != "" && firstPresent(raw, []string{"low"}) != ""
	volField := firstPresent(raw, VolumeFields)

	rows := make([]row, 0, len(raw))
	for _, rec := range raw {
		d, okDate := parseDateValue(rec[dateField])
		p, okPrice := parsePositive(rec[priceField])
		if !okDate || !okPrice {
			continue
		}
		r := row{date: d, price: p}
		if hasRange {
			h, okH := parsePositive(rec["high"])
			l, okL := parsePositive(rec["low"])
			r.high, r.low, r.rangeOK = h, l, okH && okL
		}
		if volField != "" {
			v, okV := ParseNumber(rec[volField])
			r.volume, r.volOK = v, okV && v >= 0
		}
		rows = append(rows, r)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	rows = dedupeLastWins(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no parseable rows in %d records", models.ErrEmptySeries, len(raw))
	}

	out := &models.CanonicalSeries{
		DateField:  dateField,
		PriceField: priceField,
		HasRange:   hasRange,
		HasVolume:  volField != "",
		Points:     make([]models.Point, len(rows)),
	}
	base := rows[0].price
	for i, r := range rows {
		out.HasRange = out.HasRange && r.rangeOK
		out.HasVolume = out.HasVolume && r.volOK
		out.Points[i] = models.Point{Date: r.date, Price: r.price, Cumulative: r.price / base}
	}
	for i, r := range rows {
		if out.HasRange {
			out.Points[i].High, out.Points[i].Low = r.high, r.low
		}
		if out.HasVolume {
			out.Points[i].Volume = r.volume
		}
	}
	out.Points[0].Cumulative = 1.0
	return out, nil
}

func firstPresent(raw []models.RawRecord, candidates []string) string {
	for _, c := range candidates {
		for _, rec := range raw {
			if _, ok := rec[c]; ok {
				return c
			}
		}
	}
	return ""
}

// dedupeLastWins keeps the last row of every run of equal dates. Input must be sorted.
func dedupeLastWins(rows []row) []row {
	out := rows[:0]
	for i := range rows {
		if i+1 < len(rows) && rows[i+1].date.Equal(rows[i].date) {
			continue
		}
		out = append(out, rows[i])
	}
	return out
}

func parseDateValue(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		return util.ParseDate(strings.TrimSpace(x))
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return util.Day(x), true
	case json.Number:
		return util.ParseDate(x.String())
	case float64:
		if x <= 0 || x != math.Trunc(x) {
			return time.Time{}, false
		}
		return util.ParseDate(strconv.FormatInt(int64(x), 10))
	case int:
		return util.ParseDate(strconv.Itoa(x))
	case int64:
		return util.ParseDate(strconv.FormatInt(x, 10))
	default:
		return time.Time{}, false
	}
}

func parsePositive(v any) (float64, bool) {
	f, ok := ParseNumber(v)
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}

// ParseNumber coerces vendor values. Anything non-numeric or non-finite is undefined.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
