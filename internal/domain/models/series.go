package models

import "time"

// RawRecord is one vendor row keyed by field name.
type RawRecord map[string]any

// Point is one observation of a canonical series.
// High, Low and Volume are only meaningful when the owning series reports HasRange / HasVolume.
type Point struct {
	Date       time.Time `json:"date"`
	Price      float64   `json:"price"`
	Cumulative float64   `json:"cumulative"`
	High       float64   `json:"high,omitempty"`
	Low        float64   `json:"low,omitempty"`
	Volume     float64   `json:"volume,omitempty"`
}

// CanonicalSeries is a date-ascending, duplicate-free price series with cumulative values
// relative to the first point.
type CanonicalSeries struct {
	Code       string  `json:"code,omitempty"`
	DateField  string  `json:"date_field"`
	PriceField string  `json:"price_field"`
	HasRange   bool    `json:"has_range"`
	HasVolume  bool    `json:"has_volume"`
	Points     []Point `json:"points"`
}

func (s *CanonicalSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

func (s *CanonicalSeries) Dates() []time.Time {
	out := make([]time.Time, s.Len())
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

func (s *CanonicalSeries) Prices() []float64 {
	out := make([]float64, s.Len())
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

func (s *CanonicalSeries) Cumulative() []float64 {
	out := make([]float64, s.Len())
	for i, p := range s.Points {
		out[i] = p.Cumulative
	}
	return out
}

// Highs returns the high series, or the prices when no range data is present.
func (s *CanonicalSeries) Highs() []float64 {
	if !s.HasRange {
		return s.Prices()
	}
	out := make([]float64, s.Len())
	for i, p := range s.Points {
		out[i] = p.High
	}
	return out
}

// Lows returns the low series, or the prices when no range data is present.
func (s *CanonicalSeries) Lows() []float64 {
	if !s.HasRange {
		return s.Prices()
	}
	out := make([]float64, s.Len())
	for i, p := range s.Points {
		out[i] = p.Low
	}
	return out
}

// Volumes returns the volume series and false, or a constant fallback and true when the
// series carries no volume.
func (s *CanonicalSeries) Volumes(fallback float64) ([]float64, bool) {
	out := make([]float64, s.Len())
	for i, p := range s.Points {
		if s.HasVolume {
			out[i] = p.Volume
		} else {
			out[i] = fallback
		}
	}
	return out, !s.HasVolume
}

// Last returns the final point.
func (s *CanonicalSeries) Last() (Point, bool) {
	if s.Len() == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Records re-emits the series as vendor rows using its own field names.
func (s *CanonicalSeries) Records() []RawRecord {
	out := make([]RawRecord, 0, s.Len())
	for _, p := range s.Points {
		r := RawRecord{
			s.DateField:  p.Date.Format("20060102"),
			s.PriceField: p.Price,
		}
		if s.HasRange {
			r["high"] = p.High
			r["low"] = p.Low
		}
		if s.HasVolume {
			r["vol"] = p.Volume
		}
		out = append(out, r)
	}
	return out
}
