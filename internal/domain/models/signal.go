package models

import (
	"sort"
	"time"
)

type CrossKind string

const (
	CrossGolden CrossKind = "golden"
	CrossDeath  CrossKind = "death"
)

type CrossEvent struct {
	Date time.Time `json:"date"`
	Kind CrossKind `json:"kind"`
}

// Crosses holds moving-average crossover dates in chronological order.
type Crosses struct {
	Golden []time.Time `json:"golden"`
	Death  []time.Time `json:"death"`
}

// Events merges both lists into one chronological slice.
func (c Crosses) Events() []CrossEvent {
	out := make([]CrossEvent, 0, len(c.Golden)+len(c.Death))
	for _, d := range c.Golden {
		out = append(out, CrossEvent{Date: d, Kind: CrossGolden})
	}
	for _, d := range c.Death {
		out = append(out, CrossEvent{Date: d, Kind: CrossDeath})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type SignalLabel string

const (
	LabelBullish          SignalLabel = "bullish"
	LabelBearish          SignalLabel = "bearish"
	LabelNeutral          SignalLabel = "neutral"
	LabelOverbought       SignalLabel = "overbought"
	LabelOversold         SignalLabel = "oversold"
	LabelBreakoutUpper    SignalLabel = "breakout_upper"
	LabelBreakdownLower   SignalLabel = "breakdown_lower"
	LabelStrongZone       SignalLabel = "strong_zone"
	LabelWeakZone         SignalLabel = "weak_zone"
	LabelUptrend          SignalLabel = "uptrend"
	LabelDowntrend        SignalLabel = "downtrend"
	LabelRanging          SignalLabel = "ranging"
	LabelInsufficientData SignalLabel = "insufficient_data"
)

type Vote int

const (
	VoteBearish Vote = -1
	VoteNone    Vote = 0
	VoteBullish Vote = 1
)

type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

type IndicatorSignal struct {
	Label     SignalLabel `json:"label"`
	Vote      Vote        `json:"vote"`
	Rationale string      `json:"rationale"`
}

// SignalSummary is the rule-based verdict over the latest indicator values.
type SignalSummary struct {
	Overall      SignalLabel                       `json:"overall"`
	RiskTier     RiskTier                          `json:"risk_tier"`
	PerIndicator map[IndicatorName]IndicatorSignal `json:"per_indicator"`
	BullishCount int                               `json:"bullish_count"`
	BearishCount int                               `json:"bearish_count"`
	RiskFlags    []string                          `json:"risk_flags,omitempty"`
	Suggestion   string                            `json:"suggestion"`
}
