package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumn        = errors.New("missing column")
	ErrEmptySeries          = errors.New("empty series")
	ErrInsufficientData     = errors.New("insufficient data")
	ErrIndicatorComputation = errors.New("indicator computation failed")
	ErrDataUnavailable      = errors.New("data unavailable")
	ErrInvalidConfig        = errors.New("invalid indicator config")
)

// ColumnError reports that none of the candidate fields for a role was present.
type ColumnError struct {
	Role       string
	Candidates []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("no %s column, expected one of [%s]", e.Role, strings.Join(e.Candidates, ", "))
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// IndicatorError is a single indicator failure. Other indicators are unaffected.
type IndicatorError struct {
	Indicator IndicatorName
	Err       error
}

func (e *IndicatorError) Error() string {
	return fmt.Sprintf("indicator %s: %v", e.Indicator, e.Err)
}

func (e *IndicatorError) Unwrap() []error { return []error{ErrIndicatorComputation, e.Err} }
