package service

import "FundLens/internal/domain/models"

// IndicatorEngine computes the requested indicator columns over a canonical series.
type IndicatorEngine interface {
	Compute(series *models.CanonicalSeries, cfg models.IndicatorConfig, requested []models.IndicatorName) (*models.IndicatorTable, error)
}
