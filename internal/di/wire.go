//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	domrepo "FundLens/internal/domain/repository"
	internalrepo "FundLens/internal/repository"
	"FundLens/internal/usecase"
	"FundLens/pkg/config"
	"FundLens/pkg/server"
)

var analysisSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,
	ProvideCache,

	// Data acquisition
	ProvideTushareClient,
	ProvideTushareSource,
	ProvideCachedSource,
	wire.Bind(new(domrepo.FundSource), new(*internalrepo.CachedSource)),
	wire.Bind(new(domrepo.CachePurger), new(*internalrepo.CachedSource)),

	// Pipeline
	ProvideIndicatorEngine,
	ProvideAnalysisDefaults,
	ProvideAnalysisUseCase,
)

// InitializeApp wires up all dependencies and returns the HTTP application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		analysisSet,
		ProvideLimiter,
		ProvideFundsHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAnalyzer wires the analysis use case without the HTTP surface.
func InitializeAnalyzer(cfg *config.Config) (*usecase.AnalysisUseCase, func(), error) {
	wire.Build(analysisSet)
	return nil, nil, nil
}
