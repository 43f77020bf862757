package di

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"FundLens/internal/domain/models"
	domrepo "FundLens/internal/domain/repository"
	domsvc "FundLens/internal/domain/service"
	"FundLens/internal/handler/api"
	internalrepo "FundLens/internal/repository"
	"FundLens/internal/service/ratelimit"
	"FundLens/internal/service/tushare"
	"FundLens/internal/services/indicators"
	"FundLens/internal/usecase"
	"FundLens/pkg/cache"
	"FundLens/pkg/config"
	xhttp "FundLens/pkg/http"
	applogger "FundLens/pkg/logger"
	"FundLens/pkg/metrics"
	"FundLens/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCache creates the request cache selected by cache.backend.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	var (
		c   cache.Service
		err error
	)
	switch cfg.Cache.Backend {
	case "redis", "layered":
		var rc *cache.RedisCache
		rc, err = cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		c = rc
		if cfg.Cache.Backend == "layered" {
			c = cache.NewLayeredCache(rc, cfg.Cache.MemoryMaxSize, 5*time.Minute)
		}
	default:
		c = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
	}
	l.Info("cache ready", applogger.String("backend", cfg.Cache.Backend))

	cleanup := func() {
		if err := c.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}
	return c, cleanup, nil
}

// ProvideTushareClient creates the rate-limited vendor client.
func ProvideTushareClient(cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) *tushare.Client {
	hc := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Tushare.Timeout),
		xhttp.WithRateLimit(cfg.Tushare.RatePerMinute, cfg.Tushare.Burst),
		xhttp.WithUserAgent("fundlens/1.0"),
	)
	return tushare.NewClient(cfg.Tushare.BaseURL, cfg.Tushare.Token,
		tushare.WithHTTPClient(hc),
		tushare.WithRetries(cfg.Tushare.Retries, 500*time.Millisecond),
		tushare.WithMetrics(m),
		tushare.WithLogger(l),
	)
}

// ProvideTushareSource creates the vendor-backed fund source.
func ProvideTushareSource(client *tushare.Client, l *applogger.Logger) *internalrepo.TushareSource {
	return internalrepo.NewTushareSource(client, l)
}

// ProvideCachedSource wraps the vendor source with the request cache.
func ProvideCachedSource(src *internalrepo.TushareSource, c cache.Service, m domrepo.Metrics, cfg *config.Config, l *applogger.Logger) *internalrepo.CachedSource {
	return internalrepo.NewCachedSource(src, c, cfg.Cache.SeriesTTL, cfg.Cache.StaticTTL, m, l)
}

// ProvideIndicatorEngine creates the indicator engine.
func ProvideIndicatorEngine(l *applogger.Logger, m domrepo.Metrics) domsvc.IndicatorEngine {
	return indicators.NewEngine(l, m)
}

// ProvideAnalysisDefaults maps the analysis section onto use case defaults.
func ProvideAnalysisDefaults(cfg *config.Config) (usecase.AnalysisDefaults, error) {
	a := cfg.Analysis
	d := usecase.AnalysisDefaults{
		Config: models.IndicatorConfig{
			ShortWindow: a.ShortWindow,
			LongWindow:  a.LongWindow,
			RSIWindow:   a.RSIWindow,
		},
		RollingWindow: a.RollingWindow,
		Benchmark:     a.DefaultBenchmark,
		Timeout:       cfg.Server.WriteTimeout,
	}
	if len(a.Indicators) > 0 {
		known, unknown := models.ParseIndicators(strings.Join(a.Indicators, ","))
		if len(unknown) > 0 {
			return d, fmt.Errorf("analysis.indicators: unknown %v", unknown)
		}
		d.Indicators = known
	}
	return d, nil
}

// ProvideAnalysisUseCase creates the analysis pipeline use case.
func ProvideAnalysisUseCase(
	source domrepo.FundSource,
	engine domsvc.IndicatorEngine,
	m domrepo.Metrics,
	l *applogger.Logger,
	d usecase.AnalysisDefaults,
) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(source, engine, m, l, d)
}

// ProvideLimiter creates the inbound per-client limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec)
}

// ProvideFundsHandler creates the HTTP handler for fund endpoints.
func ProvideFundsHandler(
	l *applogger.Logger,
	uc *usecase.AnalysisUseCase,
	purger domrepo.CachePurger,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewFundsEchoHandler(l, uc, purger, limiter, cfg.Analysis.Benchmarks)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, limiter *ratelimit.Limiter) *server.App {
	return server.New(cfg, l, h, limiter)
}
