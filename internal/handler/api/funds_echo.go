package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	models "FundLens/internal/domain/models"
	domrepo "FundLens/internal/domain/repository"
	svcmetrics "FundLens/internal/service/metrics"
	"FundLens/internal/service/ratelimit"
	"FundLens/internal/service/tushare"
	"FundLens/internal/usecase"
	xhttp "FundLens/pkg/http"
	xlogger "FundLens/pkg/logger"
)

// FundAnalyzer is the use case surface the handler needs.
type FundAnalyzer interface {
	Run(ctx context.Context, p usecase.AnalysisParams) (*models.Analysis, error)
	Profile(ctx context.Context, code string) (*models.FundProfile, error)
}

// FundsEchoHandler serves fund analysis over Echo.
type FundsEchoHandler struct {
	logger     *xlogger.Logger
	analyzer   FundAnalyzer
	purger     domrepo.CachePurger
	limiter    *ratelimit.Limiter
	benchmarks map[string]string
}

func NewFundsEchoHandler(logger *xlogger.Logger, analyzer FundAnalyzer, purger domrepo.CachePurger, limiter *ratelimit.Limiter, benchmarks map[string]string) *FundsEchoHandler {
	svcmetrics.Register()
	return &FundsEchoHandler{logger: logger, analyzer: analyzer, purger: purger, limiter: limiter, benchmarks: benchmarks}
}

func (h *FundsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/funds/:code/analysis", h.Analysis)
	g.GET("/funds/:code/profile", h.Profile)
	g.GET("/benchmarks", h.Benchmarks)
	g.DELETE("/cache", h.PurgeCache)
}

// rateLimit applies the per-client token bucket.
func (h *FundsEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			svcmetrics.APIRateLimited.WithLabelValues(c.Path()).Inc()
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests, slow down"))
		}
		return next(c)
	}
}

func (h *FundsEchoHandler) Analysis(c echo.Context) error {
	start := time.Now()
	defer func() { svcmetrics.APILatency.WithLabelValues("analysis").Observe(time.Since(start).Seconds()) }()

	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	p := usecase.AnalysisParams{
		Code:      req.Code,
		Benchmark: req.Benchmark,
		Config: models.IndicatorConfig{
			ShortWindow: req.Short,
			LongWindow:  req.Long,
			RSIWindow:   req.RSI,
		},
		WithProfile: true,
	}
	if req.Start != "" {
		t, ok := xhttp.ParseDate(req.Start)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("start %q is not a date", req.Start))
		}
		p.Start = t
	}
	if req.End != "" {
		t, ok := xhttp.ParseDate(req.End)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("end %q is not a date", req.End))
		}
		p.End = t
	}
	if req.Indicators != "" {
		known, unknown := models.ParseIndicators(req.Indicators)
		if len(unknown) > 0 {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("unknown indicators").WithParam("unknown", unknown))
		}
		p.Indicators = known
	}

	res, err := h.analyzer.Run(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, "analysis", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, res)
}

func (h *FundsEchoHandler) Profile(c echo.Context) error {
	start := time.Now()
	defer func() { svcmetrics.APILatency.WithLabelValues("profile").Observe(time.Since(start).Seconds()) }()

	req := &models.ProfileRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analyzer.Profile(c.Request().Context(), req.Code)
	if err != nil {
		return h.fail(c, "profile", err)
	}
	return xhttp.SuccessResponse(c, res)
}

type benchmarkOption struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (h *FundsEchoHandler) Benchmarks(c echo.Context) error {
	out := make([]benchmarkOption, 0, len(h.benchmarks))
	for name, code := range h.benchmarks {
		out = append(out, benchmarkOption{Name: name, Code: code})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return xhttp.SuccessResponse(c, out)
}

func (h *FundsEchoHandler) PurgeCache(c echo.Context) error {
	if h.purger == nil {
		return xhttp.NoContentResponse(c)
	}
	if err := h.purger.Purge(c.Request().Context()); err != nil {
		return h.fail(c, "purge", err)
	}
	h.logger.Info("cache purged", xlogger.String("remote", c.RealIP()))
	return xhttp.NoContentResponse(c)
}

func (h *FundsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	svcmetrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Warn(endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain and vendor errors to HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var (
		colErr    *models.ColumnError
		vendorErr *tushare.APIError
		statusErr *xhttp.StatusError
	)
	switch {
	case errors.As(err, &colErr):
		return xhttp.UnprocessableError(err.Error()).WithParam("candidates", colErr.Candidates).WithError(err)
	case errors.Is(err, models.ErrEmptySeries):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInvalidConfig):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrDataUnavailable):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.As(err, &vendorErr), errors.As(err, &statusErr):
		return xhttp.BadGatewayError("market data vendor error").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.BadGatewayError("market data vendor timed out").WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
