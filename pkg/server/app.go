package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FundLens/internal/service/ratelimit"
	"FundLens/pkg/config"
	xhttp "FundLens/pkg/http"
	applogger "FundLens/pkg/logger"
)

// limiterIdle is how long a client bucket may sit unused before it is pruned.
const limiterIdle = 10 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	limiter     *ratelimit.Limiter
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, limiter *ratelimit.Limiter) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, httpHandler: h, limiter: limiter}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the HTTP server and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path, a.cfg.Metrics.SlowThreshold),
		xhttp.WithLogger(a.l),
	)

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.limiter != nil {
		go a.pruneLimiter(ctx)
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Prune(limiterIdle); n > 0 {
				a.l.Debug("pruned idle rate limit buckets", applogger.Int("count", n))
			}
		}
	}
}

// shutdown gracefully stops the HTTP server. Cache and client cleanup is owned by the injector.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.l.Info("shutdown complete")
	return nil
}
