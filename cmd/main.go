package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/http/api"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/http/site"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/http/swagger"
	service "github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/app"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/config"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/metrics"
)

// HTTP server timeout constants. Writes must outlast the resolver's live
// budget (live_budget_ms) so a slow platform still yields fallback records.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 45 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// defaults -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWriter(os.Stdout, cfg.LogFormat); err != nil {
		logger.Get().Warn(ctx, "invalid log_format; keeping text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if budget := time.Duration(cfg.LiveBudgetMS) * time.Millisecond; budget >= writeTimeout {
		log.Warn(ctx, "live_budget_ms reaches the write timeout; slow lookups may drop responses",
			logger.Int("live_budget_ms", cfg.LiveBudgetMS),
			logger.Int64("write_timeout_ms", writeTimeout.Milliseconds()),
		)
	}

	svc := service.New(cfg, service.WithLogger(log))
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newMux registers the docs, API, admin and public site routes.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	auth := api.NewAdminAuth(cfg.AdminPasswordHash, cfg.AdminTokenSecret,
		time.Duration(cfg.AdminSessionTTLMinutes)*time.Minute)
	if !auth.Enabled() {
		log.Warn(ctx, "admin login disabled; set admin_password_hash and admin_token_secret")
	}
	api.NewServer(svc, svc, auth, log.Named("http")).Register(ctx, mux)

	// Catch-all; the more specific patterns above take precedence.
	site.Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
