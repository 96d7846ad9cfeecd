// Command server starts the resume screener HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/logictrix/resume-screener/internal/adapter/ai/openrouter"
	"github.com/logictrix/resume-screener/internal/adapter/cache/memory"
	"github.com/logictrix/resume-screener/internal/adapter/cache/rediscache"
	httpserver "github.com/logictrix/resume-screener/internal/adapter/httpserver"
	"github.com/logictrix/resume-screener/internal/adapter/lang"
	"github.com/logictrix/resume-screener/internal/adapter/observability"
	"github.com/logictrix/resume-screener/internal/adapter/repo/postgres"
	tikaext "github.com/logictrix/resume-screener/internal/adapter/textextractor/tika"
	"github.com/logictrix/resume-screener/internal/app"
	"github.com/logictrix/resume-screener/internal/config"
	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/internal/screening/experience"
	"github.com/logictrix/resume-screener/internal/screening/extract"
	"github.com/logictrix/resume-screener/internal/screening/phone"
	"github.com/logictrix/resume-screener/internal/screening/taxonomy"
	"github.com/logictrix/resume-screener/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register all Prometheus metrics once per process so that /metrics
	// exposes HTTP, AI, and screening instrumentation.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	// Infra: DB pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewScreeningRepo(pool)

	// Result cache: redis when configured, in-process otherwise.
	var cache domain.ResultCache
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("redis url parse failed", slog.Any("error", err))
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
		cache = rediscache.New(rdb, cfg.CacheTTL)
		slog.Info("result cache backed by redis")
	} else {
		cache = memory.New(cfg.CacheTTL, cfg.CacheMaxPerSession)
		slog.Info("result cache in process")
	}

	// AI client and language pipeline
	aicl := openrouter.New(cfg)
	detector := lang.NewDetector()
	translator := lang.NewModelTranslator(aicl)

	// External text extractor (Apache Tika)
	ext := tikaext.New(cfg.TikaURL)

	// Parsing and enrichment
	parser := extract.MustNew()
	phones := phone.Normalizer{CountryCode: cfg.PhoneCountryCode}
	tenure := experience.Calculator{}
	classifier := taxonomy.MustNew()

	// Usecases
	screenSvc := usecase.NewScreenService(aicl, ext, detector, translator,
		cache, repo, parser, phones, tenure, classifier, cfg.ScreenConcurrency)
	matchSvc := usecase.NewMatchService(screenSvc)
	exportSvc := usecase.NewExportService(repo)

	// Readiness checks
	dbCheck, redisCheck, tikaCheck := app.BuildReadinessChecks(cfg, pool, rdb)

	// HTTP server
	srv := httpserver.NewServer(cfg, screenSvc, matchSvc, exportSvc, dbCheck, redisCheck, tikaCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
