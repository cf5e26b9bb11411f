package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashlytic-server/src/api"
	"cashlytic-server/src/config"
	"cashlytic-server/src/db"
	"cashlytic-server/src/db/memory"
	sqldb "cashlytic-server/src/db/sql"
	"cashlytic-server/src/ledger"
	"cashlytic-server/src/logger"
	promcollector "cashlytic-server/src/metrics/prometheus"
	"cashlytic-server/src/notify"
	"cashlytic-server/src/ratelimit"
	"cashlytic-server/src/receipt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var store ledger.Store
	switch cfg.Store {
	case "memory":
		log.Warn().Msg("using in-memory store, data is lost on restart")
		store = memory.New()
	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("DB connection failed")
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("DB migration failed")
		}
		store = sqldb.NewStore(pool)
	}

	cache, err := db.NewReadCache(cfg.CacheMaxItems)
	if err != nil {
		log.Fatal().Err(err).Msg("cache init failed")
	}
	defer cache.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := promcollector.NewCollector("cashlytic")
	if err := collector.Register(reg); err != nil {
		log.Fatal().Err(err).Msg("metrics registration failed")
	}

	opts := []ledger.Option{
		ledger.WithCache(cache),
		ledger.WithMetrics(collector),
		ledger.WithLogger(log.With().Str("component", "ledger").Logger()),
		ledger.WithRateLimiter(newRateLimiter(ctx, cfg, log)),
	}
	if cfg.ResendAPIKey != "" {
		sender := notify.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailTimeout, log)
		opts = append(opts, ledger.WithNotifier(notify.NewNotifier(sender, collector, log)))
	} else {
		log.Warn().Msg("RESEND_API_KEY not set, budget alerts will not be emailed")
	}
	svc := ledger.NewService(store, opts...)

	var model receipt.Model = receipt.Disabled{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := receipt.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ModelTimeout, log)
		if err != nil {
			log.Fatal().Err(err).Msg("receipt model init failed")
		}
		model = gemini
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, receipt scanning is disabled")
	}
	scanner := receipt.NewExtractor(model, collector, log.With().Str("component", "receipt").Logger())

	// Router
	router := api.NewRouter(svc, scanner, api.Options{
		JWTSecret:      cfg.JWTSecret,
		CronSecret:     cfg.CronSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		DemoMode:       cfg.DemoMode,
		Logger:         log,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Bool("demo", cfg.DemoMode).Msg("API server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func newRateLimiter(ctx context.Context, cfg config.Config, log zerolog.Logger) ledger.RateLimiter {
	if cfg.RedisAddr != "" {
		limiter, err := ratelimit.NewRedis(ctx, cfg.RedisAddr, cfg.RateLimitHour, time.Hour)
		if err == nil {
			return limiter
		}
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-process rate limiter")
	}
	return ratelimit.NewLocal(cfg.RateLimitHour, time.Hour)
}
