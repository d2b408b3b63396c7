package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mediadex/mediadex/internal/adapter"
	"github.com/mediadex/mediadex/internal/cache"
	"github.com/mediadex/mediadex/internal/config"
	"github.com/mediadex/mediadex/internal/domain/catalog"
	logpkg "github.com/mediadex/mediadex/internal/logger"
	"github.com/mediadex/mediadex/internal/metrics"
	chiTransport "github.com/mediadex/mediadex/internal/transport/chi"
	"github.com/mediadex/mediadex/internal/usecase/debounce"
	"github.com/mediadex/mediadex/internal/usecase/engine"
	"github.com/mediadex/mediadex/internal/usecase/rank"
	"github.com/mediadex/mediadex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mediadex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Create result cache based on driver
	var store engine.Cache
	var pinger chiTransport.Pinger
	switch cfg.Cache.Driver {
	case "memory":
		mem := cache.NewMemory(
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			cfg.Cache.Capacity,
			time.Duration(cfg.Cache.SweepIntervalSec)*time.Second,
		)
		defer mem.Close()
		store = mem
	case "redis":
		rds, err := cache.NewRedis(cache.RedisConfig{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			DB:        cfg.Cache.DB,
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create redis cache", zap.Error(err))
		}
		defer rds.Close()
		store = rds
		pinger = rds
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	collector := metrics.NewCollector()

	adapters := buildAdapters(cfg.Catalogs, logger)
	logger.Info("Catalog adapters created", zap.Int("count", len(adapters)))

	debouncer := debounce.NewScheduler().WithDelays(
		time.Duration(cfg.Debounce.ShortMs)*time.Millisecond,
		time.Duration(cfg.Debounce.MediumMs)*time.Millisecond,
		time.Duration(cfg.Debounce.LongMs)*time.Millisecond,
	)

	ranker := rank.NewRanker().WithWindow(
		cfg.Search.PrefixSize, cfg.Search.CatalogQuota, cfg.Search.MaxLimit,
	)

	searchSvc := engine.New(adapters, store, collector, logger).
		WithDebouncer(debouncer).
		WithDeadlines(deadlinesFromConfig(cfg.Search.DeadlinesMs, logger)).
		WithRanker(ranker).
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit).
		WithMaxPerCatalog(cfg.Search.MaxPerCatalog)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, collector, logger)
	if pinger != nil {
		server.WithPinger("cache", pinger)
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildAdapters assembles one adapter per enabled catalog.
func buildAdapters(cfg config.CatalogsConfig, logger *zap.Logger) []adapter.Adapter {
	base := func(cc config.CatalogConfig) adapter.Config {
		return adapter.Config{
			BaseURL:      cc.BaseURL,
			APIKey:       cc.APIKey,
			Timeout:      time.Duration(cc.TimeoutSec) * time.Second,
			RateLimitRPS: cc.RateLimitRPS,
			Logger:       logger,
		}
	}

	var adapters []adapter.Adapter
	if !cfg.Film.Disabled {
		adapters = append(adapters, adapter.NewFilm(base(cfg.Film), cfg.Film.ImageBaseURL))
	}
	if !cfg.Book.Disabled {
		adapters = append(adapters, adapter.NewBook(base(cfg.Book), cfg.Book.ImageBaseURL))
	}
	if !cfg.Game.Disabled {
		adapters = append(adapters, adapter.NewGame(base(cfg.Game)))
	}
	if !cfg.Music.Disabled {
		adapters = append(adapters, adapter.NewMusic(base(cfg.Music)))
	}
	return adapters
}

// deadlinesFromConfig converts the per-catalog deadline map, dropping unknown tags.
func deadlinesFromConfig(ms map[string]int, logger *zap.Logger) map[catalog.Tag]time.Duration {
	out := make(map[catalog.Tag]time.Duration, len(ms))
	for name, v := range ms {
		tag, err := catalog.Parse(name)
		if err != nil {
			logger.Warn("Ignoring deadline for unknown catalog", zap.String("catalog", name))
			continue
		}
		out[tag] = time.Duration(v) * time.Millisecond
	}
	return out
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
