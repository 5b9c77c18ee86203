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
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/jobscout-io/jobscout/internal/config"
	logpkg "github.com/jobscout-io/jobscout/internal/logger"
	"github.com/jobscout-io/jobscout/internal/metrics"
	"github.com/jobscout-io/jobscout/internal/rank"
	"github.com/jobscout-io/jobscout/internal/source/jobspy"
	"github.com/jobscout-io/jobscout/internal/source/usajobs"
	"github.com/jobscout-io/jobscout/internal/transport/httpapi"
	healthuc "github.com/jobscout-io/jobscout/internal/usecase/health"
	searchuc "github.com/jobscout-io/jobscout/internal/usecase/search"
	"github.com/jobscout-io/jobscout/internal/version"
)

func main() {
	cfgPath := config.Path()
	cfg, cfgErr := config.Load(cfgPath)

	logger, err := logpkg.New(cfg.Scrape.Verbose, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		// Config problems are non-fatal: run on defaults.
		logger.Warn("failed to load config, using defaults",
			zap.String("path", cfgPath),
			zap.Error(cfgErr),
		)
	} else {
		logger.Info("loaded config", zap.String("path", cfgPath))
	}

	logger.Info("Starting jobscout API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("sites", cfg.Scrape.Sites),
		zap.Bool("usajobs_enabled", cfg.USAJobs.Enabled),
	)

	// Register source metrics explicitly (no init())
	metrics.RegisterSourceMetrics()

	// Sources — the multi-site scraper is always the primary.
	sources := []searchuc.Source{
		jobspy.New(jobspy.Config{
			BaseURL:           cfg.JobSpy.BaseURL,
			Sites:             cfg.Scrape.Sites,
			Country:           cfg.Scrape.Country,
			FetchDescriptions: cfg.Scrape.FetchDescriptions,
			Verbose:           cfg.Scrape.Verbose,
			Timeout:           time.Duration(cfg.JobSpy.TimeoutSec) * time.Second,
			RatePerSec:        cfg.JobSpy.RatePerSec,
			Burst:             cfg.JobSpy.Burst,
		}, logger),
	}
	if cfg.USAJobs.Enabled {
		if cfg.USAJobs.HasCredentials() {
			sources = append(sources, usajobs.New(usajobs.Config{
				BaseURL: cfg.USAJobs.BaseURL,
				APIKey:  cfg.USAJobs.APIKey,
				Email:   cfg.USAJobs.Email,
				Timeout: time.Duration(cfg.USAJobs.TimeoutSec) * time.Second,
			}, logger))
			logger.Info("usajobs source enabled")
		} else {
			logger.Warn("usajobs enabled but credentials are missing, skipping source")
		}
	}

	// Use case services
	scorer := rank.New(cfg.Scoring)
	searchSvc := searchuc.New(cfg, scorer, logger, sources...)
	healthSvc := healthuc.New(cfgErr == nil)

	server := httpapi.NewServer(searchSvc, healthSvc, cfg, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

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
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
