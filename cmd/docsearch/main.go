package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	"github.com/kailas-cloud/docsearch/internal/repository/respcache"
	chiTransport "github.com/kailas-cloud/docsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
	"github.com/kailas-cloud/docsearch/internal/version"
)

func main() {
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

	logger.Info("Starting docsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addrs),
		zap.String("index", cfg.Elasticsearch.Index),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	sc, err := cfg.Schema()
	if err != nil {
		logger.Fatal("Invalid search schema", zap.Error(err))
	}

	es, err := elastic.NewClient(elastic.Config{
		Addrs:      cfg.Elasticsearch.Addrs,
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		Index:      cfg.Elasticsearch.Index,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	})
	if err != nil {
		logger.Fatal("Failed to create Elasticsearch client", zap.Error(err))
	}

	ctx := context.Background()
	readiness := time.Duration(cfg.Elasticsearch.ReadinessTimeout) * time.Second
	if err := es.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Elasticsearch not ready", zap.Error(err))
	}
	logger.Info("Connected to Elasticsearch")

	metrics.RegisterHTTPMetrics()
	metrics.RegisterSearchMetrics()

	// Engine chain: Elasticsearch -> optional response cache.
	var engine searchuc.Engine = es
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		engine = respcache.New(es, store, es.Index(), cfg.Cache.TTL(), metrics.ResponseCacheTotal, logger)
		cachePinger = store
		logger.Info("Response cache enabled", zap.Duration("ttl", cfg.Cache.TTL()))
	}

	searchSvc := searchuc.New(engine, sc, searchuc.Options{
		MaxParallelSupplemental: cfg.Search.MaxParallelSupplemental,
		AutocompleteSize:        cfg.Search.AutocompleteSize,
		AutocompleteMinChars:    cfg.Search.AutocompleteMinChars,
	}, logger)
	healthSvc := healthuc.New(es, cachePinger)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.Handler(server, r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
