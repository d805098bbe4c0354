package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinequery/cinequery/internal/api"
	"github.com/cinequery/cinequery/internal/api/uistatic"
	"github.com/cinequery/cinequery/internal/auth"
	"github.com/cinequery/cinequery/internal/config"
	"github.com/cinequery/cinequery/internal/nl2sql"
	"github.com/cinequery/cinequery/internal/observability"
	"github.com/cinequery/cinequery/internal/pipeline"
	"github.com/cinequery/cinequery/internal/query/sqlengine"
	"github.com/cinequery/cinequery/internal/schema"
	"github.com/cinequery/cinequery/internal/store"
)

func main() {
	cfg, err := config.LoadFromEnv("cinequery-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, dialect, err := store.Open(context.Background(), store.Config{
		Driver:          store.Driver(cfg.Store.Driver),
		DSN:             cfg.Store.DSN,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	engine := sqlengine.NewEngine(db, sqlengine.Options{
		ReadOnly: cfg.Query.ReadOnly,
		RowLimit: cfg.Query.RowLimit,
		Driver:   store.Driver(cfg.Store.Driver),
	})

	table := schema.Movies()
	table.Name = cfg.Store.Table

	deps := api.Dependencies{
		Logger: logger,
		Table:  table,
		Readiness: api.CombineReadinessChecks(
			api.CheckStore(db, dialect, cfg.Store.Table),
			api.CheckCompleterConfig(cfg),
		),
		DependencyTimeout: time.Second,
	}

	// Without a key the service still serves schema and health; /v1/ask
	// answers 501 until one is configured.
	if cfg.AI.APIKey != "" {
		completer, err := nl2sql.NewOpenAICompleter(nl2sql.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
			Referer:     cfg.AI.Referer,
			Title:       cfg.AI.Title,
		})
		if err != nil {
			logger.Error("failed to initialize completer", slog.Any("error", err))
			os.Exit(1)
		}
		questions := pipeline.New(table, completer, engine, logger)
		questions.RowLimit = cfg.Query.RowLimit
		questions.QueryTimeout = cfg.Query.Timeout
		deps.Pipeline = questions
	} else {
		logger.Warn("completion api key is not configured; question answering disabled")
	}

	if cfg.UI.Enabled {
		deps.UI = uistatic.Handler()
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("store_driver", cfg.Store.Driver),
			slog.String("table", cfg.Store.Table),
			slog.String("model", cfg.AI.Model),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
