package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bryanwahyu/automaton-analyst/internal/application"
	appai "github.com/bryanwahyu/automaton-analyst/internal/application/ai"
	appanalysis "github.com/bryanwahyu/automaton-analyst/internal/application/analysis"
	"github.com/bryanwahyu/automaton-analyst/internal/config"
	domain "github.com/bryanwahyu/automaton-analyst/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/automaton-analyst/internal/infra/db/mysql"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/db/postgres"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/db/sqlite"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/httpserver"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/ingest"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/sandbox"
	"github.com/bryanwahyu/automaton-analyst/internal/infra/scrape"
	minioStore "github.com/bryanwahyu/automaton-analyst/internal/infra/storage"
	"github.com/bryanwahyu/automaton-analyst/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config load error", "path", path, "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	for _, p := range cfg.Validate() {
		logger.Error("configuration problem", "problem", p)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// connect database + migrate
	db, repo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Error("database init error", "driver", cfg.Database.Driver, "err", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database ready", "driver", cfg.Database.Driver)

	// init minio (opsional)
	var artifacts domain.ArtifactStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Error("minio init error", "err", err)
			os.Exit(1)
		}
		artifacts = store
	}

	// init llm
	baseURL, model := cfg.LLMEndpoint()
	llm := openai.NewClient(cfg.APIKey(), model, baseURL)
	if cfg.LLM.MaxTokens > 0 {
		llm.MaxTokens = cfg.LLM.MaxTokens
	}
	logger.Info("llm configured", "provider", cfg.LLM.Provider, "model", model)

	// init sandbox
	executor := sandbox.New(sandbox.Options{
		Timeout:         cfg.Sandbox.Timeout,
		CallStackSize:   cfg.Sandbox.CallStackSize,
		RegistryMaxSize: cfg.Sandbox.RegistryMaxSize,
		Scraper:         scrape.New(cfg.Sandbox.ScrapeTimeout, middleware.ValidateURL),
		Logger:          logger,
	})

	// init service
	svc := &appanalysis.Service{
		Repo:      repo,
		Ingestor:  ingest.New(logger),
		Generator: appai.NewService(llm, cfg.LLM.Timeout),
		Executor:  executor,
		Artifacts: artifacts,
		Clock:     application.SystemClock{},
		Metrics:   middleware.AnalysisMetrics{},
		Logger:    logger,
		TempDir:   cfg.Upload.TempDir,
		Reserved:  sandbox.ReservedNames(),
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		MaxMemory: cfg.Upload.MaxMemory,
		MaxBytes:  cfg.Upload.MaxBytes,
		Checkers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * 2,
	}

	// run server
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

type repository interface {
	domain.Repository
	Migrate(ctx context.Context) error
}

func openRepository(ctx context.Context, cfg *config.Config) (*sql.DB, repository, error) {
	var (
		db   *sql.DB
		repo repository
		err  error
	)
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		if db, err = mysqlp.Connect(ctx, cfg.DSN()); err == nil {
			repo = mysqlp.NewAnalysisRepository(db)
		}
	case config.DriverPostgres:
		if db, err = postgres.Connect(ctx, cfg.DSN()); err == nil {
			repo = postgres.NewAnalysisRepository(db)
		}
	default:
		if db, err = sqlite.Open(ctx, cfg.DSN()); err == nil {
			repo = sqlite.NewAnalysisRepository(db)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, repo, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
