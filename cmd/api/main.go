package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kmclabs/medassist/internal/application"
	"github.com/kmclabs/medassist/internal/application/consult"
	"github.com/kmclabs/medassist/internal/config"
	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/domain/history"
	"github.com/kmclabs/medassist/internal/infra/ai/gemini"
	aiopenai "github.com/kmclabs/medassist/internal/infra/ai/openai"
	"github.com/kmclabs/medassist/internal/infra/db/mysql"
	"github.com/kmclabs/medassist/internal/infra/db/postgres"
	"github.com/kmclabs/medassist/internal/infra/db/sqlite"
	"github.com/kmclabs/medassist/internal/infra/httpserver"
	"github.com/kmclabs/medassist/internal/infra/storage"
	"github.com/kmclabs/medassist/internal/middleware"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal("config load error", zap.Error(err))
	}

	ctx := context.Background()

	repo, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("history store init error", zap.Error(err))
	}
	defer repo.Close()

	gateway, err := openAnalyzer(ctx, cfg)
	if err != nil {
		log.Fatal("analyzer init error", zap.Error(err))
	}

	var archive *storage.Store
	if cfg.Minio.Enabled {
		archive, err = storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatal("minio init error", zap.Error(err))
		}
	}

	svc := consult.NewService(gateway, repo, application.SystemClock{}, log)
	svc.Timeout = cfg.AITimeout()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)

	handler := httpserver.NewRouter(httpserver.Deps{
		Consult:        svc,
		Archive:        archive,
		Limiter:        limiter,
		Log:            log,
		FrontendOrigin: cfg.Server.FrontendOrigin,
		Health: map[string]middleware.HealthChecker{
			"history_store": middleware.HealthCheckerFunc(repo.Ping),
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
}

func openRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (history.Repository, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return sqlite.NewHistoryRepository(db, log)
	case "mysql":
		db, err := mysql.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		return mysql.NewHistoryRepository(db, log)
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return postgres.NewHistoryRepository(db, log)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func openAnalyzer(ctx context.Context, cfg *config.Config) (analysis.Analyzer, error) {
	switch strings.ToLower(cfg.AI.Provider) {
	case "gemini":
		return gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
	case "openai":
		return aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}
