package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dynlink/internal/config"
	"dynlink/internal/handlers"
	"dynlink/internal/repository"
	"dynlink/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(appEnv string) *slog.Logger {
	if appEnv == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openStorage connects the database, brings the schema up to date and
// attaches Redis when reachable. A nil client means caching is off.
func openStorage(cfg config.Config, logger *slog.Logger) (*gorm.DB, *redis.Client, error) {
	db, err := repository.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		logger.Info("Running database migrations...")
		if err := repository.RunMigrations(cfg.DatabaseURL, ""); err != nil {
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
	} else if err := repository.AutoMigrate(db); err != nil {
		return nil, nil, err
	}

	if cfg.RedisURL == "" {
		return db, nil, nil
	}
	rdb, err := repository.InitRedis(cfg.RedisURL, cfg.RedisPassword, 0)
	if err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
		return db, nil, nil
	}
	return db, rdb, nil
}

func Run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.AppEnv)
	slog.SetDefault(logger)

	db, rdb, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	store := repository.NewLinkStore(db)
	cache := repository.NewLinkCache(rdb, logger)
	audit := services.NewAuditService(db, logger)
	geoIP := services.NewGeoIPService(cfg.GeoIPDBPath, logger)
	qr := services.NewQRService()
	recorder := services.NewClickRecorder(store, logger, geoIP, cfg.StatsBufferSize)
	analytics := services.NewAnalyticsService(store, cache, audit, logger, cfg.RecentLimit)
	limiter := services.NewIPRateLimiter(5, 10, logger)

	h := handlers.NewHandler(
		cfg,
		logger,
		services.NewShortenerService(cfg.BaseURL, store, cache, audit, qr, logger),
		services.NewResolver(store, cache, logger),
		recorder,
		analytics,
		qr,
	)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.SetupRouter(limiter, "web/templates/*.html", "./web/static"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	geoIP.Init()
	go audit.Start(workerCtx)
	go recorder.Start(workerCtx)
	go geoIP.StartReloader(workerCtx, time.Hour)
	go analytics.StartReconciler(workerCtx, cfg.ReconcileInterval)
	go limiter.StartCleanup(workerCtx, time.Minute, 10*time.Minute)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Clicks still queued at this point are lost.
	workerCancel()
	time.Sleep(100 * time.Millisecond)

	logger.Info("Server exiting")
	return nil
}
