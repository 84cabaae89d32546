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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/resource-share-backend/internal/app"
	"github.com/nekogravitycat/resource-share-backend/internal/config"
	"github.com/nekogravitycat/resource-share-backend/internal/db"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "resource-share"})
	slog.SetDefault(log)
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var pool *pgxpool.Pool
	if cfg.StoreDriver == config.StorePostgres {
		if pool, err = db.NewPool(ctx, cfg.DBDSN); err != nil {
			return err
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			return err
		}
	} else {
		log.Warn("using in-memory store, data is lost on restart")
	}

	notifier, closeNotifier, err := app.NewNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeNotifier(); err != nil {
			log.Warn("notifier close failed", "error", err)
		}
	}()

	searchCache, closeCache, err := app.NewSearchCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return err
	}

	container := app.NewContainer(app.Config{
		IsProduction:             cfg.IsProduction,
		ProdOrigins:              cfg.ProdOrigins,
		PublicBaseURL:            cfg.PublicBaseURL,
		DBPool:                   pool,
		JWTSecret:                cfg.JWTSecret,
		JWTTTL:                   cfg.JWTAccessTokenTTL,
		BcryptCost:               cfg.BcryptCost,
		OperatingDayOffset:       cfg.OperatingDayOffset,
		RejectOverlappingBooking: cfg.RejectOverlappingBooking,
		Notifier:                 notifier,
		SearchCache:              searchCache,
		CacheTTL:                 cfg.SearchCacheTTL,
		Storage:                  store,
		Logger:                   log,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server running", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "notifier", cfg.NotifierDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced to shutdown", "error", err)
	}

	log.Info("server exited gracefully")
	return nil
}
