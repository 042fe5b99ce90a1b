// cmd/poolschedule/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pr-poehali-dev/pool-schedule/internal/config"
	"github.com/pr-poehali-dev/pool-schedule/internal/database"
	"github.com/pr-poehali-dev/pool-schedule/internal/handler"
	"github.com/pr-poehali-dev/pool-schedule/internal/logging"
	"github.com/pr-poehali-dev/pool-schedule/internal/repository"
	"github.com/pr-poehali-dev/pool-schedule/internal/service"
	"github.com/pr-poehali-dev/pool-schedule/migrations"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := migrations.Up(ctx, pool); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	sessionRepo := repository.NewSessionRepository(pool)
	txManager := repository.NewPgxTxManager(pool)
	svc := service.NewScheduleService(sessionRepo, txManager, logger)
	h := handler.NewHandler(svc)

	router := handler.NewRouter(h, logger, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
