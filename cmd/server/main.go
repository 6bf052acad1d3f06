package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("WordFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("scan_worker_count=%d", cfg.ScanWorkerCount)
	log.Debug("scan_queue_size=%d", cfg.ScanQueueSize)
	log.Debug("duplicate_preset=%s", cfg.DuplicatePreset)
	log.Debug("multiple_choice_options=%d", cfg.MultipleChoiceOptions)
	log.Debug("session_max_items=%d", cfg.SessionMaxItems)
	log.Debug("session_ttl_minutes=%d", cfg.SessionTTLMinutes)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	cardRepo := sqlite.NewCardRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)

	scanPool := worker.NewPool(cfg.ScanWorkerCount, cfg.ScanQueueSize)

	srv := &api.Server{
		CardService:      services.NewCardService(cardRepo),
		DuplicateService: services.NewDuplicateService(cardRepo, jobs.NewWorkerQueue(scanPool, cardRepo), cfg.DuplicatePreset),
		PracticeService: services.NewPracticeService(cardRepo, sessionRepo, services.PracticeOptions{
			OptionCount: cfg.MultipleChoiceOptions,
			MaxItems:    cfg.SessionMaxItems,
			SessionTTL:  time.Duration(cfg.SessionTTLMinutes) * time.Minute,
		}),
		Health: database,
	}

	ctx, cancel := context.WithCancel(context.Background())
	scanPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Scans still queued are abandoned; their reports would only be cached in memory.
	cancel()
	log.Debug("stopping scan pool")
	scanPool.Stop()

	log.Info("===========================================")
	log.Info("WordFlash Server Stopped")
	log.Info("===========================================")
}
