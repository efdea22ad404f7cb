package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/agobackup/internal/api"
	"github.com/iconidentify/agobackup/internal/api/handler"
	"github.com/iconidentify/agobackup/internal/backup"
	"github.com/iconidentify/agobackup/internal/config"
	"github.com/iconidentify/agobackup/internal/portal"
	"github.com/iconidentify/agobackup/internal/repository"
	"github.com/iconidentify/agobackup/internal/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("agobackup %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting agobackup",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure the backup root exists before any request hits it
	if err := os.MkdirAll(cfg.Backup.Root, 0755); err != nil {
		logger.Error("failed to create backup root", "error", err)
		os.Exit(1)
	}

	// Attempt history is optional: no path, no persistence
	var history *repository.HistoryRepository
	if cfg.History.Path != "" {
		history, err = repository.NewHistoryRepository(cfg.History.Path)
		if err != nil {
			logger.Error("failed to open history database", "error", err)
			os.Exit(1)
		}
		defer history.Close()
	}

	// Initialize dependencies
	sessions := session.NewStore(cfg.Server.SessionTTL)
	orchestrator := backup.NewOrchestrator(cfg.Backup.Root, logger)

	connect := func(ctx context.Context, url, username, password string) (portal.Connection, error) {
		return portal.Connect(ctx, url, username, password, cfg.Portal.Timeout)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(connect, sessions, cfg.Portal.URL, logger)
	backupHandler := handler.NewBackupHandler(orchestrator, history, logger)
	searchHandler := handler.NewSearchHandler(logger)
	historyHandler := handler.NewHistoryHandler(history, logger)
	healthHandler := handler.NewHealthHandler(cfg.Backup.Root)
	uiHandler := handler.NewUIHandler()

	// Setup router
	router := api.NewRouter(
		authHandler,
		backupHandler,
		searchHandler,
		historyHandler,
		healthHandler,
		uiHandler,
		sessions,
	)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr, "backup_root", cfg.Backup.Root)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
