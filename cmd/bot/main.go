package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mpetrov/threadsync/internal/auth"
	"github.com/mpetrov/threadsync/internal/config"
	"github.com/mpetrov/threadsync/internal/database"
	"github.com/mpetrov/threadsync/internal/formatter"
	"github.com/mpetrov/threadsync/internal/poller"
	"github.com/mpetrov/threadsync/internal/telegram"
	"github.com/mpetrov/threadsync/internal/threads"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting threads-to-telegram mirror bot")

	// Connect to database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	// Create components
	threadsClient := threads.NewClient(threads.Config{
		AppID:       cfg.ThreadsAppID,
		AppSecret:   cfg.ThreadsAppSecret,
		RedirectURI: cfg.ThreadsRedirectURI,
	})
	tgFormatter := formatter.NewTelegramFormatter()

	// Create bot
	tgBot, err := telegram.NewBot(telegram.BotDeps{
		Config: cfg,
		DB:     db,
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	sender := telegram.NewSender(tgBot.Client(), db, tgFormatter, logger)

	// Auth flow: service + callback server
	authService := auth.NewService(threadsClient, db, logger)
	authServer := auth.NewServer(authService, cfg.HTTPAddr, cfg.TelegramBotUsername, logger)

	// Polling pipeline
	syncPoller := poller.New(db, threadsClient, sender, cfg.PollInterval, cfg.PollWorkers, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := authServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down auth server", "error", err)
		}
		cancel()
	}()

	go func() {
		if err := authServer.Start(); err != nil {
			logger.Error("auth server failed", "error", err)
			cancel()
		}
	}()
	go syncPoller.Run(ctx)

	// Start bot
	logger.Info("bot is running, press Ctrl+C to stop")
	tgBot.Start(ctx)

	logger.Info("bot stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
			NoColor:    false,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
