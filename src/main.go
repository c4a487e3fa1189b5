package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contre95/tubequeue/src/features/config"
	"github.com/contre95/tubequeue/src/features/hosting"
	"github.com/contre95/tubequeue/src/features/logging"
	"github.com/contre95/tubequeue/src/features/metrics"
	"github.com/contre95/tubequeue/src/features/playback"
	"github.com/contre95/tubequeue/src/features/queue"
	"github.com/contre95/tubequeue/src/features/resolving"
	"github.com/contre95/tubequeue/src/infra/artwork"
	"github.com/contre95/tubequeue/src/infra/database"
	"github.com/contre95/tubequeue/src/infra/files"
	"github.com/contre95/tubequeue/src/infra/tag"
	"github.com/contre95/tubequeue/src/infra/ytdlp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const configPath = "config.yaml"

func main() {
	// Load configuration
	cfgManager, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	slog.SetDefault(logging.SetupLogger(cfgManager))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfgManager.Watch(ctx, configPath, func(*config.Config) {
		slog.SetDefault(logging.SetupLogger(cfgManager))
	}); err != nil {
		slog.Warn("Config hot reload disabled", "error", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Queues
	queues := queue.NewRegistry(func() int { return cfgManager.Get().Queue.MaxSize })
	collector := metrics.NewCollector(registry, queues.Len)
	queueService := queue.NewService(queues, collector)

	// Media resolving
	ytClient := ytdlp.NewClient(cfgManager)
	versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if version, err := ytClient.Version(versionCtx); err != nil {
		slog.Error("yt-dlp is not usable, downloads will fail", "path", cfgManager.Get().Ytdlp.Path, "error", err)
	} else {
		slog.Info("Using yt-dlp", "version", version)
	}
	cancel()

	db, err := database.NewSqliteSongCache(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	resolvingService := resolving.NewService(
		cfgManager,
		ytClient,
		db,
		files.NewWorkspace(cfgManager),
		tag.NewTagReader(),
		tag.NewTagWriter(),
		artwork.NewService(cfgManager),
		collector,
	)
	playbackService := playback.NewService(queueService, resolvingService, db)

	// Remove leftovers of interrupted downloads
	janitor := files.NewJanitor(cfgManager)
	janitor.Start()
	defer janitor.Stop()

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		telegramBot, err = hosting.NewTelegramBot(cfgManager, playbackService, queueService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, queueService, playbackService, registry)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
			stop()
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	<-ctx.Done()
	slog.Info("Shutting down server...")

	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	if err := server.Shutdown(); err != nil {
		slog.Error("Failed to shutdown server", "error", err)
	}
	slog.Info("Server gracefully shut down.")
}
