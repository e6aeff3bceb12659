package main

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessmonitor/internal/application"
	"chessmonitor/internal/delivery/discord"
	"chessmonitor/internal/delivery/httpapi"
	"chessmonitor/internal/delivery/telegram"
	"chessmonitor/internal/fetch"
	"chessmonitor/internal/parser"
	"chessmonitor/internal/repository"
	"chessmonitor/pkg/config"
	"chessmonitor/pkg/logger"
	"chessmonitor/pkg/sheets"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.LogLevel)

	db, err := repository.NewPostgresDB(&cfg.Repo)
	if err != nil {
		log.Error("failed to init db: %s", err.Error())
		return
	}
	defer db.Close()

	log.Info("Running migrations...")
	if err := repository.RunMigrations(db, migrationFS); err != nil {
		log.Error("failed to run migrations: %s", err.Error())
		return
	}
	log.Info("Migrations applied successfully")

	repos := repository.NewRepository(db)
	fetcher := fetch.NewClient(cfg.SourceBaseURL, cfg.FetchTimeout)
	pageParser := parser.New(log)

	var notifiers []application.Notifier
	var discordNotifier *discord.Notifier

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Error("failed to init telegram notifier: %s", err.Error())
			return
		}
		notifiers = append(notifiers, tg)
	}
	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		discordNotifier, err = discord.NewNotifier(cfg.DiscordToken, cfg.DiscordChannelID, log)
		if err != nil {
			log.Error("failed to init discord notifier: %s", err.Error())
			return
		}
		notifiers = append(notifiers, discordNotifier)
	}

	var sheetsClient sheets.Client
	if cfg.SheetsCredentials != "" && cfg.SpreadsheetID != "" {
		sheetsClient, err = sheets.NewGoogleSheetsClient(cfg.SheetsCredentials)
		if err != nil {
			log.Error("failed to init sheets client: %s", err.Error())
			return
		}
	}

	services := application.NewService(repos, fetcher, pageParser, notifiers,
		sheetsClient, cfg.SpreadsheetID, cfg.PollInterval, log)

	server := httpapi.NewServer(services, log)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	go func() {
		log.Info("HTTP server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error: %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	services.Monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)

	if discordNotifier != nil {
		_ = discordNotifier.Close()
	}

	log.Info("Monitor stopped")
}
