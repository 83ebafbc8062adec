package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"marketscan/config"
	"marketscan/internal/api/coingecko"
	"marketscan/internal/api/social"
	"marketscan/internal/api/twelvedata"
	"marketscan/internal/database"
	"marketscan/internal/notify"
	"marketscan/internal/pipeline"
	"marketscan/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Loading config failed")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	var sources []models.MarketDataSource
	sources = append(sources, coingecko.NewClient(coingecko.ClientOptions{
		Count:          cfg.CryptoCount,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	}))
	if cfg.TwelveAPIKey != "" {
		sources = append(sources, twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:         cfg.TwelveAPIKey,
			Symbols:        cfg.StockSymbols,
			RequestTimeout: cfg.RequestTimeout,
			MaxRetries:     cfg.MaxRetries,
			RetryDelay:     cfg.RetryDelay,
		}))
	} else {
		log.Warn().Msg("TWELVE_API_KEY not set, skipping equities")
	}

	var signals models.SignalSource = social.None{}
	if cfg.SignalBaseURL != "" {
		signals = social.NewClient(social.ClientOptions{
			BaseURL:        cfg.SignalBaseURL,
			RequestTimeout: cfg.RequestTimeout,
			MaxRetries:     cfg.MaxRetries,
			RetryDelay:     cfg.RetryDelay,
		})
	}

	var notifier models.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram notifier unavailable")
			notifier = nil
		}
	}

	var history models.HistoryStore
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("History store unavailable")
		} else {
			defer db.Close()
			history = db
		}
	}

	orch := pipeline.New(cfg, signals, notifier, history, sources...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		start := time.Now()
		if err := orch.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Scan run failed")
		} else {
			log.Info().Dur("took", time.Since(start)).Msg("Scan run complete")
		}
	}

	runOnce()
	if cfg.ScanInterval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
