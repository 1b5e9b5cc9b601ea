package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"signalwatcher/config"
	"signalwatcher/internal/adapters/bybit"
	"signalwatcher/internal/adapters/gsheets"
	"signalwatcher/internal/adapters/ledger"
	"signalwatcher/internal/adapters/logger"
	"signalwatcher/internal/adapters/sqlite"
	"signalwatcher/internal/adapters/telegram"
	"signalwatcher/internal/app"
	"signalwatcher/internal/notify"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Sheets Row Store (runs the OAuth flow on first start)
	rows, err := gsheets.New(ctx, gsheets.Config{
		SpreadsheetID:   cfg.SpreadsheetID,
		CredentialsPath: cfg.CredentialsPath,
		TokenPath:       cfg.TokenPath,
		Logger:          appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Sheets client")
		log.Fatalf("FATAL: Failed to initialize Sheets client: %v", err)
	}

	// 4. Initialize Quote Client
	quotes, err := bybit.New(bybit.Config{Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Bybit client")
		log.Fatalf("FATAL: Failed to initialize Bybit client: %v", err)
	}

	// 5. Initialize Sent-Trades Ledger
	sent, err := ledger.New(ledger.Config{
		Path:      cfg.LedgerPath,
		Retention: config.LedgerRetention,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize sent-trades ledger")
		log.Fatalf("FATAL: Failed to initialize sent-trades ledger: %v", err)
	}

	// 6. Initialize Trade Archive
	archive, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize trade archive")
		log.Fatalf("FATAL: Failed to initialize trade archive: %v", err)
	}
	defer func() {
		if err := archive.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing trade archive")
		}
	}()

	// 7. Initialize Telegram Messenger and Notifier
	messenger, err := telegram.New(telegram.Config{
		Token:   cfg.TelegramToken,
		ChatID:  cfg.TelegramChatID,
		TopicID: cfg.TelegramTopicID,
		Logger:  appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Telegram messenger")
		log.Fatalf("FATAL: Failed to initialize Telegram messenger: %v", err)
	}
	notifier, err := notify.New(notify.Config{Messenger: messenger, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize notifier")
		log.Fatalf("FATAL: Failed to initialize notifier: %v", err)
	}

	// 8. Initialize and Start the Application Service
	service, err := app.NewService(cfg, appLogger, rows, quotes, sent, archive, notifier)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize service")
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	if err := service.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "Service exited with error")
		log.Fatalf("FATAL: Service exited with error: %v", err)
	}

	appLogger.Info(ctx, "Application finished gracefully.")
}
