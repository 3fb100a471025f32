package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"readtrack/internal/api"
	"readtrack/internal/cache"
	"readtrack/internal/catalog"
	"readtrack/internal/config"
	"readtrack/internal/engine"
	"readtrack/internal/kvstore"
	"readtrack/internal/notify"
	"readtrack/internal/search"
	"readtrack/internal/settings"
	"readtrack/internal/storage"
	"readtrack/internal/storage/ch"
	"readtrack/internal/storage/local"
)

// App represents the application.
type App struct {
	config   *config.Config
	logger   *zap.Logger
	kv       kvstore.Store
	store    storage.RecordStore
	reminder *notify.Reminder
	server   *http.Server

	cancelReminder context.CancelFunc
}

// New creates and initializes a new application instance.
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("starting reading tracker", zap.String("storage_mode", cfg.StorageMode))

	if err := app.initStores(); err != nil {
		return nil, err
	}
	app.initServices()

	return app, nil
}

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// initStores opens the local key-value store and the record store selected
// by the storage mode.
func (a *App) initStores() error {
	ctx := context.Background()

	kv, err := kvstore.OpenSQLite(ctx, a.config.LocalDBPath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	a.kv = kv

	var store storage.RecordStore
	if a.config.StorageMode == config.StorageLocal {
		a.logger.Info("using local record store (offline mode)")
		store = local.New(kv)
	} else {
		a.logger.Info("connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.Bool("tls", a.config.ClickHouseUseTLS))
		chStore, err := ch.NewClickHouseStore(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		store = chStore
	}

	if err := store.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize record store: %w", err)
	}
	a.store = store
	return nil
}

// initServices wires the services and the HTTP server.
func (a *App) initServices() {
	metaCache := cache.New(a.kv)
	cat := catalog.New(a.store, metaCache, a.logger)
	eng := engine.New(a.store, metaCache, cat, a.logger)
	prefs := settings.New(a.kv)
	searcher := search.NewClient(a.config.GutendexBaseURL, a.logger)

	server := api.NewServer(cat, eng, prefs, searcher, a.logger)
	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if a.config.ReminderEnabled() {
		botAPI, err := tgbotapi.NewBotAPI(a.config.TelegramToken)
		if err != nil {
			a.logger.Warn("failed to create reminder bot, reminders disabled", zap.Error(err))
			return
		}
		a.reminder = notify.New(botAPI, a.config.ReminderChatID, a.config.ReminderUserID, prefs, eng, a.logger)
	}
}

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	if a.reminder != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.cancelReminder = cancel
		go func() {
			if err := a.reminder.Run(ctx); err != nil && err != context.Canceled {
				a.logger.Error("reminder loop stopped", zap.Error(err))
			}
		}()
	}

	<-sigChan

	a.logger.Info("shutting down")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	if a.cancelReminder != nil {
		a.cancelReminder()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing record store", zap.Error(err))
		return err
	}
	if err := a.kv.Close(); err != nil {
		a.logger.Error("error closing local store", zap.Error(err))
		return err
	}

	a.logger.Info("shutdown complete")
	return nil
}
