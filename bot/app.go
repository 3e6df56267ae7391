// Package bot is the cotabot application: it glues the cota session core
// to the Telegram runtime provided by core/telegram.
package bot

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cotabot/core/bootstrap"
	coretelegram "github.com/m3rciful/cotabot/core/telegram"
	"github.com/m3rciful/cotabot/cota"
	"github.com/m3rciful/cotabot/storage"
)

// App owns the session registry and the live transport.
type App struct {
	cfg       *Config
	registry  *cota.Registry
	transport *TelegramTransport
	db        *sqlx.DB
}

// Bootstrap initializes logging, opens the configured snapshot store and
// builds the application.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:      cfg.CoreConfig(),
		Database:    cfg.Database,
		UseDatabase: cfg.Storage.Driver == StoragePostgres,
	})
	if err != nil {
		return nil, err
	}

	var store cota.Store
	switch cfg.Storage.Driver {
	case StoragePostgres:
		store = storage.NewPostgresStore(res.DB)
	default:
		fs, err := storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	return &App{
		cfg:      cfg,
		registry: cota.NewRegistry(store),
		db:       res.DB,
	}, nil
}

// TelegramRunOptions wires the app into the bot run loop.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		SetupCommands:  a.setupCommands,
		SetupCallbacks: a.setupCallbacks,
		TextConsumer:   a,
		OnStart:        a.onStart,
		OnShutdown:     a.onShutdown,
	}, nil
}

// onStart runs once the bot is constructed but before updates flow: attach
// the transport and load the persisted sessions.
func (a *App) onStart(rt *coretelegram.Runtime) error {
	ttl := time.Duration(a.cfg.Telegram.NoticeTTLSeconds) * time.Second
	a.transport = NewTelegramTransport(rt.Bot, rt.Dispatcher, ttl)
	a.registry.AttachTransport(a.transport)
	return a.registry.Load(context.Background())
}

func (a *App) onShutdown(_ *coretelegram.Runtime) {
	if a.db != nil {
		_ = a.db.Close()
	}
}
