// Package app wires configuration, storage, and Telegram handlers into a
// runnable bot.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/partyfinder/core/bootstrap"
	coreconfig "github.com/m3rciful/partyfinder/core/config"
	"github.com/m3rciful/partyfinder/core/ops"
	coretelegram "github.com/m3rciful/partyfinder/core/telegram"
	"github.com/m3rciful/partyfinder/core/telegram/router"
	"github.com/m3rciful/partyfinder/internal/bot"
	"github.com/m3rciful/partyfinder/internal/dialog"
	"github.com/m3rciful/partyfinder/internal/export"
	"github.com/m3rciful/partyfinder/internal/profile/sqlstore"
	"github.com/m3rciful/partyfinder/internal/search"
	"github.com/m3rciful/partyfinder/migrations"
)

// App holds the wired services of one bot process.
type App struct {
	cfg *Config
	db  *sqlx.DB

	Store    *sqlstore.Store
	Engine   *dialog.Engine
	Exporter *export.Exporter
	Bot      *bot.Bot
}

// Bootstrap initializes logging and the database, then wires the services.
func Bootstrap(cfg *Config) (*App, error) {
	return BootstrapWith(cfg, bootstrap.Options{})
}

// BootstrapWith is Bootstrap with overridable pipeline hooks.
func BootstrapWith(cfg *Config, opts bootstrap.Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	opts.Config = &cfg.Config
	opts.Database = cfg.Database
	if opts.Migrations == nil {
		opts.Migrations = migrations.FS
	}
	res, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}
	return New(cfg, res.DB), nil
}

// New wires the services on top of an open database.
func New(cfg *Config, db *sqlx.DB) *App {
	store := sqlstore.New(db)
	engine := dialog.NewEngine(store, search.NewExecutor(store, cfg.Matchmaking.ResultLimit), nil)
	exporter := export.New(store, cfg.Telegram.AdminID)
	return &App{
		cfg:      cfg,
		db:       db,
		Store:    store,
		Engine:   engine,
		Exporter: exporter,
		Bot:      bot.New(engine, exporter),
	}
}

// CoreConfig exposes the core configuration section.
func (a *App) CoreConfig() *coreconfig.Config { return &a.cfg.Config }

// TelegramRunOptions registers handlers and builds the routes for RunTelegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.Bot.Register(reg); err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: register handlers: %w", err)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.Bot.Refuse,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.Bot, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      routes,
	}, nil
}

// Background returns the services that run next to the bot. The ops server
// is started only when ops.listen is configured.
func (a *App) Background() []func(ctx context.Context) error {
	if a.cfg.Ops.Listen == "" {
		return nil
	}
	srv := ops.New(a.cfg.Ops.Listen, a.Store)
	return []func(ctx context.Context) error{srv.Run}
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
