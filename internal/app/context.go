// Package app wires the workspace pieces together for the CLI and the
// server: database, KV store, config, logger, stores and session.
package app

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"mzstay/internal/authapi"
	"mzstay/internal/config"
	"mzstay/internal/logging"
	"mzstay/internal/migrate"
	"mzstay/internal/session"
	"mzstay/internal/storage"
	"mzstay/internal/store"
)

// App holds everything a command needs after Open.
type App struct {
	Workspace string
	Config    *config.Config
	Log       *zap.Logger
	DB        *sql.DB
	KV        storage.KV
	Tasks     *store.Tasks
	Notices   *store.Notices
	Repairs   *store.Repairs
	Session   *session.Manager
}

// Open prepares the workspace: ensures the .mzstay directory, opens and
// migrates the database, loads config (defaults when mzstay.yml is
// absent) and builds the stores and session manager on top.
func Open(workspace string) (*App, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	conn, err := storage.Open(storage.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	kv := storage.NewSQLite(conn)
	creds := session.NewCredStore(workspace, kv)
	api := authapi.New(cfg.API.BaseURL, log)
	return &App{
		Workspace: workspace,
		Config:    cfg,
		Log:       log,
		DB:        conn,
		KV:        kv,
		Tasks:     store.NewTasks(kv, log),
		Notices:   store.NewNotices(kv, log),
		Repairs:   store.NewRepairs(kv, log),
		Session:   session.New(cfg, api, creds, log),
	}, nil
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
