package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/vmunix/postersync/internal/config"
	"github.com/vmunix/postersync/internal/history"
	"github.com/vmunix/postersync/internal/importer"
	"github.com/vmunix/postersync/internal/plex"
	"github.com/vmunix/postersync/internal/server"
	"github.com/vmunix/postersync/internal/state"
)

// app holds everything a command needs, built from the loaded config.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	paths    state.Paths
	interval time.Duration
	plex     *plex.Client
	ids      *state.ValidIDStore
	registry *state.Registry
	importer *importer.Importer
	history  *history.Store
	syncer   *server.Syncer
}

// loadConfig loads the config named by --config, or the discovered one.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		p, err := config.Discover()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, path, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openApp loads configuration and opens state, history and the Plex client.
// Configuration problems are returned before anything touches the network
// or the poster directories.
func openApp() (*app, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	interval, err := cfg.Schedule.IntervalDuration()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	paths := state.Paths{Dir: cfg.State.Dir}
	ids, err := state.OpenValidIDStore(paths.ValidIDs())
	if err != nil {
		return nil, fmt.Errorf("open valid ids: %w", err)
	}
	registry, err := state.OpenRegistry(paths.Libraries(), ids)
	if err != nil {
		return nil, fmt.Errorf("open library registry: %w", err)
	}
	if err := os.MkdirAll(paths.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	hist, err := history.Open(paths.History())
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	client := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token, plex.Options{
		ConnectTimeout: cfg.Plex.ConnectTimeout,
		Timeout:        cfg.Plex.Timeout,
	}, logger)

	imp := importer.New(client, ids, registry, importerConfig(cfg), logger)

	syncer, err := server.NewSyncer(imp, hist, server.Config{
		Paths:          paths,
		Interval:       interval,
		LockStaleAfter: cfg.Schedule.LockStaleAfter,
	}, logger)
	if err != nil {
		_ = hist.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		paths:    paths,
		interval: interval,
		plex:     client,
		ids:      ids,
		registry: registry,
		importer: imp,
		history:  hist,
		syncer:   syncer,
	}, nil
}

func importerConfig(cfg *config.Config) importer.Config {
	return importer.Config{
		Dirs: importer.Dirs{
			Movies:      cfg.Posters.MoviesDir(),
			Shows:       cfg.Posters.ShowsDir(),
			Seasons:     cfg.Posters.SeasonsDir(),
			Collections: cfg.Posters.CollectionsDir(),
		},
		Movies:           cfg.Posters.Movies,
		Shows:            cfg.Posters.Shows,
		Seasons:          cfg.Posters.Seasons,
		Collections:      cfg.Posters.Collections,
		ExcludeLibraries: cfg.Posters.ExcludeLibraries,
		PageSize:         cfg.Plex.PageSize,
		RefreshExisting:  cfg.Posters.RefreshExisting,
	}
}

func (a *app) Close() {
	if err := a.history.Close(); err != nil {
		a.log.Warn("close history", "error", err)
	}
}
