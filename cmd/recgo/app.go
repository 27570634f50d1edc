package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vmunix/recgo/internal/cache"
	"github.com/vmunix/recgo/internal/config"
	"github.com/vmunix/recgo/internal/metadata"
	"github.com/vmunix/recgo/internal/recommend"
	"github.com/vmunix/recgo/pkg/tmdb"
)

// app holds the wired-up services behind every command.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  cache.Store
	sqlite *cache.SQLite // nil when the redis backend is configured
	redis  *cache.Redis  // nil when the sqlite backend is configured
	meta   *metadata.Service
	agg    *recommend.Aggregator

	closers []func() error
}

// newApp loads configuration and wires the full service stack.
func newApp(ctx context.Context) (*app, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.Discover(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log := newLogger(cfg.Log.Level)
	a := &app{cfg: cfg, log: log}

	switch cfg.Cache.Backend {
	case "redis":
		rd, err := cache.NewRedis(cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = rd
		a.store = rd
		a.closers = append(a.closers, rd.Close)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		db, err := sql.Open("sqlite", cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open cache db: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		sq := cache.NewSQLite(db)
		if err := sq.Init(ctx); err != nil {
			return nil, err
		}
		a.sqlite = sq
		a.store = sq
	}

	var opts []tmdb.Option
	opts = append(opts, tmdb.WithLogger(log))
	if cfg.TMDB.BaseURL != "" {
		opts = append(opts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	if cfg.TMDB.RequestsPerSecond > 0 {
		opts = append(opts, tmdb.WithRequestsPerSecond(cfg.TMDB.RequestsPerSecond))
	}
	client := tmdb.New(cfg.TMDB.APIToken, opts...)

	a.meta = metadata.NewService(client, a.store, log)

	weights := recommend.DefaultWeights()
	if !cfg.Scoring.Empty() {
		weights = recommend.Weights{
			Source:     cfg.Scoring.Source,
			Genre:      cfg.Scoring.Genre,
			Keyword:    cfg.Scoring.Keyword,
			Pattern:    cfg.Scoring.Pattern,
			Rating:     cfg.Scoring.Rating,
			Popularity: cfg.Scoring.Popularity,
			Year:       cfg.Scoring.Year,
		}
	}
	scorer, err := recommend.NewScorer(weights)
	if err != nil {
		return nil, err
	}
	a.agg = recommend.New(a.meta, scorer, a.store, log)

	return a, nil
}

// Close releases app resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(level string) slog.Level {
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
