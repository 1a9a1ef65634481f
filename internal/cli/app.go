package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jottty/jottty/internal/codec"
	"github.com/jottty/jottty/internal/config"
	"github.com/jottty/jottty/internal/datom"
	"github.com/jottty/jottty/internal/engine"
	"github.com/jottty/jottty/internal/journal"
	"github.com/jottty/jottty/internal/kvstore"
	"github.com/jottty/jottty/internal/store"
	"github.com/jottty/jottty/internal/transact"
)

// App is an opened backend with everything built on top of it.
type App struct {
	Backend datom.Backend
	Engine  *engine.Engine
	Gateway *transact.Gateway
	Journal *journal.Journal

	codec codec.Codec
}

// openApp opens the configured backend. The caller must Close the app.
func (opts *RootOptions) openApp(ctx context.Context) (*App, error) {
	path, err := opts.dbPath()
	if err != nil {
		return nil, err
	}
	return OpenApp(ctx, opts.Config, path, opts.Logger)
}

func (opts *RootOptions) dbPath() (string, error) {
	if opts.DBPath != "" {
		return config.ExpandTilde(opts.DBPath)
	}
	return opts.Config.ResolveDBPath()
}

// OpenApp opens the backend named by cfg at path and ensures its schema.
func OpenApp(ctx context.Context, cfg *config.Config, path string, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	c, err := codec.ForName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	backend, err := openBackend(cfg.Backend, path, c, log)
	if err != nil {
		closeCodec(c)
		return nil, err
	}
	if err := backend.EnsureSchema(ctx); err != nil {
		backend.Close()
		closeCodec(c)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	log.Debug("database ready", "backend", backendName(cfg.Backend), "path", path, "codec", c.Name())

	eng := engine.New(backend, engine.WithLogger(log))
	return &App{
		Backend: backend,
		Engine:  eng,
		Gateway: transact.NewGateway(eng, transact.WithLogger(log)),
		Journal: journal.New(backend, eng, journal.WithLogger(log)),
		codec:   c,
	}, nil
}

func openBackend(name, path string, c codec.Codec, log *slog.Logger) (datom.Backend, error) {
	switch backendName(name) {
	case config.BackendSQLite:
		s, err := store.Open(path, store.WithCodec(c), store.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendBadger:
		dir := path
		if dir == store.MemoryPath {
			dir = ""
		}
		s, err := kvstore.Open(dir, kvstore.WithCodec(c), kvstore.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func backendName(name string) string {
	if name == "" {
		return config.BackendSQLite
	}
	return name
}

// Close closes the backend and the codec.
func (a *App) Close() error {
	return errors.Join(a.Backend.Close(), closeCodec(a.codec))
}

func closeCodec(c codec.Codec) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
