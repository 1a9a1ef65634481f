// Package config loads the jottty configuration file and resolves where the
// database lives.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// EnvConfigDir names the directory holding config.toml.
	EnvConfigDir = "JOTTTY_CONFIG"

	// EnvDBPath overrides every configured database location.
	EnvDBPath = "JOTTTY_DB_PATH"

	FileName = "config.toml"
	dirName  = ".jottty"
)

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config is the on-disk configuration.
type Config struct {
	Bullet   string `toml:"bullet"`
	Editor   string `toml:"editor"`
	DBPath   string `toml:"db_path,omitempty"`
	DBDir    string `toml:"db_dir,omitempty"`
	Backend  string `toml:"backend,omitempty"`
	Codec    string `toml:"codec,omitempty"`
	LogLevel string `toml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nvim"
	}
	return Config{
		Bullet:  "-",
		Editor:  editor,
		Backend: BackendSQLite,
		Codec:   "json",
	}
}

// DefaultDir returns ~/.jottty.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Path returns the config file location: $JOTTTY_CONFIG/config.toml when
// set, otherwise ~/.jottty/config.toml.
func Path() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(dir, FileName), nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config file at path, or at Path() when path is empty.
// A missing file is created with the defaults. Keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := writeDefault(path, cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func writeDefault(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(Config{Bullet: cfg.Bullet, Editor: cfg.Editor})
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// Validate checks the enumerated keys.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendBadger)
	}
	switch c.Codec {
	case "", "json", "zstd":
	default:
		return fmt.Errorf("unknown codec %q (want json or zstd)", c.Codec)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. Empty means INFO.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// dbFileName is the store name used inside db_dir and the default dir.
func (c *Config) dbFileName() string {
	if c.Backend == BackendBadger {
		return "db.badger"
	}
	return "db.sqlite"
}

// ResolveDBPath picks the database location in priority order:
// $JOTTTY_DB_PATH, db_path, db_dir/<file>, ~/.jottty/<file>. The parent
// directory is created. The in-memory path ":memory:" is returned untouched.
func (c *Config) ResolveDBPath() (string, error) {
	path, err := c.dbPath()
	if err != nil {
		return "", err
	}
	if path == ":memory:" {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

func (c *Config) dbPath() (string, error) {
	if p := os.Getenv(EnvDBPath); p != "" {
		return p, nil
	}
	if c.DBPath != "" {
		return ExpandTilde(c.DBPath)
	}
	if c.DBDir != "" {
		dir, err := ExpandTilde(c.DBDir)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, c.dbFileName()), nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.dbFileName()), nil
}

// ExpandTilde replaces a leading "~/" with the user's home directory.
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
