// Package config loads and writes the vtable configuration file.
//
// The file is TOML, located at $XDG_CONFIG_HOME/vtable/config.toml (falling
// back to ~/.config/vtable/config.toml). Every field is optional; missing
// fields keep their [Default] value and command-line flags override both.
//
//	rows       = 10000
//	row_height = 50.0
//	viewport   = 600.0
//	overscan   = 10
//	seed       = 1
//	locale     = "pt-BR"
//	currency   = "BRL"
//
//	[server]
//	addr = ":8080"
package config

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/vtable/pkg/errors"
)

const (
	appName  = "vtable"
	fileName = "config.toml"
)

// Config holds the settings shared by all commands.
type Config struct {
	Rows      int     `toml:"rows"`
	RowHeight float64 `toml:"row_height"`
	Viewport  float64 `toml:"viewport"`
	Overscan  int     `toml:"overscan"`
	Seed      uint64  `toml:"seed"`
	Locale    string  `toml:"locale"`
	Currency  string  `toml:"currency"`
	Server    Server  `toml:"server"`
}

// Server holds the HTTP API settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration: 10,000 rows of 50 units in a
// 600-unit viewport with 10 rows of overscan, formatted for Brazilian
// Portuguese.
func Default() Config {
	return Config{
		Rows:      10000,
		RowHeight: 50,
		Viewport:  600,
		Overscan:  10,
		Seed:      1,
		Locale:    "pt-BR",
		Currency:  "BRL",
		Server:    Server{Addr: ":8080"},
	}
}

// Validate checks every field, reporting the first invalid one.
func (c Config) Validate() error {
	checks := []struct {
		field string
		err   error
	}{
		{"rows", errors.ValidateCount(c.Rows)},
		{"row_height", errors.ValidateSize(0, c.RowHeight)},
		{"viewport", errors.ValidateViewport(c.Viewport)},
		{"overscan", errors.ValidateOverscan(c.Overscan)},
		{"locale", errors.ValidateLocale(c.Locale)},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, ch.err, "%s", ch.field)
		}
	}
	if len(c.Currency) != 3 {
		return errors.New(errors.ErrCodeInvalidConfig, "currency must be a 3-letter ISO 4217 code, got %q", c.Currency)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	return nil
}

// Dir returns the configuration directory using the XDG convention
// (~/.config/vtable/).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the file at path on top of [Default]. A missing file is not an
// error. Unknown keys are rejected so typos do not silently fall back to
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Write stores cfg at path, creating parent directories. An existing file is
// only replaced when overwrite is set.
func Write(path string, cfg Config, overwrite bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
