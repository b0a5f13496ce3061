// Package config loads pulsegrid settings from a TOML file.
//
// Lookup order is the --config flag, then $XDG_CONFIG_HOME/pulsegrid/pulsegrid.toml,
// then ~/.config/pulsegrid/pulsegrid.toml. A missing file yields [Default].
// Keys absent from the file keep their default values.
//
//	[layout]
//	precision = 2
//	strict = false
//
//	[cache]
//	backend = "file"   # file, redis or none
//	ttl = "168h"
//
//	[render]
//	format = "svg"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// FileName is the config file name looked up in the config directory.
const FileName = "pulsegrid.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full settings tree.
type Config struct {
	Layout Layout `toml:"layout"`
	Cache  Cache  `toml:"cache"`
	Render Render `toml:"render"`
	Server Server `toml:"server"`
}

// Layout configures the engine and new grids.
type Layout struct {
	Precision     int     `toml:"precision"`
	Strict        bool    `toml:"strict"`
	MaxSettle     int     `toml:"max_settle"`
	MinCellWidth  float64 `toml:"min_cell_width"`
	MinCellHeight float64 `toml:"min_cell_height"`
	AxisRow       int     `toml:"axis_row"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
}

// Render holds wireframe defaults.
type Render struct {
	Format    string  `toml:"format"`
	Stroke    float64 `toml:"stroke"`
	Margin    float64 `toml:"margin"`
	Outline   string  `toml:"outline"`
	Content   string  `toml:"content"`
	Grid      string  `toml:"grid"`
	ShowGrid  bool    `toml:"show_grid"`
	ShowLabel bool    `toml:"show_labels"`
}

// Server configures `pulsegrid serve`.
type Server struct {
	Addr    string `toml:"addr"`
	MaxBody int64  `toml:"max_body"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout: Layout{
			Precision: 2,
			MaxSettle: 8,
			AxisRow:   1,
		},
		Cache: Cache{
			Backend:   BackendFile,
			TTL:       Duration{7 * 24 * time.Hour},
			RedisAddr: "localhost:6379",
			Prefix:    "pulsegrid:",
		},
		Render: Render{
			Format:    "svg",
			Stroke:    0.5,
			Margin:    8,
			Outline:   "#1f2937",
			Content:   "#60a5fa",
			Grid:      "#d1d5db",
			ShowGrid:  true,
			ShowLabel: true,
		},
		Server: Server{
			Addr:    ":8080",
			MaxBody: 4 << 20,
		},
	}
}

// Load reads path over the defaults. An empty path searches the standard
// locations; a missing file there is not an error, but an explicit path
// must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data over base and validates the result. Unknown keys
// are rejected.
func Parse(data []byte, base Config) (Config, error) {
	md, err := toml.Decode(string(data), &base)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidInput, err, "config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, errors.New(errors.ErrCodeInvalidInput, "config: unknown key %q", undecoded[0].String())
	}
	return base, base.Validate()
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch {
	case c.Layout.Precision < 0 || c.Layout.Precision > 9:
		return errors.New(errors.ErrCodeInvalidInput, "layout.precision must be between 0 and 9")
	case c.Layout.MaxSettle < 0:
		return errors.New(errors.ErrCodeInvalidInput, "layout.max_settle must not be negative")
	case c.Layout.MinCellWidth < 0 || c.Layout.MinCellHeight < 0:
		return errors.New(errors.ErrCodeInvalidInput, "layout min cell size must not be negative")
	case c.Layout.AxisRow < 0:
		return errors.New(errors.ErrCodeInvalidInput, "layout.axis_row must not be negative")
	case !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend):
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q (want file, redis or none)", c.Cache.Backend)
	case c.Cache.TTL.Duration < 0:
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	case c.Render.Stroke < 0 || c.Render.Margin < 0:
		return errors.New(errors.ErrCodeInvalidInput, "render stroke and margin must not be negative")
	case c.Server.MaxBody <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "server.max_body must be positive")
	}
	return nil
}

// Write encodes c as TOML to path, creating parent directories.
func Write(c Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DefaultPath returns the XDG config file location, or "" if no home
// directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pulsegrid", FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pulsegrid", FileName)
}
