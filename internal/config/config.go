// Package config loads board settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/metroboard/metro/internal/cache"
	"github.com/metroboard/metro/internal/models"
)

// Layout modes
const (
	LayoutScroll = "scroll"
	LayoutPaged  = "paged"
)

// Display sinks
const (
	SinkTerminal = "terminal"
	SinkPNG      = "png"
	SinkOLED     = "oled"
)

// Bounds enforced by Validate
const (
	MinRefreshInterval = 10
	MaxRefreshInterval = 300
	MinPageDisplayTime = 5
	MaxPageDisplayTime = 60
	MinScrollSpeed     = 1
	MaxScrollSpeed     = 20
)

// Config is the full board configuration
type Config struct {
	Enabled         bool           `yaml:"enabled"`
	APIKey          string         `yaml:"wmata_api_key"`
	Station         string         `yaml:"reference_station"`
	RefreshInterval int            `yaml:"refresh_interval"`
	PageDisplayTime int            `yaml:"page_display_time"`
	Layout          string         `yaml:"layout"`
	DisplayOptions  DisplayOptions `yaml:"display_options"`
	Display         Display        `yaml:"display"`
	Cache           Cache          `yaml:"cache"`
	Log             Log            `yaml:"log"`
	Server          Server         `yaml:"server"`
}

// DisplayOptions tune how rows are drawn
type DisplayOptions struct {
	ShowLineAbbreviation   bool `yaml:"show_line_abbreviation"`
	ScrollLongDestinations bool `yaml:"scroll_long_destinations"`
	// ScrollSpeed is the scroll step in pixels per frame
	ScrollSpeed int `yaml:"scroll_speed"`
}

// Display describes the output canvas
type Display struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Sink   string `yaml:"sink"`
	// FrameInterval is the time between layout ticks
	FrameInterval time.Duration `yaml:"frame_interval"`
	PNGPath       string        `yaml:"png_path"`
	I2CBus        string        `yaml:"i2c_bus"`
}

// Cache selects the response cache
type Cache struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	Dir           string        `yaml:"dir"`
	Size          int           `yaml:"size"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// Options converts the section to cache options
func (c Cache) Options() cache.Options {
	return cache.Options{
		Backend: c.Backend,
		TTL:     c.TTL,
		Dir:     c.Dir,
		Size:    c.Size,
		Redis: cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			TTL:      c.TTL,
		},
	}
}

// Server configures the HTTP status surface
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Enabled:         true,
		Station:         "metro center",
		RefreshInterval: 30,
		PageDisplayTime: 10,
		Layout:          LayoutScroll,
		DisplayOptions: DisplayOptions{
			ShowLineAbbreviation:   true,
			ScrollLongDestinations: true,
			ScrollSpeed:            7,
		},
		Display: Display{
			Width:         64,
			Height:        32,
			Sink:          SinkTerminal,
			FrameInterval: 250 * time.Millisecond,
			PNGPath:       "board.png",
		},
		Cache: Cache{
			Backend:   cache.BackendFile,
			TTL:       10 * time.Second,
			Size:      cache.DefaultMemorySize,
			RedisAddr: "localhost:6379",
		},
		Log: Log{
			Level:  "info",
			Format: LogFormatText,
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the config file location used when none is given
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "metro", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "metro", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error unless required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- path is chosen by the operator
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Write encodes the configuration as YAML
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// StationCode resolves the configured station name to its code
func (c *Config) StationCode() string {
	return models.StationCode(c.Station)
}

// RefreshDuration returns the refresh interval
func (c *Config) RefreshDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// PageDuration returns how long each page is shown
func (c *Config) PageDuration() time.Duration {
	return time.Duration(c.PageDisplayTime) * time.Second
}

// ConfigError reports one invalid setting
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s - %s", e.Field, e.Message)
}

func outOfRange(field string, v, lo, hi int) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf("must be between %d and %d, got %d", lo, hi, v)}
}

// Validate checks every setting and returns all problems joined.
// Each joined error is a *ConfigError.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, &ConfigError{Field: "wmata_api_key", Message: "is required"})
	}
	if strings.TrimSpace(c.Station) == "" {
		errs = append(errs, &ConfigError{Field: "reference_station", Message: "is required"})
	}
	if c.RefreshInterval < MinRefreshInterval || c.RefreshInterval > MaxRefreshInterval {
		errs = append(errs, outOfRange("refresh_interval", c.RefreshInterval, MinRefreshInterval, MaxRefreshInterval))
	}
	if c.PageDisplayTime < MinPageDisplayTime || c.PageDisplayTime > MaxPageDisplayTime {
		errs = append(errs, outOfRange("page_display_time", c.PageDisplayTime, MinPageDisplayTime, MaxPageDisplayTime))
	}
	if s := c.DisplayOptions.ScrollSpeed; s < MinScrollSpeed || s > MaxScrollSpeed {
		errs = append(errs, outOfRange("display_options.scroll_speed", s, MinScrollSpeed, MaxScrollSpeed))
	}
	switch c.Layout {
	case LayoutScroll, LayoutPaged:
	default:
		errs = append(errs, &ConfigError{Field: "layout", Message: fmt.Sprintf("must be %q or %q, got %q", LayoutScroll, LayoutPaged, c.Layout)})
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, &ConfigError{Field: "display", Message: fmt.Sprintf("invalid size %dx%d", c.Display.Width, c.Display.Height)})
	}
	switch c.Display.Sink {
	case SinkTerminal, SinkPNG, SinkOLED:
	default:
		errs = append(errs, &ConfigError{Field: "display.sink", Message: fmt.Sprintf("unknown sink %q", c.Display.Sink)})
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendMemory, cache.BackendRedis:
	default:
		errs = append(errs, &ConfigError{Field: "cache.backend", Message: fmt.Sprintf("unknown backend %q", c.Cache.Backend)})
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, &ConfigError{Field: "log.level", Message: err.Error()})
	}
	if c.Log.Format != LogFormatText && c.Log.Format != LogFormatJSON {
		errs = append(errs, &ConfigError{Field: "log.format", Message: fmt.Sprintf("must be %q or %q", LogFormatText, LogFormatJSON)})
	}

	return errors.Join(errs...)
}

// Masked is the configuration with the API key hidden
type Masked struct {
	Station         string `json:"reference_station"`
	APIKey          string `json:"wmata_api_key"`
	RefreshInterval int    `json:"refresh_interval"`
	PageDisplayTime int    `json:"page_display_time"`
}

// MaskedView returns the settings that are safe to show
func (c *Config) MaskedView() Masked {
	key := "Not configured"
	if c.APIKey != "" {
		key = "***"
	}
	return Masked{
		Station:         c.Station,
		APIKey:          key,
		RefreshInterval: c.RefreshInterval,
		PageDisplayTime: c.PageDisplayTime,
	}
}
