package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the whole application configuration. It is built once by Load
// and passed explicitly to the container.
type Config struct {
	Env       string          `koanf:"env"`
	Server    ServerConfig    `koanf:"server"`
	Redis     RedisConfig     `koanf:"redis"`
	Scraper   ScraperConfig   `koanf:"scraper"`
	Refresher RefresherConfig `koanf:"refresher"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`

	// LiveTTL expires cached results; zero keeps them until replaced.
	LiveTTL time.Duration `koanf:"live_ttl"`
}

// ScraperConfig drives the place page navigator and label source.
type ScraperConfig struct {
	PlaceURLs      []string      `koanf:"place_urls"`
	UserAgent      string        `koanf:"user_agent"`
	Timeout        time.Duration `koanf:"timeout"`
	ConsentButtons []string      `koanf:"consent_buttons"`
	SectionMarkers []string      `koanf:"section_markers"`

	// MaxScrollAttempts bounds the polling for the popular times section.
	MaxScrollAttempts int           `koanf:"max_scroll_attempts"`
	ScrollWait        time.Duration `koanf:"scroll_wait"`
	MaxLabels         int           `koanf:"max_labels"`

	// FixturesDir holds saved place pages used by the dev environment.
	FixturesDir string `koanf:"fixtures_dir"`
}

type RefresherConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

const (
	EnvProd = "prod"
	EnvDev  = "dev"
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Env:    EnvProd,
		Server: ServerConfig{Port: 8080},
		Redis: RedisConfig{
			Address: "redis:6379",
			DB:      0,
			LiveTTL: 2 * time.Hour,
		},
		Scraper: ScraperConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			Timeout:   60 * time.Second,
			ConsentButtons: []string{
				"Accept all",
				"I agree",
				"Accept",
				"Agree",
				"Kabul ediyorum",
				"Tümünü kabul et",
				"Kabul et",
			},
			SectionMarkers:    []string{"Popular times", "Popüler saatler"},
			MaxScrollAttempts: 12,
			ScrollWait:        600 * time.Millisecond,
			MaxLabels:         800,
			FixturesDir:       "resources",
		},
		Refresher: RefresherConfig{
			Enabled:  true,
			Interval: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the values that would otherwise fail deep inside a
// component.
func (c *Config) Validate() error {
	var errs []error
	if c.Env != EnvProd && c.Env != EnvDev {
		errs = append(errs, fmt.Errorf("env must be %q or %q, got %q", EnvProd, EnvDev, c.Env))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Redis.Address == "" {
		errs = append(errs, errors.New("redis.address is required"))
	}
	if c.Redis.LiveTTL < 0 {
		errs = append(errs, errors.New("redis.live_ttl must not be negative"))
	}
	if c.Scraper.MaxScrollAttempts <= 0 {
		errs = append(errs, fmt.Errorf("scraper.max_scroll_attempts must be positive, got %d", c.Scraper.MaxScrollAttempts))
	}
	if c.Scraper.MaxLabels <= 0 {
		errs = append(errs, fmt.Errorf("scraper.max_labels must be positive, got %d", c.Scraper.MaxLabels))
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, errors.New("scraper.timeout must be positive"))
	}
	if c.Refresher.Enabled && c.Refresher.Interval <= 0 {
		errs = append(errs, errors.New("refresher.interval must be positive when the refresher is enabled"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// FixturePath resolves a fixture file name against PROJECT_ROOT (or the
// working directory) and the configured fixtures directory.
func (c *Config) FixturePath(name string) string {
	return filepath.Join(BaseDir(), c.Scraper.FixturesDir, name)
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
