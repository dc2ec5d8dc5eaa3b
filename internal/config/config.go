// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = 8080
	DefaultMaxSidePx       = 700
	DefaultThumbnailSidePx = 150
	DefaultResizeDebounce  = 150 * time.Millisecond
	DefaultMaxSessions     = 1000
	DefaultRefreshCron     = "0 4 * * *"
	DefaultFetchTimeout    = 30 * time.Second
	DefaultFetchWorkers    = 8
	DefaultCatalogOrigin   = "https://cummings.ee"
	DefaultRefreshCooldown = 30 * time.Second
	DefaultRefreshPerHour  = 10
	DefaultRefreshGlobal   = 60
	DefaultDatabaseDriver  = "sqlite"
	DefaultDatabaseFile    = "file:poemgrid?mode=memory&cache=shared"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type CatalogConfig struct {
	Origin         string        `yaml:"origin"`
	RefreshCron    string        `yaml:"refresh_cron"`
	Concurrency    int           `yaml:"concurrency"`
	Timeout        time.Duration `yaml:"timeout"`

	// SkipInitialRefresh leaves the store empty until the first scheduled refresh.
	SkipInitialRefresh bool `yaml:"skip_initial_refresh"`

	// Manual refresh throttling. The global cap spans all clients.
	RefreshCooldown      time.Duration `yaml:"refresh_cooldown"`
	RefreshPerHour       int           `yaml:"refresh_per_hour"`
	RefreshGlobalPerHour int           `yaml:"refresh_global_per_hour"`
	TrustProxy           bool          `yaml:"trust_proxy"`
}

type RenderConfig struct {
	MaxSidePx       int           `yaml:"max_side_px"`
	ThumbnailSidePx int           `yaml:"thumbnail_side_px"`
	ResizeDebounce  time.Duration `yaml:"resize_debounce"`
	MaxSessions     int           `yaml:"max_sessions"`
	// ClampCircleRadius keeps full-view match circles inside their cell.
	ClampCircleRadius bool `yaml:"clamp_circle_radius"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Render   RenderConfig   `yaml:"render"`

	Features struct {
		EnableDebug bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes yaml configuration and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = DefaultPort
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDatabaseDriver
	}
	if c.Database.Filename == "" {
		c.Database.Filename = DefaultDatabaseFile
	}
	if c.Catalog.Origin == "" {
		c.Catalog.Origin = DefaultCatalogOrigin
	}
	if c.Catalog.RefreshCron == "" {
		c.Catalog.RefreshCron = DefaultRefreshCron
	}
	if c.Catalog.Concurrency == 0 {
		c.Catalog.Concurrency = DefaultFetchWorkers
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = DefaultFetchTimeout
	}
	if c.Catalog.RefreshCooldown == 0 {
		c.Catalog.RefreshCooldown = DefaultRefreshCooldown
	}
	if c.Catalog.RefreshPerHour == 0 {
		c.Catalog.RefreshPerHour = DefaultRefreshPerHour
	}
	if c.Catalog.RefreshGlobalPerHour == 0 {
		c.Catalog.RefreshGlobalPerHour = DefaultRefreshGlobal
	}
	if c.Render.MaxSidePx == 0 {
		c.Render.MaxSidePx = DefaultMaxSidePx
	}
	if c.Render.ThumbnailSidePx == 0 {
		c.Render.ThumbnailSidePx = DefaultThumbnailSidePx
	}
	if c.Render.ResizeDebounce == 0 {
		c.Render.ResizeDebounce = DefaultResizeDebounce
	}
	if c.Render.MaxSessions == 0 {
		c.Render.MaxSessions = DefaultMaxSessions
	}
}

// applyEnv lets APP_PORT, APP_ENVIRONMENT and CATALOG_ORIGIN override the file.
func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("APP_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid APP_PORT %q: %w", v, err)
		}
		c.App.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("APP_ENVIRONMENT")); v != "" {
		c.App.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv("CATALOG_ORIGIN")); v != "" {
		c.Catalog.Origin = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app port out of range: %d", c.App.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if _, err := cron.ParseStandard(c.Catalog.RefreshCron); err != nil {
		return fmt.Errorf("invalid catalog refresh_cron %q: %w", c.Catalog.RefreshCron, err)
	}
	if c.Catalog.Concurrency < 1 {
		return fmt.Errorf("catalog concurrency must be positive")
	}
	if c.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog timeout must not be negative")
	}
	if c.Catalog.RefreshCooldown < 0 || c.Catalog.RefreshPerHour < 0 || c.Catalog.RefreshGlobalPerHour < 0 {
		return fmt.Errorf("catalog refresh limits must not be negative")
	}

	if c.Render.MaxSidePx < 1 {
		return fmt.Errorf("render max_side_px must be positive")
	}
	if c.Render.ThumbnailSidePx < 1 {
		return fmt.Errorf("render thumbnail_side_px must be positive")
	}
	if c.Render.ResizeDebounce < 0 {
		return fmt.Errorf("render resize_debounce must not be negative")
	}
	if c.Render.MaxSessions < 0 {
		return fmt.Errorf("render max_sessions must not be negative")
	}

	return nil
}

// IsDevelopment reports whether the console log writer should be used.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "" || c.App.Environment == "development"
}
