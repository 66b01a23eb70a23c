package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string        `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedkeeper.db?cache=shared&mode=rwc&_txlock=immediate,description=Database connection string, postgres:// selects PostgreSQL"`
		MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,minimum=1,description=Maximum number of open connections"`
		MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,minimum=0,description=Maximum number of idle connections"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=1h,description=Connection maximum lifetime"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Ingest IngestConfig `yaml:"ingest" json:"ingest" jsonschema:"description=Feed ingestion configuration"`

	Icons IconsConfig `yaml:"icons" json:"icons" jsonschema:"description=Feed icon backfill configuration"`

	Manifest struct {
		Limit int `yaml:"limit" json:"limit" jsonschema:"default=100,minimum=1,maximum=500,description=Default number of items in the manifest"`
	} `yaml:"manifest" json:"manifest" jsonschema:"description=Manifest API configuration"`
}

// IngestConfig holds batch ingestion settings
type IngestConfig struct {
	Interval          time.Duration `yaml:"interval" json:"interval" jsonschema:"default=10m,description=Interval between scheduled batches"`
	BatchSize         int           `yaml:"batch_size" json:"batch_size" jsonschema:"default=10,minimum=1,description=Number of feeds processed per batch"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" jsonschema:"default=5s,description=Timeout of a single feed fetch"`
	Retention         time.Duration `yaml:"retention" json:"retention" jsonschema:"default=72h,description=Items published before now minus retention are removed"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for feed and page requests"`
	SummaryLength     int           `yaml:"summary_length" json:"summary_length" jsonschema:"default=200,minimum=1,description=Maximum summary length in characters"`
	ScrapeTimeout     time.Duration `yaml:"scrape_timeout" json:"scrape_timeout" jsonschema:"default=3s,description=Timeout of an article page fetch for image lookup"`
	ScrapeConcurrency int           `yaml:"scrape_concurrency" json:"scrape_concurrency" jsonschema:"default=4,minimum=1,description=Maximum concurrent article page fetches per feed"`
}

// IconsConfig holds feed icon backfill settings
type IconsConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Enable scheduled icon backfill"`
	Interval    time.Duration `yaml:"interval" json:"interval" jsonschema:"default=1h,description=Interval between icon backfills"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=5s,description=Timeout of a site page fetch"`
	Concurrency int           `yaml:"concurrency" json:"concurrency" jsonschema:"default=4,minimum=1,description=Maximum concurrent icon lookups"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse makes configuration from YAML data, environment variables are expanded
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Config{Icons: IconsConfig{Enabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// schema check is supplementary, a stale schema should not block startup
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults applied
func Default() *Config {
	cfg := Config{Icons: IconsConfig{Enabled: true}}
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:feedkeeper.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = time.Hour
	}

	// ingest
	if c.Ingest.Interval == 0 {
		c.Ingest.Interval = 10 * time.Minute
	}
	if c.Ingest.BatchSize == 0 {
		c.Ingest.BatchSize = 10
	}
	if c.Ingest.FetchTimeout == 0 {
		c.Ingest.FetchTimeout = 5 * time.Second
	}
	if c.Ingest.Retention == 0 {
		c.Ingest.Retention = 72 * time.Hour
	}
	if c.Ingest.SummaryLength == 0 {
		c.Ingest.SummaryLength = 200
	}
	if c.Ingest.ScrapeTimeout == 0 {
		c.Ingest.ScrapeTimeout = 3 * time.Second
	}
	if c.Ingest.ScrapeConcurrency == 0 {
		c.Ingest.ScrapeConcurrency = 4
	}

	// icons
	if c.Icons.Interval == 0 {
		c.Icons.Interval = time.Hour
	}
	if c.Icons.Timeout == 0 {
		c.Icons.Timeout = 5 * time.Second
	}
	if c.Icons.Concurrency == 0 {
		c.Icons.Concurrency = 4
	}

	// manifest
	if c.Manifest.Limit == 0 {
		c.Manifest.Limit = 100
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if cfg.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must be non-negative")
	}

	if cfg.Ingest.Interval < time.Second {
		return fmt.Errorf("ingest.interval must be at least 1 second")
	}
	if cfg.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest.batch_size must be at least 1")
	}
	if cfg.Ingest.FetchTimeout < 100*time.Millisecond {
		return fmt.Errorf("ingest.fetch_timeout must be at least 100ms")
	}
	if cfg.Ingest.Retention < time.Hour {
		return fmt.Errorf("ingest.retention must be at least 1 hour")
	}
	if cfg.Ingest.SummaryLength < 1 {
		return fmt.Errorf("ingest.summary_length must be at least 1")
	}
	if cfg.Ingest.ScrapeTimeout < 100*time.Millisecond {
		return fmt.Errorf("ingest.scrape_timeout must be at least 100ms")
	}
	if cfg.Ingest.ScrapeConcurrency < 1 {
		return fmt.Errorf("ingest.scrape_concurrency must be at least 1")
	}

	if cfg.Icons.Enabled && cfg.Icons.Interval < time.Minute {
		return fmt.Errorf("icons.interval must be at least 1 minute")
	}
	if cfg.Icons.Timeout < 100*time.Millisecond {
		return fmt.Errorf("icons.timeout must be at least 100ms")
	}
	if cfg.Icons.Concurrency < 1 {
		return fmt.Errorf("icons.concurrency must be at least 1")
	}

	if cfg.Manifest.Limit < 1 || cfg.Manifest.Limit > 500 {
		return fmt.Errorf("manifest.limit must be between 1 and 500")
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetManifestLimit returns the default number of items served by the manifest
func (c *Config) GetManifestLimit() int {
	return c.Manifest.Limit
}
