// Package config provides centralized configuration loaded from environment
// variables, optionally overlaid by a YAML file. Shared by every catalog
// build stage and the publish command.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// --------------------------------------------------------------------------
// Artifact names: single source of truth for the catalog output directory
// --------------------------------------------------------------------------

const (
	KindSpecies   = "species"
	KindForms     = "forms"
	KindMoves     = "moves"
	KindItems     = "items"
	KindLearnsets = "learnsets"

	DocumentsTable = "catalog_documents"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Upstream
	PokeAPIBaseURL    string        `yaml:"pokeapi_base_url"`
	UserAgent         string        `yaml:"user_agent"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"` // 0 = no client-side ceiling

	// Worker pool / throttle
	Concurrency   int           `yaml:"concurrency"`
	ThrottleEvery int           `yaml:"throttle_every"`
	ThrottlePause time.Duration `yaml:"throttle_pause"`

	// Retry
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`

	// Catalog
	OutDir              string `yaml:"out_dir"`
	SpeciesMaxID        int    `yaml:"species_max_id"`
	MachineVersionGroup string `yaml:"machine_version_group"`
	Language            string `yaml:"language"`
	MetricsFile         string `yaml:"metrics_file"`

	// Document store
	DatabaseURL    string        `yaml:"database_url"`
	DBPoolMinConns int           `yaml:"db_pool_min_conns"`
	DBPoolMaxConns int           `yaml:"db_pool_max_conns"`
	DBPoolMaxLife  time.Duration `yaml:"db_pool_max_life"`

	// Logging
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, pretty
}

// Load reads configuration from environment variables with sensible defaults.
// When path is non-empty the YAML file at path is applied on top; any field it
// sets wins over the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		PokeAPIBaseURL:    strings.TrimRight(envOr("POKEAPI_BASE_URL", "https://pokeapi.co/api/v2"), "/"),
		UserAgent:         envOr("CATALOG_USER_AGENT", "elodex-catalog/1.0 (catalog builder)"),
		HTTPTimeout:       time.Duration(envInt("CATALOG_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		RequestsPerMinute: envInt("POKEAPI_REQUESTS_PER_MINUTE", 0),

		Concurrency:   envInt("CATALOG_CONCURRENCY", 8),
		ThrottleEvery: envInt("CATALOG_THROTTLE_EVERY", 25),
		ThrottlePause: time.Duration(envInt("CATALOG_THROTTLE_PAUSE_MS", 350)) * time.Millisecond,

		RetryAttempts: envInt("CATALOG_RETRY_ATTEMPTS", 3),
		RetryDelay:    time.Duration(envInt("CATALOG_RETRY_DELAY_MS", 800)) * time.Millisecond,

		OutDir:              envOr("CATALOG_OUT_DIR", "data/catalog"),
		SpeciesMaxID:        envInt("CATALOG_SPECIES_MAX_ID", 1025),
		MachineVersionGroup: envOr("CATALOG_MACHINE_VERSION_GROUP", "sword-shield"),
		Language:            envOr("CATALOG_LANGUAGE", "en"),
		MetricsFile:         envOr("CATALOG_METRICS_FILE", ""),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "text"),
	}

	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.PokeAPIBaseURL == "" {
		return fmt.Errorf("POKEAPI_BASE_URL must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be >= 1, got %d", c.RetryAttempts)
	}
	if c.ThrottleEvery < 0 || c.ThrottlePause < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("throttle and retry settings must not be negative")
	}
	if c.OutDir == "" {
		return fmt.Errorf("CATALOG_OUT_DIR must not be empty")
	}
	return nil
}

// overlayFile decodes the YAML file at path onto c. Only keys present in
// the file are assigned, so an explicit zero (e.g. throttle_every: 0) wins
// over the environment. ${VAR} references are expanded before parsing.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.PokeAPIBaseURL = strings.TrimRight(c.PokeAPIBaseURL, "/")
	return nil
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
