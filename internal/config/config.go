// Package config loads slimelab settings from SLIMELAB_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage driver names accepted by SLIMELAB_STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the process configuration.
type Config struct {
	Storage Storage
	Blob    Blob
	Lab     Lab
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"SLIMELAB_LOG_LEVEL" envDefault:"info"`
}

// Storage selects the roster backend.
type Storage struct {
	Driver      string `env:"SLIMELAB_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SLIMELAB_SQLITE_PATH" envDefault:"slimelab.db"`
	PostgresDSN string `env:"SLIMELAB_POSTGRES_DSN" envDefault:"postgres://localhost/slimelab?sslmode=disable"`
}

// Blob selects where lineage records are written.
type Blob struct {
	Driver            string `env:"SLIMELAB_BLOB_DRIVER" envDefault:"fs"`
	FSRoot            string `env:"SLIMELAB_BLOB_FS_ROOT" envDefault:"./lineage-data"`
	S3Bucket          string `env:"SLIMELAB_BLOB_S3_BUCKET"`
	S3Region          string `env:"SLIMELAB_BLOB_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"SLIMELAB_BLOB_S3_ENDPOINT"`
	S3PathStyle       bool   `env:"SLIMELAB_BLOB_S3_PATH_STYLE"`
	S3AccessKeyID     string `env:"SLIMELAB_BLOB_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"SLIMELAB_BLOB_S3_SECRET_ACCESS_KEY"`
}

// Lab holds the engine tunables.
type Lab struct {
	Capacity     int     `env:"SLIMELAB_LAB_CAPACITY" envDefault:"10"`
	MutationRate float64 `env:"SLIMELAB_MUTATION_RATE" envDefault:"0.05"`
	CatalogPath  string  `env:"SLIMELAB_CATALOG_PATH"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the environment parser accepts but the lab cannot use.
func (c Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case StorageMemory, StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch strings.ToLower(c.Blob.Driver) {
	case "fs", "memory":
	case "s3":
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("SLIMELAB_BLOB_S3_BUCKET required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Lab.Capacity < 1 {
		return fmt.Errorf("lab capacity must be positive, got %d", c.Lab.Capacity)
	}
	if c.Lab.MutationRate < 0 || c.Lab.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0,1], got %v", c.Lab.MutationRate)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
