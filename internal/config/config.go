// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package config provides application configuration loaded via Koanf v2
// with layered sources (highest priority wins):
//
//  1. Environment variables (MONGO_URL, SERVER_PORT, ...)
//  2. Optional YAML config file (config.yaml)
//  3. Built-in defaults
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Mongo   MongoConfig   `koanf:"mongo"`
	API     APIConfig     `koanf:"api"`
	Ingest  IngestConfig  `koanf:"ingest"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// MongoConfig holds document store connection settings.
//
// Environment Variables:
//   - MONGO_URL: connection string (e.g. mongodb://localhost:27017)
//   - MONGO_DATABASE: database name (default: ibamadb)
//   - MONGO_TIMEOUT: connect/ping timeout (default: 10s)
type MongoConfig struct {
	URL      string        `koanf:"url"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`
}

// APIConfig holds pagination and rate limit settings.
type APIConfig struct {
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// IngestConfig holds CSV ingestion settings.
type IngestConfig struct {
	// MaxUploadBytes caps the size of an uploaded CSV file.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxErrorMessages limits how many row-level error messages are
	// surfaced in an ingestion summary.
	MaxErrorMessages int `koanf:"max_error_messages"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	if c.Mongo.URL == "" {
		return fmt.Errorf("mongo.url is required (set MONGO_URL)")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be positive, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.Ingest.MaxUploadBytes < 1 {
		return fmt.Errorf("ingest.max_upload_bytes must be positive, got %d", c.Ingest.MaxUploadBytes)
	}
	if c.Ingest.MaxErrorMessages < 0 {
		return fmt.Errorf("ingest.max_error_messages must not be negative, got %d", c.Ingest.MaxErrorMessages)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
