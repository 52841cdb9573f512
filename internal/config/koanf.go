// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fiscalis/config.yaml",
	"/etc/fiscalis/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			Timeout: 30 * time.Second,
		},
		Mongo: MongoConfig{
			URL:      "",
			Database: "ibamadb",
			Timeout:  10 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Ingest: IngestConfig{
			MaxUploadBytes:   64 << 20, // 64MB
			MaxErrorMessages: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if found)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// MONGO_URL -> mongo.url, SERVER_PORT -> server.port, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when supplied via environment variables.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as plain strings while the config
// struct expects []string.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - MONGO_URL -> mongo.url
//   - SERVER_PORT -> server.port
//   - API_MAX_PAGE_SIZE -> api.max_page_size
//   - INGEST_MAX_UPLOAD_BYTES -> ingest.max_upload_bytes
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	prefixes := []string{"server_", "mongo_", "api_", "ingest_", "logging_"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(key, prefix) {
			section := strings.TrimSuffix(prefix, "_")
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}

	// Shorthand variables kept for operator convenience
	switch key {
	case "log_level":
		return "logging.level"
	case "log_format":
		return "logging.format"
	}

	// Unknown variables are ignored
	return ""
}
