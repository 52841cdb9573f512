// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Mongo.Database != "ibamadb" {
		t.Errorf("mongo.database = %q, want ibamadb", cfg.Mongo.Database)
	}
	if cfg.API.DefaultPageSize != 10 || cfg.API.MaxPageSize != 100 {
		t.Errorf("pagination defaults = %d/%d, want 10/100", cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	}
	if cfg.Ingest.MaxUploadBytes != 64<<20 {
		t.Errorf("ingest.max_upload_bytes = %d, want %d", cfg.Ingest.MaxUploadBytes, 64<<20)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadRequiresMongoURL(t *testing.T) {
	t.Setenv("MONGO_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected an error without MONGO_URL")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://db.internal:27017")
	t.Setenv("MONGO_DATABASE", "fiscalis_prod")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("API_MAX_PAGE_SIZE", "250")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mongo.URL != "mongodb://db.internal:27017" {
		t.Errorf("mongo.url = %q, want the env value", cfg.Mongo.URL)
	}
	if cfg.Mongo.Database != "fiscalis_prod" {
		t.Errorf("mongo.database = %q, want fiscalis_prod", cfg.Mongo.Database)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.API.MaxPageSize != 250 {
		t.Errorf("api.max_page_size = %d, want 250", cfg.API.MaxPageSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug (LOG_LEVEL shorthand)", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"server:",
		"  port: 8181",
		"mongo:",
		"  url: mongodb://from-file:27017",
		"api:",
		"  default_page_size: 20",
		"  max_page_size: 40",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("server.port = %d, want 8181 from the config file", cfg.Server.Port)
	}
	if cfg.Mongo.URL != "mongodb://from-file:27017" {
		t.Errorf("mongo.url = %q, want the file value", cfg.Mongo.URL)
	}
	if cfg.API.DefaultPageSize != 20 || cfg.API.MaxPageSize != 40 {
		t.Errorf("pagination = %d/%d, want 20/40", cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	}

	t.Run("environment still wins over the file", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "8282")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != 8282 {
			t.Errorf("server.port = %d, want 8282 from the environment", cfg.Server.Port)
		}
	})
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.API.CORSOrigins) != len(want) {
		t.Fatalf("cors_origins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	for i := range want {
		if cfg.API.CORSOrigins[i] != want[i] {
			t.Errorf("cors_origins[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Timeout: 30 * time.Second},
			Mongo:  MongoConfig{URL: "mongodb://localhost:27017", Database: "ibamadb", Timeout: 10 * time.Second},
			API:    APIConfig{DefaultPageSize: 10, MaxPageSize: 100},
			Ingest: IngestConfig{MaxUploadBytes: 1 << 20, MaxErrorMessages: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing mongo url", func(c *Config) { c.Mongo.URL = "" }, true},
		{"empty database", func(c *Config) { c.Mongo.Database = "" }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero default page size", func(c *Config) { c.API.DefaultPageSize = 0 }, true},
		{"max below default page size", func(c *Config) { c.API.MaxPageSize = 5 }, true},
		{"zero upload limit", func(c *Config) { c.Ingest.MaxUploadBytes = 0 }, true},
		{"negative error message cap", func(c *Config) { c.Ingest.MaxErrorMessages = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	sc := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := sc.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", got)
	}
}
