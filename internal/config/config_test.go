package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:          "8081",
		SQLiteDBPath:  t.TempDir() + "/tripmate.db",
		JWTSecret:     "0123456789abcdef0123456789abcdef",
		TokenDuration: 24 * time.Hour,
		BlobRoot:      t.TempDir(),
		BlobBaseURL:   "http://localhost:8081/blobs",
		ExportBackend: "disabled",
		SyncBatchSize: 10,
		SyncInterval:  30 * time.Second,
		LogFormat:     "text",
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "must be between"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.JWTSecret = "abc" }, "too short"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "AMQP URL scheme"},
		{"amqp queue missing", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "queue name"},
		{"unknown export backend", func(c *Config) { c.ExportBackend = "csv" }, "invalid export backend"},
		{"sheets without spreadsheet", func(c *Config) { c.ExportBackend = "sheets" }, "Spreadsheet ID is required"},
		{"tiny sync interval", func(c *Config) { c.SyncInterval = time.Millisecond }, "sync interval"},
		{"unknown log format", func(c *Config) { c.LogFormat = "json5" }, "log format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig(t)
			tc.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("default port = %s", cfg.Port)
	}
	if cfg.ExportBackend != "disabled" {
		t.Errorf("default export backend = %s", cfg.ExportBackend)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Errorf("default token duration = %v", cfg.TokenDuration)
	}
}
