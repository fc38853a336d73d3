package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("expected default batch_size 50, got %d", cfg.BatchSize)
	}
	if cfg.MatchThreshold != 0.7 {
		t.Errorf("expected default match_threshold 0.7, got %v", cfg.MatchThreshold)
	}
	if cfg.TranslateInterval != 500*time.Millisecond {
		t.Errorf("expected default translate_interval 500ms, got %v", cfg.TranslateInterval)
	}
	if cfg.Backend != "mymemory" {
		t.Errorf("expected default backend mymemory, got %q", cfg.Backend)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 9090\nlog_format: text\nbackend: google\nmatch_threshold: 0.85\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("expected log_format text, got %q", cfg.LogFormat)
	}
	if cfg.Backend != "google" {
		t.Errorf("expected backend google, got %q", cfg.Backend)
	}
	if cfg.MatchThreshold != 0.85 {
		t.Errorf("expected match_threshold 0.85, got %v", cfg.MatchThreshold)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("TRANSFLOW_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("environment must override the file, got port %d", cfg.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name, key, value string
	}{
		{"bad port", "TRANSFLOW_PORT", "0"},
		{"bad log format", "TRANSFLOW_LOG_FORMAT", "xml"},
		{"bad log level", "TRANSFLOW_LOG_LEVEL", "verbose"},
		{"bad backend", "TRANSFLOW_BACKEND", "deepl"},
		{"threshold above one", "TRANSFLOW_MATCH_THRESHOLD", "1.5"},
		{"zero batch size", "TRANSFLOW_BATCH_SIZE", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
