package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
credential: secret-key
endpoints:
  legal: http://reviewers:9000
timeouts:
  call_sec: 30
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Credential != "secret-key" {
		t.Fatalf("credential = %q", cfg.Credential)
	}
	if cfg.Endpoints.Legal != "http://reviewers:9000" {
		t.Fatalf("legal endpoint = %q", cfg.Endpoints.Legal)
	}
	// Unset fields keep their defaults.
	if cfg.Endpoints.Business != "http://localhost:10003" {
		t.Fatalf("business endpoint = %q", cfg.Endpoints.Business)
	}
	if cfg.Timeouts.Call() != 30*time.Second {
		t.Fatalf("call timeout = %v", cfg.Timeouts.Call())
	}
	if cfg.Timeouts.Integration() != 300*time.Second {
		t.Fatalf("integration timeout = %v", cfg.Timeouts.Integration())
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d", cfg.MaxAttempts)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name, body, wantErr string
	}{
		{"zero attempts", "max_attempts: 0", "max_attempts"},
		{"negative timeout", "timeouts:\n  call_sec: -5", "timeouts"},
		{"blank endpoint", "endpoints:\n  integration: \"\"", "endpoints.integration"},
		{"malformed yaml", "endpoints: [", "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
