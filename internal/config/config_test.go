package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	for _, k := range []string{"PROJECTID", "PORT", "METRICSTTL", "METRICSRETRIES", "CONFIGFILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.MetricsTTL != 5*time.Minute || cfg.MetricsRetries != 3 || cfg.MetricsRetryDelay != time.Second {
		t.Errorf("unexpected metrics defaults: %+v", cfg)
	}
	if cfg.RemoteEnabled() {
		t.Error("remote should be disabled without a project")
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("PROJECTID", "demo-project")
	t.Setenv("PORT", "9090")
	t.Setenv("METRICSTTL", "30s")
	t.Setenv("METRICSRETRIES", "1")
	t.Setenv("CONFIGFILE", "")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectID != "demo-project" || !cfg.RemoteEnabled() {
		t.Errorf("expected project from env, got %q", cfg.ProjectID)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.MetricsTTL != 30*time.Second || cfg.MetricsRetries != 1 {
		t.Errorf("unexpected metrics settings: %+v", cfg)
	}
}

func TestNew_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("region: europe-west1\nlocalstorepath: /data/local.db\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIGFILE", path)
	t.Setenv("REGION", "")
	os.Unsetenv("REGION")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Region != "europe-west1" || cfg.LocalStorePath != "/data/local.db" {
		t.Errorf("expected values from file, got %+v", cfg)
	}
}

func TestNew_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIGFILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := New(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
