package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitBriefingDirCreatesLayout(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitBriefingDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, rel := range []string{"logs", "archive", "session", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(projectDir, BriefingDir, rel)); err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
	}
	custom := []byte("version: 1\napi:\n  endpoint: http://keep.me\n")
	path := filepath.Join(projectDir, BriefingDir, "config.yaml")
	if err := os.WriteFile(path, custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitBriefingDir(projectDir); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(custom) {
		t.Fatalf("re-init overwrote config.yaml")
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	unsetEndpoint(t)
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Endpoint() != DefaultEndpoint {
		t.Fatalf("endpoint = %q, want %q", cfg.Endpoint(), DefaultEndpoint)
	}
	if cfg.Timeout() != DefaultTimeout {
		t.Fatalf("timeout = %s", cfg.Timeout())
	}
	if !cfg.ArchiveEnabled() {
		t.Fatalf("archive should default to enabled")
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	unsetEndpoint(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, strings.TrimSpace(`
version: 1
api:
  endpoint: "https://briefings.example.com/ "
  timeout: 45s
archive:
  enabled: false
`))
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Endpoint() != "https://briefings.example.com" {
		t.Fatalf("endpoint = %q", cfg.Endpoint())
	}
	if cfg.Timeout() != 45*time.Second {
		t.Fatalf("timeout = %s", cfg.Timeout())
	}
	if cfg.ArchiveEnabled() {
		t.Fatalf("archive should be disabled")
	}
}

func TestEnvironmentEndpointWins(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "version: 1\napi:\n  endpoint: http://from-yaml\n")
	t.Setenv(EnvEndpoint, "http://from-env/")
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Endpoint() != "http://from-env" {
		t.Fatalf("endpoint = %q, want env value", cfg.Endpoint())
	}
}

func TestDotEnvSuppliesEndpoint(t *testing.T) {
	unsetEndpoint(t)
	projectDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte("API_ENDPOINT=http://from-dotenv:3000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Endpoint() != "http://from-dotenv:3000" {
		t.Fatalf("endpoint = %q", cfg.Endpoint())
	}
}

func TestNewConfigValidation(t *testing.T) {
	unsetEndpoint(t)
	cases := map[string]string{
		"bad scheme":  "version: 1\napi:\n  endpoint: ftp://nope\n",
		"bad timeout": "version: 1\napi:\n  timeout: soon\n",
		"negative":    "version: -1\n",
	}
	for name, body := range cases {
		projectDir := t.TempDir()
		writeConfig(t, projectDir, body)
		if _, err := NewConfig(projectDir); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSetEndpointPersists(t *testing.T) {
	unsetEndpoint(t)
	projectDir := t.TempDir()
	if err := InitBriefingDir(projectDir); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetEndpoint("http://localhost:3000/"); err != nil {
		t.Fatalf("set endpoint: %v", err)
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Endpoint() != "http://localhost:3000" {
		t.Fatalf("persisted endpoint = %q", reloaded.Endpoint())
	}
}

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, BriefingDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// unsetEndpoint clears API_ENDPOINT for the test and restores it afterwards.
func unsetEndpoint(t *testing.T) {
	t.Helper()
	t.Setenv(EnvEndpoint, "")
	if err := os.Unsetenv(EnvEndpoint); err != nil {
		t.Fatal(err)
	}
}
