package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DebounceMs != 500 {
		t.Errorf("DebounceMs = %d, want 500", cfg.DebounceMs)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q, want gemini-2.5-flash", cfg.Model)
	}
	if cfg.Endpoint == "" {
		t.Error("Endpoint should have a default")
	}
	if cfg.Debounce() != 500*time.Millisecond {
		t.Errorf("Debounce() = %v, want 500ms", cfg.Debounce())
	}
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DebounceMs != 500 {
		t.Errorf("DebounceMs = %d, want default 500", cfg.DebounceMs)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	tmpDir := t.TempDir()

	configJSON := `{"debounce_ms": 250, "model": "gemini-x"}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(configJSON), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DebounceMs != 250 {
		t.Errorf("DebounceMs = %d, want 250", cfg.DebounceMs)
	}
	if cfg.Model != "gemini-x" {
		t.Errorf("Model = %q, want gemini-x", cfg.Model)
	}
	// Unset scalars fall back to defaults.
	if cfg.Endpoint != DefaultConfig().Endpoint {
		t.Errorf("Endpoint = %q, want default", cfg.Endpoint)
	}
}

func TestLoad_MalformedFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("expected error for malformed config.json")
	}
}

func TestApplyEnv_CredentialAndOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "secret-key")
	t.Setenv(EnvModel, "gemini-test")
	t.Setenv(EnvEndpoint, "http://localhost:9999")

	cfg := DefaultConfig()
	ApplyEnv(cfg)

	if cfg.APIKey != "secret-key" {
		t.Errorf("APIKey = %q, want secret-key", cfg.APIKey)
	}
	if cfg.Model != "gemini-test" {
		t.Errorf("Model = %q, want gemini-test", cfg.Model)
	}
	if cfg.Endpoint != "http://localhost:9999" {
		t.Errorf("Endpoint = %q, want http://localhost:9999", cfg.Endpoint)
	}
}

func TestMerge_OverlayWins(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{DebounceMs: 100, DBMaxOpenConns: 1}

	merged := Merge(base, overlay)
	if merged.DebounceMs != 100 {
		t.Errorf("DebounceMs = %d, want 100", merged.DebounceMs)
	}
	if merged.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", merged.DBMaxOpenConns)
	}
	if merged.Model != base.Model {
		t.Errorf("Model = %q, want base %q", merged.Model, base.Model)
	}
}

func TestConfig_APIKeyNeverSerialized(t *testing.T) {
	// The credential must not be persistable to config.json by accident.
	data, err := json.Marshal(&Config{APIKey: "secret"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("APIKey leaked into JSON: %s", data)
	}
}
