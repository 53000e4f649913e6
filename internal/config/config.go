package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Env variable names. GEMINI_API_KEY is the credential for the generation
// endpoint; it is read from the environment only, never from config.json.
const (
	EnvAPIKey   = "GEMINI_API_KEY"
	EnvModel    = "NOTES_MODEL"
	EnvEndpoint = "NOTES_ENDPOINT"
)

// Config holds application configuration.
type Config struct {
	// DebounceMs is the editor quiet period in milliseconds. Edits are
	// committed to the repository once no keystroke arrives for this long.
	DebounceMs int `json:"debounce_ms"`

	// Model is the generation model identifier.
	Model string `json:"model"`

	// Endpoint is the generation API base URL. Overridable for testing.
	Endpoint string `json:"endpoint"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// APIKey is the generation credential. Environment only; excluded from
	// JSON so it can never be persisted to disk by accident.
	APIKey string `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceMs: 500,
		Model:      "gemini-2.5-flash",
		Endpoint:   "https://generativelanguage.googleapis.com",
	}
}

// Debounce returns the quiet period as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Load loads configuration from baseDir/config.json, merged over defaults,
// then applies environment overrides. Returns default config if the file
// doesn't exist. The baseDir parameter allows tests to use t.TempDir()
// instead of ~/.notes.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	ApplyEnv(merged)
	return merged, nil
}

// ApplyEnv overlays environment values onto cfg. The credential lives here
// exclusively: created once at startup, injected where needed, never read
// again as ambient state.
func ApplyEnv(cfg *Config) {
	cfg.APIKey = os.Getenv(EnvAPIKey)
	if model := os.Getenv(EnvModel); model != "" {
		cfg.Model = model
	}
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		cfg.Endpoint = endpoint
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for non-zero scalars.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DebounceMs = overlay.DebounceMs
	if result.DebounceMs == 0 {
		result.DebounceMs = base.DebounceMs
	}

	result.Model = overlay.Model
	if result.Model == "" {
		result.Model = base.Model
	}

	result.Endpoint = overlay.Endpoint
	if result.Endpoint == "" {
		result.Endpoint = base.Endpoint
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.APIKey = overlay.APIKey
	if result.APIKey == "" {
		result.APIKey = base.APIKey
	}

	return result
}
