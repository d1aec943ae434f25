package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables that override file configuration.
const (
	EnvBaseURL   = "MEMOLISH_API_BASE_URL"
	EnvSessionID = "MEMOLISH_SESSION_ID"
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the Memolish backend base URL.
	BaseURL string `json:"base_url"`

	// SessionID is the OAuth subject identifier forwarded verbatim as the
	// X-Session-Id header. The client never validates it; an empty value
	// means requests go out unauthenticated.
	SessionID string `json:"session_id,omitempty"`

	// DownloadDir is where downloaded audio files are saved.
	// Defaults to <baseDir>/downloads.
	DownloadDir string `json:"download_dir,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// All tools belonging to disabled types are excluded from registration.
	// Known types: "memo". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8000",
	}
}

// Load loads configuration from baseDir/config.json, applies defaults, and
// then applies environment overrides. Returns default config if the file
// doesn't exist. The baseDir parameter allows tests to use t.TempDir()
// instead of ~/.memolish.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	cfg = Merge(DefaultConfig(), cfg)

	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(baseDir, "downloads")
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes the configuration to baseDir/config.json with 0600 permissions.
// Used by login/logout to persist the session identifier.
func Save(baseDir string, cfg *Config) error {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir, "config.json"), append(data, '\n'), 0o600)
}

// applyEnv applies environment variable overrides. Env always wins over the
// file so a shell session can point at a different backend or identity.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv(EnvSessionID)); v != "" {
		cfg.SessionID = v
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

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.BaseURL = overlay.BaseURL
	if result.BaseURL == "" {
		result.BaseURL = base.BaseURL
	}
	result.BaseURL = strings.TrimRight(result.BaseURL, "/")

	result.SessionID = overlay.SessionID
	if result.SessionID == "" {
		result.SessionID = base.SessionID
	}

	result.DownloadDir = overlay.DownloadDir
	if result.DownloadDir == "" {
		result.DownloadDir = base.DownloadDir
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
