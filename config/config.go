// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"go.aimuz.me/murmur/internal/types"
)

const (
	appName        = "murmur"
	configFileName = "config.json"
)

// Config represents the application configuration.
type Config struct {
	Credentials []types.APICredential `json:"credentials,omitempty"`
	Speech      *types.SpeechConfig   `json:"speech,omitempty"`
	Cleanup     *types.CleanupConfig  `json:"cleanup,omitempty"`
	Hotkey      *types.HotkeyBinding  `json:"hotkey,omitempty"`
	History     *types.HistoryConfig  `json:"history,omitempty"`
}

// Load loads configuration from the config file.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		Credentials: []types.APICredential{},
		History:     &types.HistoryConfig{Enabled: true},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// API Credential Management
// ─────────────────────────────────────────────────────────────────────────────

// GetCredentials returns all API credentials.
func (c *Config) GetCredentials() []types.APICredential {
	return c.Credentials
}

// GetCredential returns a credential by ID.
func (c *Config) GetCredential(id string) *types.APICredential {
	for i := range c.Credentials {
		if c.Credentials[i].ID == id {
			return &c.Credentials[i]
		}
	}
	return nil
}

// AddCredential adds a new API credential.
func (c *Config) AddCredential(cred types.APICredential) error {
	if cred.Name == "" {
		return fmt.Errorf("credential name required")
	}
	if cred.APIKey == "" {
		return fmt.Errorf("api key required")
	}
	if cred.Type == "openai-compatible" && cred.BaseURL == "" {
		return fmt.Errorf("base url required for openai-compatible")
	}

	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}

	c.Credentials = append(c.Credentials, cred)
	return c.Save()
}

// UpdateCredential updates an existing credential.
func (c *Config) UpdateCredential(id string, cred types.APICredential) error {
	idx := slices.IndexFunc(c.Credentials, func(x types.APICredential) bool {
		return x.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("credential not found: %s", id)
	}

	cred.ID = id // Preserve ID
	c.Credentials[idx] = cred
	return c.Save()
}

// RemoveCredential removes a credential by ID.
// Returns error if the credential is in use by the speech or cleanup config.
func (c *Config) RemoveCredential(id string) error {
	if c.Speech != nil && c.Speech.CredentialID == id {
		return fmt.Errorf("credential in use by speech config")
	}
	if c.Cleanup != nil && c.Cleanup.CredentialID == id {
		return fmt.Errorf("credential in use by cleanup config")
	}

	idx := slices.IndexFunc(c.Credentials, func(x types.APICredential) bool {
		return x.ID == id
	})
	if idx == -1 {
		return fmt.Errorf("credential not found: %s", id)
	}

	c.Credentials = slices.Delete(c.Credentials, idx, idx+1)
	return c.Save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Speech Configuration
// ─────────────────────────────────────────────────────────────────────────────

// GetSpeechConfig returns the speech configuration.
func (c *Config) GetSpeechConfig() *types.SpeechConfig {
	return c.Speech
}

// SetSpeechConfig sets the speech configuration.
func (c *Config) SetSpeechConfig(cfg types.SpeechConfig) error {
	if cfg.Enabled {
		if cfg.Provider == "" {
			return fmt.Errorf("provider required")
		}
		if cfg.CredentialID != "" && c.GetCredential(cfg.CredentialID) == nil {
			return fmt.Errorf("credential not found: %s", cfg.CredentialID)
		}
	}

	if cfg.Model == "" {
		switch cfg.Provider {
		case "gemini":
			cfg.Model = "gemini-2.0-flash"
		default:
			cfg.Model = "whisper-1"
		}
	}

	c.Speech = &cfg
	return c.Save()
}

// GetCleanupConfig returns the cleanup pass configuration.
func (c *Config) GetCleanupConfig() *types.CleanupConfig {
	return c.Cleanup
}

// SetCleanupConfig sets the cleanup pass configuration.
func (c *Config) SetCleanupConfig(cfg types.CleanupConfig) error {
	if cfg.Enabled {
		if cfg.CredentialID == "" {
			return fmt.Errorf("credential id required")
		}
		cred := c.GetCredential(cfg.CredentialID)
		if cred == nil {
			return fmt.Errorf("credential not found: %s", cfg.CredentialID)
		}
		if cred.Type != "openai" && cred.Type != "openai-compatible" {
			return fmt.Errorf("cleanup requires OpenAI-compatible credential")
		}
		if cfg.Model == "" {
			return fmt.Errorf("model required")
		}
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = types.DefaultCleanupMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = types.DefaultCleanupTemperature
	}

	c.Cleanup = &cfg
	return c.Save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Hotkey & History
// ─────────────────────────────────────────────────────────────────────────────

// GetHotkey returns the configured hotkey binding, or nil for the default.
func (c *Config) GetHotkey() *types.HotkeyBinding {
	return c.Hotkey
}

// SetHotkey stores the hotkey binding. Validation is the caller's concern.
func (c *Config) SetHotkey(b types.HotkeyBinding) error {
	c.Hotkey = &b
	return c.Save()
}

// GetHistoryConfig returns the history configuration.
func (c *Config) GetHistoryConfig() types.HistoryConfig {
	if c.History == nil {
		return types.HistoryConfig{Enabled: true}
	}
	return *c.History
}

// SetHistoryConfig sets the history configuration.
func (c *Config) SetHistoryConfig(cfg types.HistoryConfig) error {
	c.History = &cfg
	return c.Save()
}

// ─────────────────────────────────────────────────────────────────────────────
// Session Snapshot
// ─────────────────────────────────────────────────────────────────────────────

// SpeechSnapshot resolves the speech and cleanup configuration against the
// stored credentials into the immutable snapshot a dictation session starts
// with. A missing or dangling credential leaves the API key empty, which
// blocks the session with a setup status rather than failing mid-flight.
func (c *Config) SpeechSnapshot() types.SpeechSettings {
	var st types.SpeechSettings
	if c.Speech == nil {
		return st
	}

	st.Enabled = c.Speech.Enabled
	st.Provider = c.Speech.Provider
	st.Model = c.Speech.Model
	st.Language = c.Speech.Language
	if cred := c.GetCredential(c.Speech.CredentialID); cred != nil {
		st.APIKey = cred.APIKey
		st.BaseURL = cred.BaseURL
	}

	cl := c.Cleanup
	if cl == nil || !cl.Enabled {
		return st
	}
	cred := c.GetCredential(cl.CredentialID)
	if cred == nil {
		return st
	}

	st.Cleanup = true
	st.CleanupAPIKey = cred.APIKey
	st.CleanupBaseURL = cred.BaseURL
	st.CleanupModel = cl.Model
	st.CleanupPrompt = cl.SystemPrompt
	st.CleanupTokens = cl.MaxTokens
	st.CleanupTemp = cl.Temperature
	if st.CleanupTokens == 0 {
		st.CleanupTokens = types.DefaultCleanupMaxTokens
	}
	if st.CleanupTemp == 0 {
		st.CleanupTemp = types.DefaultCleanupTemperature
	}
	return st
}
