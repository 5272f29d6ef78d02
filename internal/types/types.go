// Package types provides shared type definitions for the application.
package types

// TriggerSource records how a dictation session was started. Hotkey sessions
// paste into the frontmost app; manual sessions stay clipboard-only.
type TriggerSource string

const (
	TriggerHotkey TriggerSource = "hotkey"
	TriggerManual TriggerSource = "manual"
)

// APICredential represents a stored provider credential.
type APICredential struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // "openai", "openai-compatible", "gemini"
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key"`
}

// SpeechConfig selects the transcription provider for dictation.
type SpeechConfig struct {
	Enabled      bool   `json:"enabled"`
	Provider     string `json:"provider"` // "whisper-api", "gemini"
	CredentialID string `json:"credential_id,omitempty"`
	Model        string `json:"model,omitempty"`
	Language     string `json:"language,omitempty"` // empty means auto-detect
}

// CleanupConfig controls the optional transcript cleanup pass.
type CleanupConfig struct {
	Enabled      bool    `json:"enabled"`
	CredentialID string  `json:"credential_id,omitempty"`
	Model        string  `json:"model,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// DefaultCleanupMaxTokens is the default max tokens for the cleanup pass.
const DefaultCleanupMaxTokens = 2000

// DefaultCleanupTemperature is the default temperature for the cleanup pass.
const DefaultCleanupTemperature = 0.2

// HotkeyBinding is a modifier set plus a key, e.g. {["ctrl","shift"], "d"}.
type HotkeyBinding struct {
	Modifiers []string `json:"modifiers"`
	Key       string   `json:"key"`
}

// HistoryConfig controls the local transcript history store.
type HistoryConfig struct {
	Enabled bool `json:"enabled"`
	TTLDays int  `json:"ttl_days,omitempty"`
}

// SpeechSettings is the resolved, immutable settings snapshot a dictation
// session starts with. The API key is resolved from the credential store at
// snapshot time and is never written back anywhere.
type SpeechSettings struct {
	Enabled  bool
	Provider string
	BaseURL  string
	Model    string
	Language string
	APIKey   string

	Cleanup        bool
	CleanupAPIKey  string
	CleanupBaseURL string
	CleanupModel   string
	CleanupPrompt  string
	CleanupTokens  int
	CleanupTemp    float64
}

// HistoryEntry is one completed dictation recorded in the history store.
type HistoryEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Raw       string `json:"raw,omitempty"` // pre-cleanup transcript if it differs
	Language  string `json:"language,omitempty"`
	Source    string `json:"source"` // "hotkey" or "manual"
	DurationS int64  `json:"durationS"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// Transcript is the outcome of one transcription round trip, after the
// optional cleanup pass.
type Transcript struct {
	Text     string `json:"text"`               // final text (cleaned when cleanup ran)
	Raw      string `json:"raw,omitempty"`      // provider transcript before cleanup
	Language string `json:"language,omitempty"` // detected ISO 639-1 code
}

// DetectResult represents the result of language detection.
type DetectResult struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
