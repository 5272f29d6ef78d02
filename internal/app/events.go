// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	EventDictationStatus   = "dictation-status"
	EventAudioLevel        = "audio-level"
	EventAccessibilityPerm = "accessibility-permission"
)

// AudioLevel is a typed event carrying the normalized microphone amplitude
// while a recording is active.
type AudioLevel struct {
	Level     float64 `json:"level"` // 0.0 - 1.0
	Timestamp int64   `json:"timestamp"`
}
