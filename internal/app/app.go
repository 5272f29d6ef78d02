// Package app provides the core application service for Wails bindings.
package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.aimuz.me/murmur/audiocapture"
	"go.aimuz.me/murmur/config"
	"go.aimuz.me/murmur/deliver"
	"go.aimuz.me/murmur/history"
	"go.aimuz.me/murmur/hotkey"
	"go.aimuz.me/murmur/internal/types"
	"go.aimuz.me/murmur/langdetect"
	"go.aimuz.me/murmur/permission"
	"go.aimuz.me/murmur/session"
	"go.aimuz.me/murmur/transcribe"

	"github.com/wailsapp/wails/v3/pkg/application"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; business logic lives in sub-components.
type Service struct {
	cfg     *config.Config
	hotkey  *hotkey.Manager
	history *history.Store
	capture *audiocapture.Manager
	orch    *session.Orchestrator

	// UI references - set via Init
	app    *application.App
	window application.Window

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = &config.Config{}
	}
	s.cfg = cfg

	s.setupHistory()
	s.setupSession()
	s.setupHotkey()
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.orch != nil {
		s.orch.Close()
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			slog.Error("close history", "error", err)
		}
	}
}

func (s *Service) setupHistory() {
	hc := s.cfg.GetHistoryConfig()
	if !hc.Enabled {
		return
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for history", "error", err)
		return
	}

	ttl := history.DefaultTTL
	if hc.TTLDays > 0 {
		ttl = time.Duration(hc.TTLDays) * 24 * time.Hour
	}

	historyPath := filepath.Join(configDir, "murmur", "history")
	h, err := history.New(historyPath, ttl)
	if err != nil {
		slog.Error("init history", "error", err)
		return
	}
	s.history = h
	slog.Info("history initialized", "path", historyPath)
}

func (s *Service) setupSession() {
	s.capture = audiocapture.New(audiocapture.Config{})
	s.capture.CleanupStale()

	registry := transcribe.NewRegistry()
	registry.Register(transcribe.NewWhisperAPI())
	registry.Register(transcribe.NewGemini())

	var hist session.HistorySink
	if s.history != nil {
		hist = s.history
	}

	orch, err := session.New(session.Config{
		Recorder:    session.NewRecorder(s.capture),
		Transcriber: transcribe.NewPipeline(registry),
		Deliverer:   deliver.New(),
		Settings:    s.cfg,
		History:     hist,
		OnStatus: func(st session.Status) {
			s.emit(EventDictationStatus, st)
		},
		OnLevel: func(level float64) {
			s.emit(EventAudioLevel, AudioLevel{Level: level, Timestamp: time.Now().UnixMilli()})
		},
	})
	if err != nil {
		slog.Error("init session orchestrator", "error", err)
		return
	}
	s.orch = orch
}

func (s *Service) setupHotkey() {
	binding := hotkey.DefaultBinding()
	if b := s.cfg.GetHotkey(); b != nil {
		binding = *b
	}

	s.hotkey = hotkey.NewManager(binding, func() {
		s.orch.RequestToggle(types.TriggerHotkey)
	})

	s.hotkey.SetStatusCallback(func(granted bool) {
		s.emit(EventAccessibilityPerm, granted)
		if granted {
			slog.Info("accessibility permission granted")
		} else {
			slog.Warn("accessibility permission denied")
		}
	})

	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Dictation
// ─────────────────────────────────────────────────────────────────────────────

// ToggleDictation starts or finishes a dictation session from the UI.
// UI-triggered sessions deliver to the clipboard only, without pasting.
func (s *Service) ToggleDictation() {
	if s.orch != nil {
		s.orch.RequestToggle(types.TriggerManual)
	}
}

// CancelDictation discards an in-progress recording.
func (s *Service) CancelDictation() {
	if s.orch != nil {
		s.orch.RequestCancel()
	}
}

// GetDictationStatus returns the current session status.
func (s *Service) GetDictationStatus() session.Status {
	if s.orch == nil {
		return session.Status{State: session.StateIdle, Text: "Not available"}
	}
	return s.orch.Status()
}

// GetHistory returns the most recent dictations, newest first.
func (s *Service) GetHistory(limit int) ([]types.HistoryEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(limit)
}

// DetectLanguage detects the language of the given text.
func (s *Service) DetectLanguage(text string) types.DetectResult {
	code, name := langdetect.Detect(text)
	return types.DetectResult{Code: code, Name: name}
}

// ─────────────────────────────────────────────────────────────────────────────
// Hotkey
// ─────────────────────────────────────────────────────────────────────────────

// GetHotkey returns the active hotkey binding.
func (s *Service) GetHotkey() types.HotkeyBinding {
	if s.hotkey != nil {
		return s.hotkey.Binding()
	}
	return hotkey.DefaultBinding()
}

// SetHotkey validates, persists and re-registers the hotkey binding.
func (s *Service) SetHotkey(b types.HotkeyBinding) error {
	if err := hotkey.Validate(b); err != nil {
		return err
	}
	if err := s.cfg.SetHotkey(b); err != nil {
		return err
	}
	if s.hotkey != nil {
		return s.hotkey.Rebind(b)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Permissions
// ─────────────────────────────────────────────────────────────────────────────

// GetMicrophonePermission returns the microphone authorization status.
func (s *Service) GetMicrophonePermission() string {
	return permission.Microphone().String()
}

// RequestMicrophonePermission triggers the OS microphone consent prompt.
func (s *Service) RequestMicrophonePermission() string {
	return permission.RequestMicrophone().String()
}

// GetAccessibilityPermission returns whether accessibility is enabled.
func (s *Service) GetAccessibilityPermission() bool {
	return permission.Accessibility(false)
}

// RequestAccessibilityPermission triggers the OS accessibility prompt.
func (s *Service) RequestAccessibilityPermission() bool {
	return permission.Accessibility(true)
}

// ─────────────────────────────────────────────────────────────────────────────
// API Credential Management
// ─────────────────────────────────────────────────────────────────────────────

// GetCredentials returns all API credentials.
func (s *Service) GetCredentials() []types.APICredential {
	return s.cfg.GetCredentials()
}

// AddCredential adds a new API credential.
func (s *Service) AddCredential(cred types.APICredential) error {
	return s.cfg.AddCredential(cred)
}

// UpdateCredential updates an existing credential.
func (s *Service) UpdateCredential(id string, cred types.APICredential) error {
	return s.cfg.UpdateCredential(id, cred)
}

// RemoveCredential removes a credential by ID.
func (s *Service) RemoveCredential(id string) error {
	return s.cfg.RemoveCredential(id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Speech & Cleanup Configuration
// ─────────────────────────────────────────────────────────────────────────────

// GetSpeechConfig returns the speech service configuration.
func (s *Service) GetSpeechConfig() *types.SpeechConfig {
	return s.cfg.GetSpeechConfig()
}

// SetSpeechConfig sets the speech service configuration.
func (s *Service) SetSpeechConfig(cfg types.SpeechConfig) error {
	return s.cfg.SetSpeechConfig(cfg)
}

// GetCleanupConfig returns the transcript cleanup configuration.
func (s *Service) GetCleanupConfig() *types.CleanupConfig {
	return s.cfg.GetCleanupConfig()
}

// SetCleanupConfig sets the transcript cleanup configuration.
func (s *Service) SetCleanupConfig(cfg types.CleanupConfig) error {
	return s.cfg.SetCleanupConfig(cfg)
}

// GetHistoryConfig returns the history configuration.
func (s *Service) GetHistoryConfig() types.HistoryConfig {
	return s.cfg.GetHistoryConfig()
}

// SetHistoryConfig sets the history configuration.
func (s *Service) SetHistoryConfig(cfg types.HistoryConfig) error {
	return s.cfg.SetHistoryConfig(cfg)
}
