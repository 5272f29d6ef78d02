// Package session coordinates one dictation cycle at a time: capture,
// transcription, and delivery, driven by a single-goroutine state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.aimuz.me/murmur/audiocapture"
	"go.aimuz.me/murmur/deliver"
	"go.aimuz.me/murmur/internal/types"
)

// State is the orchestrator's externally visible phase.
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
)

// FailureKind classifies why a session ended without delivering text.
type FailureKind string

const (
	FailSetup         FailureKind = "setup"
	FailAudio         FailureKind = "audio"
	FailTranscription FailureKind = "transcription"
)

// Result is the outcome of the most recently completed session. The zero
// value means no session has completed since the last reset.
type Result struct {
	OK      bool        `json:"ok"`
	Text    string      `json:"text,omitempty"`
	Kind    FailureKind `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
}

// None reports whether no outcome has been recorded.
func (r Result) None() bool { return !r.OK && r.Kind == "" }

func success(text string) Result { return Result{OK: true, Text: text} }

func failure(kind FailureKind, msg string) Result {
	return Result{Kind: kind, Message: msg}
}

// Status is the atomically published view for UI observers. Every state
// transition replaces the whole struct, never a single field.
type Status struct {
	State  State  `json:"state"`
	Text   string `json:"text"`
	Result Result `json:"result"`
}

// CaptureHandle is the ownership token for an in-progress recording.
type CaptureHandle interface {
	ID() string
	StartedAt() time.Time
}

// Recorder owns the microphone for the duration of one capture.
type Recorder interface {
	Start(levelFn func(level float64)) (CaptureHandle, error)
	Stop(h CaptureHandle) ([]byte, error)
	Cancel(h CaptureHandle)
}

// Transcriber performs one audio-to-text round trip, including the optional
// cleanup pass.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, st types.SpeechSettings) (types.Transcript, error)
}

// Deliverer places finished text into the clipboard and, for hotkey
// sessions, the frontmost application.
type Deliverer interface {
	Deliver(text string, source types.TriggerSource) deliver.Outcome
}

// SettingsSource resolves the immutable settings snapshot a session starts
// with.
type SettingsSource interface {
	SpeechSnapshot() types.SpeechSettings
}

// HistorySink records completed dictations. May be nil.
type HistorySink interface {
	Add(entry types.HistoryEntry) error
}

// transcribeTimeout bounds one transcription round trip, cleanup included.
const transcribeTimeout = 2 * time.Minute

type msgKind int

const (
	msgToggle msgKind = iota
	msgCancel
	msgTranscribed
	msgClose
)

type message struct {
	kind       msgKind
	source     types.TriggerSource
	sessionID  string
	transcript types.Transcript
	err        error
}

// Config wires an Orchestrator's collaborators. Recorder, Transcriber,
// Deliverer and Settings are required; the rest are optional.
type Config struct {
	Recorder    Recorder
	Transcriber Transcriber
	Deliverer   Deliverer
	Settings    SettingsSource
	History     HistorySink

	// OnStatus is called from the orchestrator goroutine on every
	// transition. OnLevel is called from the capture's sampling goroutine.
	OnStatus func(Status)
	OnLevel  func(level float64)
}

// Orchestrator serializes all session state transitions through one
// goroutine. Triggers from any thread are posted as messages; nothing
// mutates session state directly.
type Orchestrator struct {
	cfg Config

	msgs      chan message
	done      chan struct{}
	closeOnce sync.Once

	// statusMu guards the published snapshot only. All other fields below
	// are owned by the loop goroutine.
	statusMu sync.Mutex
	status   Status

	state     State
	source    types.TriggerSource
	handle    CaptureHandle
	sessionID string
	startedAt time.Time
	settings  types.SpeechSettings
	result    Result
}

// New creates an orchestrator and starts its message loop.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Recorder == nil || cfg.Transcriber == nil || cfg.Deliverer == nil || cfg.Settings == nil {
		return nil, errors.New("session: recorder, transcriber, deliverer and settings are required")
	}
	o := &Orchestrator{
		cfg:   cfg,
		msgs:  make(chan message, 16),
		done:  make(chan struct{}),
		state: StateIdle,
	}
	o.publish("Ready")
	go o.loop()
	return o, nil
}

// RequestToggle starts a session when idle, finishes recording when
// recording, and is ignored while transcribing. Safe to call from any
// goroutine; it never blocks the caller.
func (o *Orchestrator) RequestToggle(source types.TriggerSource) {
	o.post(message{kind: msgToggle, source: source})
}

// RequestCancel discards an in-progress recording without transcribing.
// A no-op in any state other than Recording.
func (o *Orchestrator) RequestCancel() {
	o.post(message{kind: msgCancel})
}

// Status returns the last published snapshot.
func (o *Orchestrator) Status() Status {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	return o.status
}

// Close stops the loop, cancelling any in-progress recording. A pending
// transcription is left to complete; its result is discarded.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.post(message{kind: msgClose})
	})
}

func (o *Orchestrator) post(msg message) {
	select {
	case o.msgs <- msg:
	case <-o.done:
	}
}

func (o *Orchestrator) loop() {
	for {
		select {
		case <-o.done:
			return
		case msg := <-o.msgs:
			switch msg.kind {
			case msgToggle:
				o.handleToggle(msg.source)
			case msgCancel:
				o.handleCancel()
			case msgTranscribed:
				o.handleTranscribed(msg)
			case msgClose:
				if o.state == StateRecording {
					o.cfg.Recorder.Cancel(o.handle)
				}
				close(o.done)
				return
			}
		}
	}
}

func (o *Orchestrator) handleToggle(source types.TriggerSource) {
	switch o.state {
	case StateIdle:
		o.startSession(source)
	case StateRecording:
		o.finishRecording()
	case StateTranscribing:
		slog.Debug("toggle ignored, transcription in progress")
	}
}

func (o *Orchestrator) startSession(source types.TriggerSource) {
	st := o.cfg.Settings.SpeechSnapshot()
	if missing := missingRequirements(st); len(missing) > 0 {
		msg := "Setup required: " + strings.Join(missing, ", ")
		slog.Info("session blocked", "missing", missing)
		o.result = failure(FailSetup, msg)
		o.publish(msg)
		return
	}

	handle, err := o.cfg.Recorder.Start(o.forwardLevel)
	if err != nil {
		if errors.Is(err, audiocapture.ErrPermissionDenied) {
			msg := "Setup required: microphone access"
			o.result = failure(FailSetup, msg)
			o.publish(msg)
			return
		}
		slog.Error("audio capture failed to start", "error", err)
		o.result = failure(FailAudio, fmt.Sprintf("Recording failed: %v", err))
		o.publish(o.result.Message)
		return
	}

	o.state = StateRecording
	o.source = source
	o.handle = handle
	o.sessionID = handle.ID()
	o.startedAt = handle.StartedAt()
	o.settings = st
	o.result = Result{}
	o.publish("Recording...")
}

func (o *Orchestrator) finishRecording() {
	handle := o.handle
	audio, err := o.cfg.Recorder.Stop(handle)
	if err != nil {
		slog.Error("audio capture failed to stop", "error", err)
		o.fail(FailAudio, fmt.Sprintf("Recording failed: %v", err))
		return
	}

	o.state = StateTranscribing
	o.handle = nil
	o.publish("Transcribing...")

	sessionID := o.sessionID
	st := o.settings
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
		defer cancel()
		tr, err := o.cfg.Transcriber.Transcribe(ctx, audio, st)
		o.post(message{kind: msgTranscribed, sessionID: sessionID, transcript: tr, err: err})
	}()
}

func (o *Orchestrator) handleCancel() {
	if o.state != StateRecording {
		return
	}
	o.cfg.Recorder.Cancel(o.handle)
	o.reset()
	o.publish("Cancelled")
}

func (o *Orchestrator) handleTranscribed(msg message) {
	if o.state != StateTranscribing || msg.sessionID != o.sessionID {
		// A result for an abandoned session; it already ran to completion,
		// its text is simply dropped.
		slog.Debug("stale transcription result discarded", "session", msg.sessionID)
		return
	}
	if msg.err != nil {
		slog.Error("transcription failed", "error", msg.err)
		o.fail(FailTranscription, fmt.Sprintf("Transcription failed: %v", msg.err))
		return
	}

	tr := msg.transcript
	out := o.cfg.Deliverer.Deliver(tr.Text, o.source)
	text := "Inserted"
	switch {
	case out.Injected:
	case out.Clipboard:
		text = "Copied to clipboard"
	default:
		text = "Transcribed"
	}
	if out.Degraded(o.source) {
		slog.Warn("delivery degraded", "method", out.Method, "clipboard", out.Clipboard)
	}

	o.record(tr)

	o.state = StateIdle
	o.result = success(tr.Text)
	o.handle = nil
	o.sessionID = ""
	o.publish(text)
}

// record appends the finished dictation to history. Failures are logged,
// never surfaced: history is an observer of the session, not a step in it.
func (o *Orchestrator) record(tr types.Transcript) {
	if o.cfg.History == nil {
		return
	}
	entry := types.HistoryEntry{
		ID:        uuid.NewString(),
		Text:      tr.Text,
		Language:  tr.Language,
		Source:    string(o.source),
		DurationS: int64(time.Since(o.startedAt).Seconds()),
	}
	if tr.Raw != tr.Text {
		entry.Raw = tr.Raw
	}
	if err := o.cfg.History.Add(entry); err != nil {
		slog.Warn("failed to record history entry", "error", err)
	}
}

func (o *Orchestrator) fail(kind FailureKind, msg string) {
	o.reset()
	o.result = failure(kind, msg)
	o.publish(msg)
}

func (o *Orchestrator) reset() {
	o.state = StateIdle
	o.handle = nil
	o.sessionID = ""
	o.result = Result{}
}

func (o *Orchestrator) publish(text string) {
	st := Status{State: o.state, Text: text, Result: o.result}
	o.statusMu.Lock()
	o.status = st
	o.statusMu.Unlock()
	if o.cfg.OnStatus != nil {
		o.cfg.OnStatus(st)
	}
}

func (o *Orchestrator) forwardLevel(level float64) {
	if o.cfg.OnLevel != nil {
		o.cfg.OnLevel(level)
	}
}

func missingRequirements(st types.SpeechSettings) []string {
	var missing []string
	if !st.Enabled {
		missing = append(missing, "dictation disabled in settings")
	}
	if st.Provider == "" {
		missing = append(missing, "transcription provider")
	}
	if st.APIKey == "" {
		missing = append(missing, "API key")
	}
	return missing
}
