// Package audiocapture owns the microphone for the duration of one recording
// and produces a finished WAV payload on stop.
package audiocapture

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"go.aimuz.me/murmur/permission"
)

// ErrAlreadyCapturing is returned when a capture is already in progress.
var ErrAlreadyCapturing = errors.New("already capturing audio")

// ErrNoActiveCapture is returned when Stop or Cancel is called without a
// matching successful Start. This is a programming error in the caller.
var ErrNoActiveCapture = errors.New("no active capture")

// ErrPermissionDenied is returned when microphone access is denied or
// restricted by the OS.
var ErrPermissionDenied = errors.New("microphone permission denied")

const (
	// DefaultSampleRate is the encoder sample rate (mono, 16-bit PCM).
	DefaultSampleRate = 44100

	defaultLevelInterval = 100 * time.Millisecond
	tempFilePattern      = "murmur-*.wav"
)

// Source streams microphone samples into a callback. Implementations exist
// for PortAudio and, in tests, an in-memory fake.
type Source interface {
	Start(sampleRate int, fn func(samples []float32)) error
	Stop() error
}

// Config holds configuration for the capture manager.
type Config struct {
	Source        Source        // defaults to the PortAudio source
	TempDir       string        // defaults to os.TempDir()
	SampleRate    int           // defaults to DefaultSampleRate
	LevelInterval time.Duration // defaults to 100ms

	// Permission hooks, overridable in tests. Default to the permission package.
	Microphone        func() permission.MicStatus
	RequestMicrophone func() permission.MicStatus
}

// Manager coordinates exclusive microphone ownership: at most one Handle is
// live at a time, backed by exactly one temporary artifact on disk.
type Manager struct {
	source        Source
	tempDir       string
	sampleRate    int
	levelInterval time.Duration
	micStatus     func() permission.MicStatus
	micRequest    func() permission.MicStatus

	mu     sync.Mutex
	active *Handle
}

// New creates a capture manager.
func New(cfg Config) *Manager {
	if cfg.Source == nil {
		cfg.Source = newPortAudioSource()
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.LevelInterval == 0 {
		cfg.LevelInterval = defaultLevelInterval
	}
	if cfg.Microphone == nil {
		cfg.Microphone = permission.Microphone
	}
	if cfg.RequestMicrophone == nil {
		cfg.RequestMicrophone = permission.RequestMicrophone
	}
	return &Manager{
		source:        cfg.Source,
		tempDir:       cfg.TempDir,
		sampleRate:    cfg.SampleRate,
		levelInterval: cfg.LevelInterval,
		micStatus:     cfg.Microphone,
		micRequest:    cfg.RequestMicrophone,
	}
}

// Handle is the ownership token for an in-progress recording.
type Handle struct {
	id        string
	path      string
	file      *os.File
	enc       *wav.Encoder
	startedAt time.Time

	mu       sync.Mutex
	closed   bool
	writeErr error
	sumSq    float64
	count    int

	levelDone chan struct{}
	levelWG   sync.WaitGroup
}

// ID returns the unique identifier of this capture.
func (h *Handle) ID() string { return h.id }

// Path returns the temporary artifact path, for diagnostics.
func (h *Handle) Path() string { return h.path }

// StartedAt returns when the capture began.
func (h *Handle) StartedAt() time.Time { return h.startedAt }

// Start requests microphone permission if not yet determined, opens the
// encoder sink backed by a temporary file and begins streaming samples into
// it. levelFn, if non-nil, receives a normalized 0.0-1.0 amplitude at a fixed
// interval; it is cosmetic and runs off the encode path.
func (m *Manager) Start(levelFn func(level float64)) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrAlreadyCapturing
	}

	status := m.micStatus()
	if status == permission.MicNotDetermined {
		status = m.micRequest()
	}
	if status != permission.MicAuthorized {
		return nil, fmt.Errorf("microphone %s: %w", status, ErrPermissionDenied)
	}

	f, err := os.CreateTemp(m.tempDir, tempFilePattern)
	if err != nil {
		return nil, fmt.Errorf("create temp audio file: %w", err)
	}

	h := &Handle{
		id:        uuid.New().String(),
		path:      f.Name(),
		file:      f,
		enc:       wav.NewEncoder(f, m.sampleRate, 16, 1, 1),
		startedAt: time.Now(),
		levelDone: make(chan struct{}),
	}

	if err := m.source.Start(m.sampleRate, h.consume); err != nil {
		f.Close()
		os.Remove(h.path)
		return nil, fmt.Errorf("start audio source: %w", err)
	}

	if levelFn != nil {
		h.levelWG.Add(1)
		go h.levelLoop(m.levelInterval, levelFn)
	}

	m.active = h
	slog.Info("audio capture started", "id", h.id, "path", h.path)
	return h, nil
}

// Stop halts the source and the level timer, closes the sink, reads the
// finished payload into memory and deletes the temporary artifact.
func (m *Manager) Stop(h *Handle) ([]byte, error) {
	if err := m.release(h); err != nil {
		return nil, err
	}

	writeErr := m.finish(h)
	defer os.Remove(h.path)

	if writeErr != nil {
		return nil, fmt.Errorf("encode audio: %w", writeErr)
	}

	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("read audio payload: %w", err)
	}
	slog.Info("audio capture stopped", "id", h.id, "bytes", len(data),
		"duration", time.Since(h.startedAt).Round(time.Millisecond))
	return data, nil
}

// Cancel stops and discards the capture without returning bytes. The
// temporary artifact is always deleted.
func (m *Manager) Cancel(h *Handle) {
	if err := m.release(h); err != nil {
		return
	}
	_ = m.finish(h)
	os.Remove(h.path)
	slog.Info("audio capture canceled", "id", h.id)
}

// release detaches h as the active capture, or reports ErrNoActiveCapture.
func (m *Manager) release(h *Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h == nil || m.active != h {
		return ErrNoActiveCapture
	}
	m.active = nil
	return nil
}

// finish halts the source and level timer synchronously, then closes the
// encoder and file. Returns any deferred write error.
func (m *Manager) finish(h *Handle) error {
	if err := m.source.Stop(); err != nil {
		slog.Warn("stop audio source", "error", err)
	}

	close(h.levelDone)
	h.levelWG.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if err := h.enc.Close(); err != nil && h.writeErr == nil {
		h.writeErr = err
	}
	if err := h.file.Close(); err != nil && h.writeErr == nil {
		h.writeErr = err
	}
	return h.writeErr
}

// consume is the source callback: encode samples and track amplitude.
func (h *Handle) consume(samples []float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.writeErr != nil {
		return
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: h.enc.SampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		buf.Data[i] = int(s * 32767)
		h.sumSq += float64(s) * float64(s)
	}
	h.count += len(samples)

	if err := h.enc.Write(buf); err != nil {
		h.writeErr = err
	}
}

// levelLoop reports normalized amplitude until the capture finishes.
func (h *Handle) levelLoop(interval time.Duration, levelFn func(float64)) {
	defer h.levelWG.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.levelDone:
			return
		case <-ticker.C:
			levelFn(h.takeLevel())
		}
	}
}

// takeLevel computes the RMS amplitude since the last sample and resets the
// accumulator. Speech RMS rarely exceeds ~0.3, so scale before clamping.
func (h *Handle) takeLevel() float64 {
	h.mu.Lock()
	sumSq, count := h.sumSq, h.count
	h.sumSq, h.count = 0, 0
	h.mu.Unlock()

	if count == 0 {
		return 0
	}
	level := math.Sqrt(sumSq/float64(count)) * 3
	return math.Min(level, 1.0)
}

// CleanupStale removes leftover capture artifacts from previous runs. Best
// effort only; a crash mid-capture may leave one behind.
func (m *Manager) CleanupStale() {
	matches, err := filepath.Glob(filepath.Join(m.tempDir, tempFilePattern))
	if err != nil {
		return
	}
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || time.Since(info.ModTime()) < time.Hour {
			continue
		}
		if err := os.Remove(path); err == nil {
			slog.Debug("removed stale capture artifact", "path", path)
		}
	}
}
