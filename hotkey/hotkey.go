// Package hotkey registers the global dictation key combination and emits one
// activation per physical press.
package hotkey

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"go.aimuz.me/murmur/internal/types"
	"go.aimuz.me/murmur/permission"
)

// repeatWindow suppresses OS key-repeat events while the combination is held.
const repeatWindow = 300 * time.Millisecond

var validModifiers = []string{"ctrl", "shift", "alt", "cmd"}

// DefaultBinding is used until the user configures their own combination.
func DefaultBinding() types.HotkeyBinding {
	return types.HotkeyBinding{Modifiers: []string{"ctrl", "shift"}, Key: "d"}
}

// Validate checks a binding for a usable key and known modifier names.
func Validate(b types.HotkeyBinding) error {
	if strings.TrimSpace(b.Key) == "" {
		return fmt.Errorf("hotkey key required")
	}
	if len(b.Modifiers) == 0 {
		return fmt.Errorf("at least one modifier required")
	}
	for _, mod := range b.Modifiers {
		if !slices.Contains(validModifiers, strings.ToLower(mod)) {
			return fmt.Errorf("unknown modifier: %q", mod)
		}
	}
	return nil
}

// keys flattens a binding into the form gohook registers.
func keys(b types.HotkeyBinding) []string {
	out := make([]string, 0, len(b.Modifiers)+1)
	out = append(out, strings.ToLower(b.Key))
	for _, mod := range b.Modifiers {
		out = append(out, strings.ToLower(mod))
	}
	return out
}

// Manager owns the OS-level hotkey registration. Rebinding unregisters the
// previous combination before the new one takes effect.
type Manager struct {
	onActivate func()

	mu       sync.Mutex
	binding  types.HotkeyBinding
	statusCb func(granted bool)
	running  bool
	lastFire time.Time
}

// NewManager creates a manager that invokes onActivate once per press of the
// bound combination.
func NewManager(binding types.HotkeyBinding, onActivate func()) *Manager {
	return &Manager{binding: binding, onActivate: onActivate}
}

// SetStatusCallback registers a callback for accessibility permission status,
// reported when the listener starts.
func (m *Manager) SetStatusCallback(cb func(granted bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCb = cb
}

// Start registers the binding and begins listening.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hotkey listener already running")
	}
	if err := Validate(m.binding); err != nil {
		return err
	}

	granted := permission.Accessibility(false)
	if m.statusCb != nil {
		m.statusCb(granted)
	}
	if !granted {
		slog.Warn("accessibility permission missing, global hotkey may not fire")
	}

	m.register(m.binding)
	m.running = true
	slog.Info("hotkey registered", "modifiers", m.binding.Modifiers, "key", m.binding.Key)
	return nil
}

// Stop unregisters the binding and halts the listener.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	hook.End()
	m.running = false
}

// Rebind replaces the active combination. The previous binding is fully
// unregistered before the new one is installed.
func (m *Manager) Rebind(binding types.HotkeyBinding) error {
	if err := Validate(binding); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		// End clears gohook's registrations along with the event loop.
		hook.End()
		m.register(binding)
	}
	m.binding = binding
	slog.Info("hotkey rebound", "modifiers", binding.Modifiers, "key", binding.Key)
	return nil
}

// register wires the combination into gohook and (re)starts its event loop.
// Caller holds m.mu.
func (m *Manager) register(binding types.HotkeyBinding) {
	hook.Register(hook.KeyDown, keys(binding), func(e hook.Event) {
		m.fire()
	})

	go func() {
		s := hook.Start()
		<-hook.Process(s)
	}()
}

// fire forwards one activation, collapsing OS key repeats.
func (m *Manager) fire() {
	m.mu.Lock()
	if time.Since(m.lastFire) < repeatWindow {
		m.mu.Unlock()
		return
	}
	m.lastFire = time.Now()
	m.mu.Unlock()

	// Never block the OS event hook.
	go m.onActivate()
}

// Binding returns the currently configured combination.
func (m *Manager) Binding() types.HotkeyBinding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binding
}
