package hotkey

import (
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"go.aimuz.me/murmur/internal/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		binding types.HotkeyBinding
		wantErr bool
	}{
		{"default", DefaultBinding(), false},
		{"uppercase modifier", types.HotkeyBinding{Modifiers: []string{"Ctrl"}, Key: "d"}, false},
		{"missing key", types.HotkeyBinding{Modifiers: []string{"ctrl"}}, true},
		{"no modifiers", types.HotkeyBinding{Key: "d"}, true},
		{"unknown modifier", types.HotkeyBinding{Modifiers: []string{"hyper"}, Key: "d"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.binding)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeysOrder(t *testing.T) {
	b := types.HotkeyBinding{Modifiers: []string{"Ctrl", "Shift"}, Key: "D"}
	got := keys(b)
	want := []string{"d", "ctrl", "shift"}
	if !slices.Equal(got, want) {
		t.Errorf("keys() = %v, want %v", got, want)
	}
}

func TestFireSuppressesRepeats(t *testing.T) {
	var fired atomic.Int64
	m := NewManager(DefaultBinding(), func() { fired.Add(1) })

	for range 5 {
		m.fire()
	}

	deadline := time.Now().Add(time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// Give any stray goroutines a moment to land.
	time.Sleep(20 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times within repeat window, want 1", got)
	}
}

func TestFireAfterWindow(t *testing.T) {
	var fired atomic.Int64
	m := NewManager(DefaultBinding(), func() { fired.Add(1) })

	m.fire()
	m.mu.Lock()
	m.lastFire = time.Now().Add(-2 * repeatWindow)
	m.mu.Unlock()
	m.fire()

	deadline := time.Now().Add(time.Second)
	for fired.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := fired.Load(); got != 2 {
		t.Errorf("fired %d times across separate presses, want 2", got)
	}
}

func TestRebindValidates(t *testing.T) {
	m := NewManager(DefaultBinding(), func() {})
	if err := m.Rebind(types.HotkeyBinding{Key: ""}); err == nil {
		t.Error("Rebind() accepted empty binding")
	}
	want := types.HotkeyBinding{Modifiers: []string{"cmd"}, Key: "space"}
	if err := m.Rebind(want); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	if got := m.Binding(); got.Key != "space" || !slices.Equal(got.Modifiers, []string{"cmd"}) {
		t.Errorf("Binding() = %+v, want %+v", got, want)
	}
}
