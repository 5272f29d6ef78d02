package deliver

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.aimuz.me/murmur/internal/types"
)

type fakeBackend struct {
	clipboardText string
	clipboardErr  error
	injected      string
	injectErr     error
	pastes        int
	pasteErr      error

	axGranted bool

	mu        sync.Mutex
	axPrompts int
}

func (f *fakeBackend) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.axPrompts
}

func (f *fakeBackend) deliverer() *Deliverer {
	return &Deliverer{
		accessibility: func(prompt bool) bool {
			if prompt {
				f.mu.Lock()
				f.axPrompts++
				f.mu.Unlock()
			}
			return f.axGranted
		},
		writeClipboard: func(text string) error {
			if f.clipboardErr != nil {
				return f.clipboardErr
			}
			f.clipboardText = text
			return nil
		},
		injectText: func(text string) error {
			if f.injectErr != nil {
				return f.injectErr
			}
			f.injected = text
			return nil
		},
		pasteKeystroke: func() error {
			f.pastes++
			return f.pasteErr
		},
	}
}

func TestDeliverHotkeyInjects(t *testing.T) {
	f := &fakeBackend{axGranted: true}
	out := f.deliverer().Deliver("hello world", types.TriggerHotkey)

	if !out.Clipboard || f.clipboardText != "hello world" {
		t.Fatalf("expected clipboard write, outcome %+v", out)
	}
	if !out.Injected || out.Method != "inject" {
		t.Fatalf("expected injection, outcome %+v", out)
	}
	if f.injected != "hello world" {
		t.Fatalf("injected = %q", f.injected)
	}
	if out.Degraded(types.TriggerHotkey) {
		t.Fatal("full delivery must not be degraded")
	}
}

func TestDeliverManualNeverInjects(t *testing.T) {
	// Even with accessibility granted, a manual session stays clipboard-only.
	f := &fakeBackend{axGranted: true}
	out := f.deliverer().Deliver("hello", types.TriggerManual)

	if !out.Clipboard {
		t.Fatal("expected clipboard write")
	}
	if out.Injected || f.injected != "" || f.pastes != 0 {
		t.Fatalf("manual delivery must not inject: %+v", out)
	}
	if out.Degraded(types.TriggerManual) {
		t.Fatal("clipboard-only is full delivery for manual sessions")
	}
}

func TestDeliverAccessibilityDeniedDegrades(t *testing.T) {
	f := &fakeBackend{axGranted: false}
	d := f.deliverer()
	out := d.Deliver("hello", types.TriggerHotkey)

	if !out.Clipboard || f.clipboardText != "hello" {
		t.Fatal("clipboard copy must remain as the manual fallback")
	}
	if out.Injected {
		t.Fatal("must not inject without accessibility permission")
	}
	if !out.Degraded(types.TriggerHotkey) {
		t.Fatal("expected degraded outcome")
	}

	// The prompt is requested once, not on every delivery.
	d.Deliver("again", types.TriggerHotkey)
	waitFor(t, func() bool { return f.promptCount() == 1 })
}

func TestDeliverClipboardFailureStillAttemptsInjection(t *testing.T) {
	f := &fakeBackend{axGranted: true, clipboardErr: errors.New("no display")}
	out := f.deliverer().Deliver("hello", types.TriggerHotkey)

	if out.Clipboard {
		t.Fatal("clipboard write should have failed")
	}
	if !out.Injected || out.Method != "inject" {
		t.Fatalf("expected injection despite clipboard failure: %+v", out)
	}
}

func TestDeliverInjectFailureFallsBackToPaste(t *testing.T) {
	f := &fakeBackend{axGranted: true, injectErr: errors.New("no focused element")}
	out := f.deliverer().Deliver("hello", types.TriggerHotkey)

	if !out.Injected || out.Method != "paste" {
		t.Fatalf("expected paste fallback, outcome %+v", out)
	}
	if f.pastes != 1 {
		t.Fatalf("pastes = %d", f.pastes)
	}
}

func TestDeliverLongTextUsesPaste(t *testing.T) {
	f := &fakeBackend{axGranted: true}
	long := strings.Repeat("word ", 100)
	out := f.deliverer().Deliver(long, types.TriggerHotkey)

	if out.Method != "paste" || !out.Injected {
		t.Fatalf("expected paste for long text, outcome %+v", out)
	}
	if f.injected != "" {
		t.Fatal("long text must not be typed directly")
	}
}

func TestDeliverEverythingFailsNeverPanics(t *testing.T) {
	f := &fakeBackend{
		axGranted:    true,
		clipboardErr: errors.New("down"),
		injectErr:    errors.New("down"),
		pasteErr:     errors.New("down"),
	}
	out := f.deliverer().Deliver("hello", types.TriggerHotkey)

	if out.Clipboard || out.Injected {
		t.Fatalf("expected fully degraded outcome, got %+v", out)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
