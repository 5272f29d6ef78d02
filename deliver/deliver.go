// Package deliver places finished dictation text into the system clipboard
// and, for hotkey-triggered sessions, into the frontmost application.
package deliver

import (
	"log/slog"
	"sync"

	"go.aimuz.me/murmur/internal/types"
	"go.aimuz.me/murmur/permission"
)

// Past this length direct typing is slow enough to be visible, so the paste
// keystroke is used instead (the clipboard already holds the text).
const injectMaxRunes = 200

// Outcome reports how far delivery got. Delivery never fails a session;
// everything past the clipboard write is best effort.
type Outcome struct {
	Clipboard bool   `json:"clipboard"` // text reached the system clipboard
	Injected  bool   `json:"injected"`  // text reached the frontmost app
	Method    string `json:"method"`    // "clipboard", "inject" or "paste"
}

// Degraded reports whether delivery fell short of what the trigger source
// asked for (hotkey sessions expect injection).
func (o Outcome) Degraded(source types.TriggerSource) bool {
	if !o.Clipboard {
		return true
	}
	return source == types.TriggerHotkey && !o.Injected
}

// Deliverer writes text to the clipboard and injects it into the focused
// application. The function fields default to the real implementations and
// are swappable in tests.
type Deliverer struct {
	accessibility  func(prompt bool) bool
	writeClipboard func(text string) error
	injectText     func(text string) error
	pasteKeystroke func() error

	promptOnce sync.Once
}

// New creates a Deliverer backed by the OS clipboard and input injection.
func New() *Deliverer {
	return &Deliverer{
		accessibility:  permission.Accessibility,
		writeClipboard: writeClipboard,
		injectText:     injectText,
		pasteKeystroke: pasteKeystroke,
	}
}

// Deliver writes text to the clipboard first, then — for hotkey sessions
// only — attempts to place it into the frontmost application, falling back
// from direct injection to a simulated paste keystroke. If accessibility
// permission is missing it is requested once, without blocking, and the
// clipboard copy remains as the manual fallback.
func (d *Deliverer) Deliver(text string, source types.TriggerSource) Outcome {
	out := Outcome{Method: "clipboard"}

	if err := d.writeClipboard(text); err != nil {
		slog.Error("clipboard write failed", "error", err)
	} else {
		out.Clipboard = true
	}

	if source != types.TriggerHotkey {
		return out
	}

	if !d.accessibility(false) {
		d.promptOnce.Do(func() {
			go d.accessibility(true)
		})
		slog.Warn("accessibility permission missing, delivery is clipboard-only")
		return out
	}

	if len([]rune(text)) <= injectMaxRunes {
		if err := d.injectText(text); err == nil {
			out.Injected = true
			out.Method = "inject"
			return out
		} else {
			slog.Warn("text injection failed, falling back to paste", "error", err)
		}
	}

	if !out.Clipboard {
		// Nothing to paste without a clipboard copy.
		return out
	}
	if err := d.pasteKeystroke(); err != nil {
		slog.Warn("paste keystroke failed", "error", err)
		return out
	}
	out.Injected = true
	out.Method = "paste"
	return out
}
