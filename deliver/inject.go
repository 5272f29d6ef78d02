package deliver

import (
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/go-vgo/robotgo"
	"github.com/micmonay/keybd_event"
)

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// injectText types the text into the focused control directly.
func injectText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// pasteKeystroke sends Cmd+V (macOS) or Ctrl+V. The clipboard must already
// hold the text.
func pasteKeystroke() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}

	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	kb.SetKeys(keybd_event.VK_V)

	// Give the focused app a beat to settle before the synthetic keystroke.
	time.Sleep(80 * time.Millisecond)
	return kb.Launching()
}
