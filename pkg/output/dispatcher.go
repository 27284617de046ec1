// Package output delivers recognized text to the focused application.
package output

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-vgo/robotgo"
)

// Dispatcher places text on the system clipboard and sends a paste keystroke
// to whatever window holds input focus.
type Dispatcher struct {
	log *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{log: log.With(slog.String("component", "output"))}
}

// CopyAndPaste always attempts the clipboard copy, even for empty text. If
// the copy fails the paste is skipped entirely; if the copy succeeds and text
// is non-empty, a paste keystroke follows. A paste failure is non-fatal: the
// text stays on the clipboard for a manual paste.
func (d *Dispatcher) CopyAndPaste(text string) error {
	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard copy: %w", err)
	}
	d.log.Info("copied to clipboard", slog.Int("chars", len(text)))

	if text == "" {
		return nil
	}

	// Wait a bit for the hotkey modifiers to be released.
	time.Sleep(200 * time.Millisecond)
	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		d.log.Warn("paste keystroke failed, text remains on clipboard", slog.String("error", err.Error()))
		return nil
	}
	d.log.Info("paste keystroke sent to focused window")
	return nil
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
