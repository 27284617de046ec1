// Package hotkeys wires global key bindings to the dictation controller.
//
// The toggle combination is registered with the OS, which keeps it from
// leaking into the focused application. The cancel key is observed through a
// passive low-level hook instead: it must keep working for every other
// application.
package hotkeys

import (
	"fmt"

	hook "github.com/robotn/gohook"
	"golang.design/x/hotkey"
)

// Listener owns the registered toggle hotkey.
type Listener struct {
	hk   *hotkey.Hotkey
	done chan struct{}
}

// NewListener parses spec and prepares the OS-level registration.
func NewListener(spec string) (*Listener, error) {
	mods, key, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	return &Listener{
		hk:   hotkey.New(mods, key),
		done: make(chan struct{}),
	}, nil
}

// Start registers the hotkey and invokes handler on every press. The handler
// runs on the listener goroutine, so it must return quickly.
func (l *Listener) Start(handler func()) error {
	if err := l.hk.Register(); err != nil {
		return fmt.Errorf("register hotkey: %w", err)
	}
	go func() {
		for {
			select {
			case <-l.done:
				return
			case <-l.hk.Keydown():
				handler()
			}
		}
	}()
	return nil
}

// Stop unregisters the hotkey and ends the listener goroutine.
func (l *Listener) Stop() {
	close(l.done)
	l.hk.Unregister()
}

// StartCancelListener invokes handler on every Escape press without
// suppressing the key. The returned function tears the hook down.
func StartCancelListener(handler func()) func() {
	hook.Register(hook.KeyDown, []string{"esc"}, func(hook.Event) {
		handler()
	})
	events := hook.Start()
	go func() {
		<-hook.Process(events)
	}()
	return hook.End
}
