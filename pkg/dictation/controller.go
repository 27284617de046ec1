// Package dictation coordinates one record -> transcribe -> paste cycle per
// hotkey toggle.
package dictation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Capturer records microphone audio until the stop signal is observed.
type Capturer interface {
	Record(stop <-chan struct{}) (samples []int16, elapsed time.Duration, err error)
}

// Transcriber converts captured audio to text. Calls are synchronous and can
// take several seconds; there is no mid-transcription cancellation.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16, sampleRate int) (string, error)
}

// Dispatcher delivers text to the focused application.
type Dispatcher interface {
	CopyAndPaste(text string) error
}

// ArtifactStore persists captured audio as a side artifact. Best-effort.
type ArtifactStore interface {
	Save(samples []int16, sampleRate int) (path string, err error)
}

// Notifier receives a state update on every transition. Publish must never
// block; a false return means the update was dropped.
type Notifier interface {
	Publish(s State) bool
}

// Options tune the controller's accept/reject policies.
type Options struct {
	// Debounce discards hotkey presses arriving within this window of the
	// previous accepted press.
	Debounce time.Duration
	// MinDuration rejects captures shorter than this, guarding against an
	// accidental double-press being misread as a full recording.
	MinDuration time.Duration
	// SampleRate is the rate of the buffers handed to the transcriber and
	// artifact store.
	SampleRate int
}

// Controller is the dictation state machine. The hotkey context and at most
// one worker goroutine share it; the mutex serializes every state access.
type Controller struct {
	capture  Capturer
	engine   Transcriber
	dispatch Dispatcher
	store    ArtifactStore
	notify   Notifier
	opts     Options
	log      *slog.Logger

	mu           sync.Mutex
	state        State
	stop         chan struct{} // non-nil only while a session is active
	lastAccepted time.Time
	closed       bool
}

func NewController(
	capture Capturer,
	engine Transcriber,
	dispatch Dispatcher,
	store ArtifactStore,
	notify Notifier,
	opts Options,
	log *slog.Logger,
) *Controller {
	return &Controller{
		capture:  capture,
		engine:   engine,
		dispatch: dispatch,
		store:    store,
		notify:   notify,
		opts:     opts,
		log:      log.With(slog.String("component", "dictation")),
		state:    StateIdle,
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnHotkey handles a global hotkey press. It never blocks the caller beyond
// bookkeeping: recording and transcription run on the worker goroutine.
func (c *Controller) OnHotkey() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	now := time.Now()
	if now.Sub(c.lastAccepted) < c.opts.Debounce {
		// Key-repeat artifact (the OS can re-fire the combination when the
		// foreground window changes while the key is held).
		return
	}

	switch c.state {
	case StateIdle:
		c.lastAccepted = now
		c.applyLocked(EventHotkey)
		stop := make(chan struct{})
		c.stop = stop
		go c.runSession(stop)
	case StateRecording:
		c.lastAccepted = now
		c.signalStopLocked()
	case StateProcessing:
		// Ignored; a new session cannot start until the machine is Idle.
	}
}

// StopRecording signals the active capture to stop, if any. Unlike OnHotkey
// it bypasses the debounce window, so it can serve a dedicated cancel key.
func (c *Controller) StopRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRecording {
		c.signalStopLocked()
	}
}

// Close signals any in-flight capture to stop and rejects further hotkey
// events. It does not wait for the worker.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.signalStopLocked()
}

func (c *Controller) signalStopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// applyLocked advances the state machine and publishes the new state.
// Callers hold c.mu; Publish is non-blocking so holding the lock is safe.
func (c *Controller) applyLocked(e Event) {
	next, changed := Transition(c.state, e)
	c.state = next
	if changed {
		c.notify.Publish(next)
	}
}

func (c *Controller) apply(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(e)
}

func (c *Controller) finishSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stop = nil
	c.applyLocked(EventSessionDone)
}

// runSession is the per-session worker. Capture strictly precedes
// transcription, which strictly precedes dispatch. Every failure is
// session-local: the machine always returns to Idle, ready for the next
// press.
func (c *Controller) runSession(stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("session panic", slog.Any("panic", r))
		}
		// Returning to Idle is the worker's absolute last action, so a new
		// session can only start once this one has fully ended.
		c.finishSession()
	}()

	samples, elapsed, err := c.capture.Record(stop)
	if err != nil {
		c.log.Error("capture failed", slog.String("error", err.Error()))
		return
	}
	if len(samples) == 0 {
		c.log.Warn("recording stopped, no audio captured")
		return
	}
	if elapsed < c.opts.MinDuration {
		c.log.Warn("recording too short, discarded",
			slog.Duration("elapsed", elapsed),
			slog.Duration("min", c.opts.MinDuration))
		return
	}

	c.apply(EventCaptureAccepted)

	if path, err := c.store.Save(samples, c.opts.SampleRate); err != nil {
		c.log.Warn("failed to save recording artifact", slog.String("error", err.Error()))
	} else {
		c.log.Info("saved recording", slog.String("path", path))
	}

	text, err := c.engine.Transcribe(context.Background(), samples, c.opts.SampleRate)
	if err != nil {
		c.log.Error("transcription failed", slog.String("error", err.Error()))
		return
	}
	if text == "" {
		c.log.Info("transcription empty, no speech detected")
	} else {
		c.log.Info("transcription result", slog.Int("chars", len(text)))
	}

	if err := c.dispatch.CopyAndPaste(text); err != nil {
		c.log.Error("dispatch failed", slog.String("error", err.Error()))
	}
}
