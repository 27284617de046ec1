package dictation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, stuck at %v", want, c.State())
}

func newTestController(cap *fakeCapturer, eng *fakeTranscriber, opts Options) (*Controller, *fakeDispatcher, *fakeStore, *fakeNotifier) {
	dispatch := &fakeDispatcher{}
	store := &fakeStore{}
	notify := &fakeNotifier{}
	c := NewController(cap, eng, dispatch, store, notify, opts, testLogger())
	return c, dispatch, store, notify
}

func TestFullCycleCopiesAndPastes(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 32000), elapsed: 2 * time.Second}
	eng := &fakeTranscriber{text: "hello world"}
	c, dispatch, store, notify := newTestController(cap, eng, Options{
		MinDuration: 1200 * time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey() // stop; 2.0s >= min 1.2s
	waitForState(t, c, StateIdle)

	if got := dispatch.texts(); len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("dispatched %v, want [hello world]", got)
	}
	if store.count() != 1 {
		t.Fatalf("artifact saved %d times, want 1", store.count())
	}
	if eng.rate() != 16000 {
		t.Fatalf("transcriber got rate %d", eng.rate())
	}
	assertSequence(t, notify.states(), StateRecording, StateProcessing, StateIdle)
}

func TestTooShortCaptureNeverReachesProcessing(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 500 * time.Millisecond}
	eng := &fakeTranscriber{text: "should not be called"}
	c, dispatch, _, notify := newTestController(cap, eng, Options{
		MinDuration: 1200 * time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey()
	waitForState(t, c, StateIdle)

	if eng.calls() != 0 {
		t.Fatal("transcriber called for a too-short capture")
	}
	if len(dispatch.texts()) != 0 {
		t.Fatal("dispatcher called for a too-short capture")
	}
	assertSequence(t, notify.states(), StateRecording, StateIdle)
}

func TestDebounceDiscardsRapidSecondPress(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 2 * time.Second}
	c, _, _, notify := newTestController(cap, &fakeTranscriber{}, Options{
		Debounce:    time.Hour,
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey() // within debounce: ignored, recording continues

	time.Sleep(20 * time.Millisecond)
	if got := c.State(); got != StateRecording {
		t.Fatalf("state after debounced press = %v, want recording", got)
	}
	recordings := 0
	for _, s := range notify.states() {
		if s == StateRecording {
			recordings++
		}
	}
	if recordings != 1 {
		t.Fatalf("saw %d recording transitions, want 1", recordings)
	}

	c.Close()
	waitForState(t, c, StateIdle)
}

func TestEmptyCaptureDiscardedSilently(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, elapsed: 2 * time.Second} // no samples
	eng := &fakeTranscriber{}
	c, dispatch, _, notify := newTestController(cap, eng, Options{
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey()
	waitForState(t, c, StateIdle)

	if eng.calls() != 0 || len(dispatch.texts()) != 0 {
		t.Fatal("empty capture should be discarded before transcription")
	}
	assertSequence(t, notify.states(), StateRecording, StateIdle)
}

func TestDeviceErrorIsSessionLocal(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{err: errors.New("device unavailable")}
	c, _, _, _ := newTestController(cap, &fakeTranscriber{text: "ok"}, Options{
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateIdle)

	// The machine accepts the next press normally.
	cap.setError(nil)
	cap.setCapture(make([]int16, 8000), 2*time.Second, true)
	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey()
	waitForState(t, c, StateIdle)
}

func TestTranscriptionFailureStillReturnsToIdle(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 2 * time.Second}
	eng := &fakeTranscriber{err: errors.New("engine crashed")}
	c, dispatch, _, notify := newTestController(cap, eng, Options{
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey()
	waitForState(t, c, StateIdle)

	if len(dispatch.texts()) != 0 {
		t.Fatal("dispatcher called after transcription failure")
	}
	assertSequence(t, notify.states(), StateRecording, StateProcessing, StateIdle)

	// Next hotkey starts a fresh session.
	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.Close()
	waitForState(t, c, StateIdle)
}

func TestHotkeyIgnoredWhileProcessing(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 2 * time.Second}
	eng := &fakeTranscriber{text: "slow", proceed: make(chan struct{})}
	c, _, _, notify := newTestController(cap, eng, Options{
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey()
	waitForState(t, c, StateProcessing)

	c.OnHotkey() // must be a no-op
	if got := c.State(); got != StateProcessing {
		t.Fatalf("state after press during processing = %v", got)
	}

	close(eng.proceed)
	waitForState(t, c, StateIdle)

	recordings := 0
	for _, s := range notify.states() {
		if s == StateRecording {
			recordings++
		}
	}
	if recordings != 1 {
		t.Fatalf("press during processing started a session (%d recordings)", recordings)
	}
}

func TestArtifactFailureDoesNotBlockCycle(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 2 * time.Second}
	c, dispatch, store, _ := newTestController(cap, &fakeTranscriber{text: "hello"}, Options{
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})
	store.errVal = errors.New("disk full")

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey()
	waitForState(t, c, StateIdle)

	if got := dispatch.texts(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("dispatched %v despite artifact failure, want [hello]", got)
	}
}

func TestEmptyTranscriptionStillCopied(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 2 * time.Second}
	c, dispatch, _, _ := newTestController(cap, &fakeTranscriber{text: ""}, Options{
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.OnHotkey()
	waitForState(t, c, StateIdle)

	// Clipboard copy is attempted even for empty text; the dispatcher alone
	// guards the paste keystroke.
	if got := dispatch.texts(); len(got) != 1 || got[0] != "" {
		t.Fatalf("dispatched %v, want one empty copy", got)
	}
}

// Over many cycles the published states stay a subsequence of
// Idle -> Recording -> Processing -> Idle, never skipping Idle between two
// recordings.
func TestStateSequenceInvariant(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 2 * time.Second}
	c, _, _, notify := newTestController(cap, &fakeTranscriber{text: "x"}, Options{
		MinDuration: time.Millisecond,
		SampleRate:  16000,
	})

	for i := 0; i < 10; i++ {
		if i%3 == 0 {
			cap.setCapture(nil, 2*time.Second, true) // rejected: empty
		} else {
			cap.setCapture(make([]int16, 8000), 2*time.Second, true)
		}
		c.OnHotkey()
		waitForState(t, c, StateRecording)
		c.OnHotkey()
		waitForState(t, c, StateIdle)
	}

	prev := StateIdle
	for i, s := range notify.states() {
		ok := false
		switch s {
		case StateRecording:
			ok = prev == StateIdle
		case StateProcessing:
			ok = prev == StateRecording
		case StateIdle:
			ok = prev == StateRecording || prev == StateProcessing
		}
		if !ok {
			t.Fatalf("illegal transition %v -> %v at index %d: %v", prev, s, i, notify.states())
		}
		prev = s
	}
}

func TestCloseRejectsFurtherHotkeys(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{waitStop: true, samples: make([]int16, 8000), elapsed: 2 * time.Second}
	c, _, _, _ := newTestController(cap, &fakeTranscriber{}, Options{SampleRate: 16000})

	c.OnHotkey()
	waitForState(t, c, StateRecording)
	c.Close()
	waitForState(t, c, StateIdle)

	c.OnHotkey()
	time.Sleep(10 * time.Millisecond)
	if got := c.State(); got != StateIdle {
		t.Fatalf("hotkey accepted after Close, state = %v", got)
	}
}

func assertSequence(t *testing.T, got []State, want ...State) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("state sequence %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("state sequence %v, want %v", got, want)
		}
	}
}

type fakeCapturer struct {
	mu       sync.Mutex
	samples  []int16
	elapsed  time.Duration
	err      error
	waitStop bool
}

func (f *fakeCapturer) Record(stop <-chan struct{}) ([]int16, time.Duration, error) {
	f.mu.Lock()
	samples, elapsed, err, wait := f.samples, f.elapsed, f.err, f.waitStop
	f.mu.Unlock()
	if err != nil {
		return nil, 0, err
	}
	if wait {
		<-stop
	}
	return samples, elapsed, nil
}

func (f *fakeCapturer) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeCapturer) setCapture(samples []int16, elapsed time.Duration, waitStop bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = samples
	f.elapsed = elapsed
	f.waitStop = waitStop
}

type fakeTranscriber struct {
	mu      sync.Mutex
	text    string
	err     error
	nCalls  int
	gotRate int
	proceed chan struct{} // optional: blocks Transcribe until closed
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []int16, rate int) (string, error) {
	f.mu.Lock()
	f.nCalls++
	f.gotRate = rate
	proceed := f.proceed
	text, err := f.text, f.err
	f.mu.Unlock()
	if proceed != nil {
		<-proceed
	}
	return text, err
}

func (f *fakeTranscriber) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nCalls
}

func (f *fakeTranscriber) rate() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotRate
}

type fakeDispatcher struct {
	mu  sync.Mutex
	got []string
	err error
}

func (f *fakeDispatcher) CopyAndPaste(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, text)
	return f.err
}

func (f *fakeDispatcher) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.got))
	copy(out, f.got)
	return out
}

type fakeStore struct {
	mu     sync.Mutex
	saves  int
	errVal error
}

func (f *fakeStore) Save(_ []int16, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.errVal != nil {
		return "", f.errVal
	}
	return "recording_test.wav", nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type fakeNotifier struct {
	mu  sync.Mutex
	seq []State
}

func (f *fakeNotifier) Publish(s State) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq = append(f.seq, s)
	return true
}

func (f *fakeNotifier) states() []State {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]State, len(f.seq))
	copy(out, f.seq)
	return out
}
