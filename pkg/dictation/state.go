package dictation

// State models the recording lifecycle. Exactly one instance exists
// process-wide; transitions are serialized by the controller.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing

	// StateShutdown is the sentinel published on the notification path when
	// the process exits. The controller itself never enters it.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Event is an input to the state machine.
type Event int

const (
	// EventHotkey is a debounce-accepted hotkey press.
	EventHotkey Event = iota
	// EventCaptureAccepted is raised by the worker when a capture passed the
	// minimum-duration check and is headed for transcription.
	EventCaptureAccepted
	// EventSessionDone is raised by the worker as its final action,
	// regardless of how the session ended.
	EventSessionDone
)

// Transition is the total transition function: every state/event pair has a
// defined outcome, no-ops included. The second result reports whether the
// state changed.
//
//	Idle      + hotkey  -> Recording   (controller spawns the worker)
//	Recording + hotkey  -> Recording   (stop is signaled; the worker moves on)
//	Processing + hotkey -> Processing  (ignored)
//	Recording + capture accepted -> Processing
//	Recording + session done     -> Idle  (rejected or failed capture)
//	Processing + session done    -> Idle
func Transition(s State, e Event) (State, bool) {
	switch {
	case s == StateIdle && e == EventHotkey:
		return StateRecording, true
	case s == StateRecording && e == EventCaptureAccepted:
		return StateProcessing, true
	case s == StateRecording && e == EventSessionDone:
		return StateIdle, true
	case s == StateProcessing && e == EventSessionDone:
		return StateIdle, true
	default:
		return s, false
	}
}
