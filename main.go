package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/getlantern/systray"

	"mutter/pkg/audio"
	"mutter/pkg/config"
	"mutter/pkg/dictation"
	"mutter/pkg/hotkeys"
	"mutter/pkg/notify"
	"mutter/pkg/output"
	"mutter/pkg/recordings"
	"mutter/pkg/whisper"
)

var (
	cfg        config.Config
	logger     *slog.Logger
	capture    *audio.Capture
	controller *dictation.Controller
	queue      *notify.Queue
	toggle     *hotkeys.Listener
	stopCancel func()
)

func main() {
	cfg = config.Load(config.DefaultPath(), slog.Default())
	logger = setupLogging(cfg.Paths.LogFile)
	logger.Info("mutter starting", slog.String("hotkey", cfg.UI.Hotkey))

	systray.Run(onReady, onExit)
}

// setupLogging mirrors each record to the log file and stdout. A log file
// failure degrades to stdout only.
func setupLogging(logFile string) *slog.Logger {
	var w io.Writer = os.Stdout
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err == nil {
		if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			w = io.MultiWriter(f, os.Stdout)
		}
	}
	l := slog.New(slog.NewTextHandler(w, nil))
	slog.SetDefault(l)
	return l
}

func onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle("")
	systray.SetTooltip("Voice dictation (" + cfg.UI.Hotkey + ")")

	mQuit := systray.AddMenuItem("Quit", "Quit voice dictation")

	// Startup is the only place a failure may abort the process; once the
	// hotkey listener is up, every error is session-local.
	client, err := whisper.NewClient(whisper.Options{
		Command:     cfg.Whisper.Command,
		Model:       cfg.Whisper.Model,
		Language:    cfg.Whisper.Language,
		VADFilter:   cfg.Whisper.VADFilter,
		ComputeType: cfg.Whisper.ComputeType,
	})
	if err == nil {
		err = client.Ready()
	}
	if err != nil {
		logger.Error("transcription engine init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	capture, err = audio.NewCapture(audio.CaptureConfig{
		SampleRate:  cfg.Recording.SampleRate,
		InputDevice: cfg.Recording.InputDevice,
		TargetRate:  config.EngineSampleRate,
	}, logger)
	if err != nil {
		logger.Error("audio init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	queue = notify.NewQueue(0)
	controller = dictation.NewController(
		capture,
		client,
		output.NewDispatcher(logger),
		recordings.NewStore(cfg.Paths.RecordingsDir),
		queue,
		dictation.Options{
			Debounce:    secondsToDuration(cfg.UI.HotkeyDebounceSec),
			MinDuration: secondsToDuration(cfg.Recording.MinDurationSec),
			SampleRate:  config.EngineSampleRate,
		},
		logger,
	)

	go consumeUpdates(queue)

	toggle, err = hotkeys.NewListener(cfg.UI.Hotkey)
	if err == nil {
		err = toggle.Start(controller.OnHotkey)
	}
	if err != nil {
		logger.Error("hotkey registration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	stopCancel = hotkeys.StartCancelListener(controller.StopRecording)

	logger.Info("ready", slog.String("hotkey", cfg.UI.Hotkey))

	go func() {
		<-mQuit.ClickedCh
		systray.Quit()
	}()
}

// consumeUpdates drives the tray icon from the notification queue until the
// shutdown sentinel arrives. An overlay window, if present, taps this same
// queue; its rendering lives outside this program.
func consumeUpdates(q *notify.Queue) {
	for state := range q.Updates() {
		switch state {
		case dictation.StateRecording:
			systray.SetIcon(iconRecording)
			systray.SetTooltip("Recording... press " + cfg.UI.Hotkey + " to stop")
		case dictation.StateProcessing:
			systray.SetIcon(iconProcessing)
			systray.SetTooltip("Processing...")
		case dictation.StateIdle:
			systray.SetIcon(iconIdle)
			systray.SetTooltip("Voice dictation (" + cfg.UI.Hotkey + ")")
		case dictation.StateShutdown:
			return
		}
	}
}

func onExit() {
	if toggle != nil {
		toggle.Stop()
	}
	if stopCancel != nil {
		stopCancel()
	}
	if controller != nil {
		controller.Close()
	}
	if capture != nil {
		capture.Close()
	}
	if queue != nil {
		queue.Shutdown()
	}
	logger.Info("mutter stopped")
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
