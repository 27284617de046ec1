package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"mutter/pkg/audio"
	"mutter/pkg/config"
	"mutter/pkg/dictation"
	"mutter/pkg/notify"
	"mutter/pkg/output"
	"mutter/pkg/recordings"
	"mutter/pkg/whisper"
)

// Console front end: toggles a dictation session on Enter instead of a
// global hotkey. Useful on headless setups and for trying out engine
// settings without a tray.
func main() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Load(config.DefaultPath(), logger)

	engine, err := whisper.NewClient(whisper.Options{
		Command:     cfg.Whisper.Command,
		Model:       cfg.Whisper.Model,
		Language:    cfg.Whisper.Language,
		VADFilter:   cfg.Whisper.VADFilter,
		ComputeType: cfg.Whisper.ComputeType,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "speech engine: %v\n", err)
		os.Exit(1)
	}
	if err := engine.Ready(); err != nil {
		fmt.Fprintf(os.Stderr, "speech engine: %v\n", err)
		os.Exit(1)
	}

	capture, err := audio.NewCapture(audio.CaptureConfig{
		SampleRate:  cfg.Recording.SampleRate,
		InputDevice: cfg.Recording.InputDevice,
		TargetRate:  config.EngineSampleRate,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audio: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	queue := notify.NewQueue(0)
	controller := dictation.NewController(
		capture,
		engine,
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
	defer controller.Close()

	go func() {
		for state := range queue.Updates() {
			switch state {
			case dictation.StateRecording:
				fmt.Println("Recording... press Enter to stop.")
			case dictation.StateProcessing:
				fmt.Println("Processing...")
			case dictation.StateIdle:
				fmt.Println("Ready.")
			case dictation.StateShutdown:
				return
			}
		}
	}()

	fmt.Println("Press Enter to toggle recording. Ctrl+C to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		controller.OnHotkey()
	}
	queue.Shutdown()
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
