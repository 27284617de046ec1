// Package audio captures microphone input and resamples it for the
// transcription engine.
package audio

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	channelCount    = 1
	audioBufferSize = 1024
)

// CaptureConfig describes how the microphone should be captured.
type CaptureConfig struct {
	SampleRate  int
	InputDevice string // empty = system default
	TargetRate  int    // rate required by the transcription engine
}

// Capture owns the PortAudio input stream for the process.
type Capture struct {
	cfg CaptureConfig
	log *slog.Logger
}

// NewCapture initializes PortAudio. Call Close to release it on exit.
func NewCapture(cfg CaptureConfig, log *slog.Logger) (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	if cfg.TargetRate <= 0 {
		cfg.TargetRate = cfg.SampleRate
	}
	return &Capture{cfg: cfg, log: log.With(slog.String("component", "audio"))}, nil
}

// Close terminates PortAudio.
func (c *Capture) Close() {
	portaudio.Terminate()
}

// Record accumulates samples from the input device until stop is observed,
// then returns the buffer resampled to the engine rate along with the elapsed
// capture time. A device failure returns (nil, 0, err); this is recoverable,
// never fatal to the process.
func (c *Capture) Record(stop <-chan struct{}) ([]int16, time.Duration, error) {
	frames := make([]int16, audioBufferSize)

	stream, err := c.openStream(frames)
	if err != nil {
		return nil, 0, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, 0, fmt.Errorf("start input stream: %w", err)
	}

	var samples []int16
	start := time.Now()

	// Each read blocks for one buffer (64ms at 16kHz), so the stop signal is
	// observed with bounded latency without busy-waiting.
	recording := true
	for recording {
		select {
		case <-stop:
			recording = false
		default:
			if err := stream.Read(); err != nil {
				if err != portaudio.InputOverflowed {
					c.log.Warn("input stream read", slog.String("error", err.Error()))
				}
				continue
			}
			samples = append(samples, frames...)
		}
	}

	stream.Stop()
	stream.Close()

	elapsed := time.Since(start)
	if len(samples) == 0 {
		return nil, elapsed, nil
	}
	if c.cfg.SampleRate != c.cfg.TargetRate {
		samples = Resample(samples, c.cfg.SampleRate, c.cfg.TargetRate)
	}
	return samples, elapsed, nil
}

func (c *Capture) openStream(frames []int16) (*portaudio.Stream, error) {
	if c.cfg.InputDevice == "" {
		return portaudio.OpenDefaultStream(channelCount, 0, float64(c.cfg.SampleRate), len(frames), frames)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	for _, dev := range devices {
		if dev.MaxInputChannels < channelCount {
			continue
		}
		if !strings.Contains(strings.ToLower(dev.Name), strings.ToLower(c.cfg.InputDevice)) {
			continue
		}
		params := portaudio.LowLatencyParameters(dev, nil)
		params.Input.Channels = channelCount
		params.SampleRate = float64(c.cfg.SampleRate)
		params.FramesPerBuffer = len(frames)
		return portaudio.OpenStream(params, frames)
	}
	return nil, fmt.Errorf("input device %q not found", c.cfg.InputDevice)
}
