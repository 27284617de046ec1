// Package whisper runs a local speech-recognition engine as a subprocess.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	shellwords "github.com/mattn/go-shellwords"
)

// Options parameterize the engine invocation. The engine itself is an opaque
// collaborator; decoding behavior and language support are its concern.
type Options struct {
	Command     string
	Model       string
	Language    string // empty = auto-detect
	VADFilter   bool
	ComputeType string
}

// Client invokes the engine once per recording. Calls are synchronous and can
// take several seconds depending on the model.
type Client struct {
	cmd  []string
	opts Options
}

type engineResult struct {
	Text string `json:"text"`
}

func NewClient(opts Options) (*Client, error) {
	args, err := shellwords.NewParser().Parse(opts.Command)
	if err != nil {
		return nil, fmt.Errorf("parse whisper command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("whisper command is empty")
	}
	return &Client{cmd: args, opts: opts}, nil
}

// Ready reports whether the engine binary is resolvable. It is checked once
// at startup, before the hotkey listener begins accepting events.
func (c *Client) Ready() error {
	if _, err := exec.LookPath(c.cmd[0]); err != nil {
		return fmt.Errorf("transcription engine unavailable: %w", err)
	}
	return nil
}

// Transcribe encodes samples to a temporary WAV file, feeds it to the engine
// and returns the recognized text. An empty string means silence or no
// speech detected. The samples are never mutated.
func (c *Client) Transcribe(ctx context.Context, samples []int16, sampleRate int) (string, error) {
	file, err := os.CreateTemp("", "mutter_stt_*.wav")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())

	if err := writeWAV(file, samples, sampleRate); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close temp wav: %w", err)
	}

	args := c.buildArgs(file.Name())
	command := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("whisper command failed: %w: %s", err, stderr.String())
	}
	return parseOutput(stdout.Bytes()), nil
}

func (c *Client) buildArgs(wavPath string) []string {
	args := append([]string{}, c.cmd...)
	args = append(args, "--audio", wavPath)
	if c.opts.Model != "" {
		args = append(args, "--model", c.opts.Model)
	}
	if c.opts.Language != "" {
		args = append(args, "--language", c.opts.Language)
	}
	if c.opts.VADFilter {
		args = append(args, "--vad")
	}
	if c.opts.ComputeType != "" {
		args = append(args, "--compute-type", c.opts.ComputeType)
	}
	return args
}

func writeWAV(file *os.File, samples []int16, sampleRate int) error {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, v := range samples {
		buf.Data[i] = int(v)
	}

	enc := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}

// parseOutput accepts either a JSON object with a "text" field or plain text
// on stdout.
func parseOutput(out []byte) string {
	var resp engineResult
	if err := json.Unmarshal(out, &resp); err == nil {
		return strings.TrimSpace(resp.Text)
	}
	return strings.TrimSpace(string(out))
}
