// Package recordings persists captured audio as WAV artifacts for
// debugging and audit.
package recordings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Store writes one timestamped mono 16-bit PCM file per accepted session.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes samples to a timestamped WAV file and returns its path.
// Callers treat failures as non-fatal; a missing artifact never blocks the
// dictation cycle.
func (s *Store) Save(samples []int16, sampleRate int) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create recordings dir: %w", err)
	}

	name := fmt.Sprintf("recording_%s.wav", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create recording: %w", err)
	}
	defer f.Close()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, v := range samples {
		buf.Data[i] = int(v)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return "", fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("close wav encoder: %w", err)
	}
	return path, nil
}
