package recordings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"
)

func TestSaveWritesDecodableWav(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "recordings"))

	samples := make([]int16, 1600)
	for i := range samples {
		samples[i] = int16(i % 512)
	}

	path, err := store.Save(samples, 16000)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "recording_") || !strings.HasSuffix(path, ".wav") {
		t.Fatalf("unexpected artifact name: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if dec.SampleRate != 16000 {
		t.Fatalf("sample rate = %d", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Fatalf("channels = %d", dec.NumChans)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i := range samples {
		if int16(buf.Data[i]) != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], samples[i])
		}
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "recordings")
	store := NewStore(dir)

	if _, err := store.Save([]int16{1, 2, 3}, 16000); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("recordings dir not created: %v", err)
	}
}
