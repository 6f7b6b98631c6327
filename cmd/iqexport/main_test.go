package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/iqwave"
	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"
)

func makeWvFixture(t *testing.T) string {
	t.Helper()

	buf := iqwave.NewSampleBuffer()
	buf.AppendSegment([]complex128{0.25 + 0.5i, -0.25 - 0.5i, 0.5 - 0.25i})

	m := iqwave.NewMetadata()
	m.SetClock(8000)
	m.SetSampleFormat(iqwave.SampleFloat64)

	path := filepath.Join(t.TempDir(), "fixture.wv")
	if err := iqwave.Save(path, buf, []*iqwave.Metadata{m}); err != nil {
		t.Fatalf("save fixture: %v", err)
	}

	return path
}

func TestRunExportsWav(t *testing.T) {
	path := makeWvFixture(t)

	err := run([]string{"-path", path, "-format", "wav"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	outPath := path[:len(path)-len(".wv")] + ".wav"

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("exported file is not a valid wav")
	}

	if dec.SampleRate != 8000 {
		t.Fatalf("sample rate=%d, want 8000", dec.SampleRate)
	}

	if dec.NumChans != 2 {
		t.Fatalf("channels=%d, want 2", dec.NumChans)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode exported wav: %v", err)
	}

	// 3 IQ samples interleave into 6 PCM frames.
	if len(pcm.Data) != 6 {
		t.Fatalf("expected 6 interleaved values, got %d", len(pcm.Data))
	}
}

func TestRunExportsAiff(t *testing.T) {
	path := makeWvFixture(t)

	err := run([]string{"-path", path, "-format", "aiff"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	outPath := path[:len(path)-len(".wv")] + ".aif"

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	defer f.Close()

	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("exported file is not a valid aiff")
	}
}

func TestRunRequiresPath(t *testing.T) {
	err := run([]string{"-format", "wav"})
	if err == nil {
		t.Fatal("expected error without input path")
	}
}

func TestRunUnknownFormat(t *testing.T) {
	err := run([]string{"-path", "capture.wv", "-format", "flac"})
	if err == nil {
		t.Fatal("expected error for unknown output format")
	}
}
