package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/iqwave"
)

func makeWvFixture(t *testing.T) string {
	t.Helper()

	buf := iqwave.NewSampleBuffer()
	buf.AppendSegment([]complex128{0.25 + 0.5i, -0.25 - 0.5i})

	m := iqwave.NewMetadata()
	m.SetType("SMU-WV")
	m.SetComment("fixture waveform")
	m.SetClock(1e6)

	path := filepath.Join(t.TempDir(), "fixture.wv")
	if err := iqwave.Save(path, buf, []*iqwave.Metadata{m}); err != nil {
		t.Fatalf("save fixture: %v", err)
	}

	return path
}

func TestRunRequiresPath(t *testing.T) {
	var out bytes.Buffer

	err := run(nil, &out)
	if err == nil {
		t.Fatal("expected error without input path")
	}

	if !errors.Is(err, errMissingPath) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunPrintsMetadata(t *testing.T) {
	var outBuf bytes.Buffer

	err := run([]string{makeWvFixture(t)}, &outBuf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	out := outBuf.String()
	checks := []string{
		"Segment 0:",
		"type: SMU-WV",
		"comment: fixture waveform",
		"clock: 1e+06 Hz",
		"level_offset: rms",
	}

	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Fatalf("expected output to contain %q\nfull output:\n%s", c, out)
		}
	}
}

func TestRunInvalidPath(t *testing.T) {
	var outBuf bytes.Buffer

	err := run([]string{"/nonexistent/path.wv"}, &outBuf)
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestRunUnsupportedExtension(t *testing.T) {
	var outBuf bytes.Buffer

	err := run([]string{"capture.dat"}, &outBuf)
	if !errors.Is(err, iqwave.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
