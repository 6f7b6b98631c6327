package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/iqwave"
)

func TestRunGeneratesWvFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "tone.wv")

	err := run([]string{"-output", outPath, "-clock", "1e6", "-frequency", "1e5", "-length", "1e-5"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	buf, meta, err := iqwave.Load(outPath)
	if err != nil {
		t.Fatalf("load generated file: %v", err)
	}

	// 1e-5 sec * 1e6 Hz = 10 samples
	if buf.SegmentLen(0) != 10 {
		t.Fatalf("expected 10 samples, got %d", buf.SegmentLen(0))
	}

	typ, err := meta[0].Type()
	if err != nil || typ != "SMU-WV" {
		t.Fatalf("type mismatch: %q, %v", typ, err)
	}

	clock, err := meta[0].Clock()
	if err != nil || clock != 1e6 {
		t.Fatalf("clock mismatch: %v, %v", clock, err)
	}

	// A normalized tone keeps a constant envelope near full scale.
	for i, s := range buf.Segment(0) {
		mag := math.Hypot(real(s), imag(s))
		if math.Abs(mag-1) > 0.01 {
			t.Fatalf("sample %d magnitude %v, want close to 1", i, mag)
		}
	}
}

func TestRunFlagParseError(t *testing.T) {
	err := run([]string{"-length", "not-a-number"})
	if err == nil {
		t.Fatal("expected failure for invalid flag value")
	}
}

func TestRunInvalidOutputPath(t *testing.T) {
	err := run([]string{"-output", "/nonexistent/dir/tone.wv", "-length", "1e-5"})
	if err == nil {
		t.Fatal("expected error for invalid output path")
	}
}
