package dsp

import (
	"math"
	"testing"
)

func TestNormalizeHitsReference(t *testing.T) {
	data := []complex128{0.1 + 0i, 0 + 0.5i, -0.25 + 0.25i}

	out := Normalize(data, 0.8)

	var peak float64
	for _, s := range out {
		if m := math.Hypot(real(s), imag(s)); m > peak {
			peak = m
		}
	}

	if math.Abs(peak-0.8) > 1e-12 {
		t.Fatalf("normalized peak %v, want 0.8", peak)
	}

	// The input is untouched.
	if data[1] != 0+0.5i {
		t.Fatal("input mutated")
	}
}

func TestNormalizeDefaultReference(t *testing.T) {
	data := []complex128{0 + 2i}

	out := Normalize(data, 0)

	if math.Abs(imag(out[0])-DefaultReference) > 1e-12 {
		t.Fatalf("default reference not applied: %v", out[0])
	}
}

func TestNormalizeAllZero(t *testing.T) {
	data := []complex128{0, 0}

	out := Normalize(data, 0)

	if out[0] != 0 || out[1] != 0 {
		t.Fatalf("all-zero input changed: %v", out)
	}
}

func TestToDB(t *testing.T) {
	if ToDB(1) != 0 {
		t.Fatalf("0 dB expected for unity, got %v", ToDB(1))
	}

	if math.Abs(ToDB(10)-20) > 1e-12 {
		t.Fatalf("20 dB expected for 10x, got %v", ToDB(10))
	}
}

func TestPeakRMSAndPAR(t *testing.T) {
	// Constant magnitude 0.5 means peak equals RMS and PAR is zero.
	data := []complex128{0.5 + 0i, 0 + 0.5i, -0.5 + 0i, 0 - 0.5i}

	want := 20 * math.Log10(0.5)

	if got := Peak(data); math.Abs(got-want) > 1e-12 {
		t.Fatalf("peak %v, want %v", got, want)
	}

	if got := RMS(data); math.Abs(got-want) > 1e-12 {
		t.Fatalf("rms %v, want %v", got, want)
	}

	if got := PAR(data); math.Abs(got) > 1e-12 {
		t.Fatalf("par %v, want 0", got)
	}
}

func TestPARPositiveForVaryingEnvelope(t *testing.T) {
	data := []complex128{1 + 0i, 0.1 + 0i, 0.1 + 0i, 0.1 + 0i}

	if PAR(data) <= 0 {
		t.Fatalf("par should be positive, got %v", PAR(data))
	}
}

func TestRMSEmptyInput(t *testing.T) {
	if !math.IsInf(RMS(nil), -1) {
		t.Fatalf("rms of empty input should be -Inf, got %v", RMS(nil))
	}
}
