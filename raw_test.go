package iqwave

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestEncodeRawSingleFloat32Sample(t *testing.T) {
	buf := NewSampleBuffer()
	buf.AppendSegment([]complex128{1 + 0i})

	var out bytes.Buffer
	if err := EncodeRaw(&out, buf, SampleFloat32); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if out.Len() != 8 {
		t.Fatalf("expected 8 bytes, got %d", out.Len())
	}

	data := out.Bytes()
	re := math.Float32frombits(binary.LittleEndian.Uint32(data))
	im := math.Float32frombits(binary.LittleEndian.Uint32(data[4:]))

	if re != 1 || im != 0 {
		t.Fatalf("element mismatch: re=%v im=%v", re, im)
	}
}

func TestDecodeRawComplexFloat32(t *testing.T) {
	data := float32Samples(0.2, 0.4, 0.6, 0.8)

	buf, err := DecodeRaw(bytes.NewReader(data), SampleFloat32, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if buf.NumSegments() != 1 || buf.SegmentLen(0) != 2 {
		t.Fatalf("expected 1 segment of 2 samples, got %d/%d",
			buf.NumSegments(), buf.SegmentLen(0))
	}

	want := complex(float64(float32(0.6)), float64(float32(0.8)))
	if buf.Segment(0)[1] != want {
		t.Fatalf("sample mismatch: got %v want %v", buf.Segment(0)[1], want)
	}
}

func TestDecodeRawRealMode(t *testing.T) {
	data := float32Samples(0.1, 0.2, 0.3)

	buf, err := DecodeRaw(bytes.NewReader(data), SampleFloat32, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if buf.SegmentLen(0) != 3 {
		t.Fatalf("expected 3 real samples, got %d", buf.SegmentLen(0))
	}

	for i, s := range buf.Segment(0) {
		if imag(s) != 0 {
			t.Fatalf("real sample %d has imaginary part %v", i, imag(s))
		}
	}
}

func TestDecodeRawRejectsBadLengths(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		elem      SampleType
		isComplex bool
	}{
		{"not a multiple of element size", make([]byte, 7), SampleFloat32, true},
		{"odd element count in complex mode", make([]byte, 12), SampleFloat32, true},
		{"odd int16 count in complex mode", make([]byte, 6), SampleInt16, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRaw(bytes.NewReader(tc.data), tc.elem, tc.isComplex)
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("expected ErrFormat, got %v", err)
			}
		})
	}
}

func TestRawFixedPointRoundTrip(t *testing.T) {
	buf := NewSampleBuffer()
	buf.AppendSegment([]complex128{
		complex(16384.0/32767, -16384.0/32767),
		complex(1, -1),
	})

	var out bytes.Buffer
	if err := EncodeRaw(&out, buf, SampleInt16); err != nil {
		t.Fatalf("encode: %v", err)
	}

	buf2, err := DecodeRaw(bytes.NewReader(out.Bytes()), SampleInt16, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	for i, want := range buf.Segment(0) {
		if got := buf2.Segment(0)[i]; got != want {
			t.Fatalf("sample %d mismatch: got %v want %v", i, got, want)
		}
	}
}

func TestEncodeRawClampsOutOfRange(t *testing.T) {
	buf := NewSampleBuffer()
	buf.AppendSegment([]complex128{complex(2, -2)})

	var out bytes.Buffer
	if err := EncodeRaw(&out, buf, SampleInt8); err != nil {
		t.Fatalf("encode: %v", err)
	}

	data := out.Bytes()
	if int8(data[0]) != math.MaxInt8 || int8(data[1]) != math.MinInt8 {
		t.Fatalf("expected clamped full-scale elements, got %d and %d",
			int8(data[0]), int8(data[1]))
	}
}

func TestEncodeRawFlattensSegments(t *testing.T) {
	buf := NewSampleBuffer()
	buf.AppendSegment([]complex128{0.25 + 0i})
	buf.AppendSegment([]complex128{0 + 0.5i, -0.5 + 0i})

	var out bytes.Buffer
	if err := EncodeRaw(&out, buf, SampleFloat64); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if out.Len() != 2*8*3 {
		t.Fatalf("expected 48 bytes for 3 flattened samples, got %d", out.Len())
	}
}

func TestParseSampleType(t *testing.T) {
	for _, st := range []SampleType{SampleInt8, SampleInt16, SampleInt32, SampleFloat32, SampleFloat64} {
		parsed, err := ParseSampleType(st.String())
		if err != nil || parsed != st {
			t.Fatalf("parse %q: %v, %v", st.String(), parsed, err)
		}
	}

	if _, err := ParseSampleType("complex64"); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for unknown name, got %v", err)
	}
}
