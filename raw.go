package iqwave

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// SampleType identifies the on-disk element type of a sample stream.
// Integer types are fixed point: the stored value divided by the type's
// full scale yields the normalized amplitude.
type SampleType uint8

const (
	SampleInt8 SampleType = iota + 1
	SampleInt16
	SampleInt32
	SampleFloat32
	SampleFloat64
)

// Size returns the element width in bytes, or 0 for an invalid type.
func (t SampleType) Size() int {
	switch t {
	case SampleInt8:
		return 1
	case SampleInt16:
		return 2
	case SampleInt32, SampleFloat32:
		return 4
	case SampleFloat64:
		return 8
	default:
		return 0
	}
}

// String returns the datatype name used in iq.tar metadata and member
// names.
func (t SampleType) String() string {
	switch t {
	case SampleInt8:
		return "int8"
	case SampleInt16:
		return "int16"
	case SampleInt32:
		return "int32"
	case SampleFloat32:
		return "float32"
	case SampleFloat64:
		return "float64"
	default:
		return fmt.Sprintf("SampleType(%d)", uint8(t))
	}
}

// ParseSampleType resolves a datatype name to a SampleType.
func ParseSampleType(name string) (SampleType, error) {
	switch name {
	case "int8":
		return SampleInt8, nil
	case "int16":
		return SampleInt16, nil
	case "int32":
		return SampleInt32, nil
	case "float32":
		return SampleFloat32, nil
	case "float64":
		return SampleFloat64, nil
	default:
		return 0, fmt.Errorf("%w: unknown sample datatype %q", ErrFormat, name)
	}
}

func (t SampleType) fullScale() float64 {
	switch t {
	case SampleInt8:
		return math.MaxInt8
	case SampleInt16:
		return math.MaxInt16
	case SampleInt32:
		return math.MaxInt32
	default:
		return 1
	}
}

// decodeElement reads one little-endian element and normalizes fixed-point
// values into the canonical floating-point range.
func (t SampleType) decodeElement(b []byte) float64 {
	switch t {
	case SampleInt8:
		return float64(int8(b[0])) / math.MaxInt8
	case SampleInt16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / math.MaxInt16
	case SampleInt32:
		return float64(int32(binary.LittleEndian.Uint32(b))) / math.MaxInt32
	case SampleFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case SampleFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}

func clampInt(v, min, max float64) float64 {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}

// encodeElement writes one little-endian element, quantizing fixed-point
// types with round-to-nearest and clamping at the type's limits.
func (t SampleType) encodeElement(b []byte, v float64) {
	switch t {
	case SampleInt8:
		b[0] = byte(int8(clampInt(math.Round(v*math.MaxInt8), math.MinInt8, math.MaxInt8)))
	case SampleInt16:
		q := int16(clampInt(math.Round(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
		binary.LittleEndian.PutUint16(b, uint16(q))
	case SampleInt32:
		q := int32(clampInt(math.Round(v*math.MaxInt32), math.MinInt32, math.MaxInt32))
		binary.LittleEndian.PutUint32(b, uint32(q))
	case SampleFloat32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case SampleFloat64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	}
}

// DecodeRaw decodes a headerless interleaved sample stream into a
// single-segment buffer. The element type and real-vs-complex layout are
// not self-describing and must be supplied by the caller. No metadata can
// be recovered from this format.
func DecodeRaw(r io.Reader, elem SampleType, isComplex bool) (*SampleBuffer, error) {
	size := elem.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: invalid sample element type %d", ErrFormat, uint8(elem))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw stream: %w", err)
	}

	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: stream length %d is not a multiple of element size %d",
			ErrFormat, len(data), size)
	}

	count := len(data) / size
	if isComplex && count%2 != 0 {
		return nil, fmt.Errorf("%w: complex stream holds an odd element count %d", ErrFormat, count)
	}

	var samples []complex128

	if isComplex {
		samples = make([]complex128, count/2)
		for i := range samples {
			re := elem.decodeElement(data[2*i*size:])
			im := elem.decodeElement(data[(2*i+1)*size:])
			samples[i] = complex(re, im)
		}
	} else {
		samples = make([]complex128, count)
		for i := range samples {
			samples[i] = complex(elem.decodeElement(data[i*size:]), 0)
		}
	}

	buf := NewSampleBuffer()
	buf.AppendSegment(samples)

	return buf, nil
}

// EncodeRaw writes all segments of buf as one interleaved I/Q stream in
// the given element type. Segment boundaries are not representable in this
// format and are lost.
func EncodeRaw(w io.Writer, buf *SampleBuffer, elem SampleType) error {
	size := elem.Size()
	if size == 0 {
		return fmt.Errorf("%w: invalid sample element type %d", ErrFormat, uint8(elem))
	}

	out := make([]byte, 2*size*buf.TotalLen())

	var n int

	for i := 0; i < buf.NumSegments(); i++ {
		for _, s := range buf.Segment(i) {
			elem.encodeElement(out[n:], real(s))
			n += size
			elem.encodeElement(out[n:], imag(s))
			n += size
		}
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write raw stream: %w", err)
	}

	return nil
}
