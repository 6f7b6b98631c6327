package iqwave

import (
	"github.com/go-audio/audio"
)

// SampleBuffer is an ordered collection of waveform segments, each an
// ordered sequence of complex IQ samples. It is the common currency all
// codecs produce and consume.
//
// A buffer and its metadata records are index-aligned: segment i's samples
// and metadata record i describe the same logical recording.
type SampleBuffer struct {
	segments [][]complex128
}

// NewSampleBuffer returns an empty buffer with zero segments.
func NewSampleBuffer() *SampleBuffer {
	return &SampleBuffer{}
}

// NumSegments returns the number of segments held by the buffer.
func (b *SampleBuffer) NumSegments() int {
	if b == nil {
		return 0
	}

	return len(b.segments)
}

// Segment returns the samples of segment i. The returned slice is the
// backing store, not a copy. Out-of-range indices return nil.
func (b *SampleBuffer) Segment(i int) []complex128 {
	if b == nil || i < 0 || i >= len(b.segments) {
		return nil
	}

	return b.segments[i]
}

// SetSegment assigns the samples of segment i. Assigning an index one past
// the current segment count grows the buffer by one segment.
func (b *SampleBuffer) SetSegment(i int, samples []complex128) {
	if b == nil || i < 0 || i > len(b.segments) {
		return
	}

	if i == len(b.segments) {
		b.segments = append(b.segments, samples)
		return
	}

	b.segments[i] = samples
}

// AppendSegment adds a new segment at the end of the buffer.
func (b *SampleBuffer) AppendSegment(samples []complex128) {
	if b == nil {
		return
	}

	b.segments = append(b.segments, samples)
}

// SegmentLen returns the sample count of segment i.
func (b *SampleBuffer) SegmentLen(i int) int {
	return len(b.Segment(i))
}

// TotalLen returns the sample count summed over all segments.
func (b *SampleBuffer) TotalLen() int {
	if b == nil {
		return 0
	}

	var n int
	for _, seg := range b.segments {
		n += len(seg)
	}

	return n
}

// Clone returns a deep copy of the buffer.
func (b *SampleBuffer) Clone() *SampleBuffer {
	if b == nil {
		return nil
	}

	out := &SampleBuffer{segments: make([][]complex128, len(b.segments))}
	for i, seg := range b.segments {
		out.segments[i] = append([]complex128(nil), seg...)
	}

	return out
}

// FloatBuffer converts segment i into a two-channel interleaved
// audio.FloatBuffer (channel 0 = I, channel 1 = Q) for interop with the
// go-audio ecosystem. sampleRate is carried into the buffer format.
func (b *SampleBuffer) FloatBuffer(i int, sampleRate int) *audio.FloatBuffer {
	seg := b.Segment(i)
	if seg == nil {
		return nil
	}

	data := make([]float64, 2*len(seg))
	for n, s := range seg {
		data[2*n] = real(s)
		data[2*n+1] = imag(s)
	}

	return &audio.FloatBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data: data,
	}
}

// SegmentFromFloatBuffer builds a complex segment from a two-channel
// interleaved audio.FloatBuffer. Single-channel buffers yield real-only
// samples.
func SegmentFromFloatBuffer(buf *audio.FloatBuffer) []complex128 {
	if buf == nil || buf.Format == nil {
		return nil
	}

	if buf.Format.NumChannels == 1 {
		out := make([]complex128, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = complex(v, 0)
		}

		return out
	}

	frames := len(buf.Data) / buf.Format.NumChannels
	out := make([]complex128, frames)

	for i := 0; i < frames; i++ {
		re := buf.Data[i*buf.Format.NumChannels]
		im := buf.Data[i*buf.Format.NumChannels+1]
		out[i] = complex(re, im)
	}

	return out
}
