package iqwave

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/iqwave/dsp"
)

// EncodeWv writes buf and its aligned metadata records as a tagged-chunk
// stream. Tags are emitted in a stable order per segment group, metadata
// first, the sample data chunk last; preserved unknown tags keep their
// recorded order between the known tags and the sample data.
func EncodeWv(w io.Writer, buf *SampleBuffer, meta []*Metadata) error {
	if buf.NumSegments() != len(meta) {
		return errSegmentMismatch
	}

	if buf.NumSegments() == 0 {
		return fmt.Errorf("nothing to encode: %w", ErrSampleDataNotFound)
	}

	for i := 0; i < buf.NumSegments(); i++ {
		m := meta[i]
		if m == nil {
			m = NewMetadata()
		}

		if err := encodeWvSegment(w, buf.Segment(i), m); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}

	return nil
}

// writeChunk emits one [tag][length][payload] chunk. The length prefix is
// always recomputed from the actual payload.
func writeChunk(w io.Writer, id [4]byte, payload []byte) error {
	var hdr [8]byte

	copy(hdr[:4], id[:])
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("failed to write chunk header %q: %w", string(id[:]), err)
	}

	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("failed to write chunk payload %q: %w", string(id[:]), err)
		}
	}

	return nil
}

func encodeWvSegment(w io.Writer, samples []complex128, m *Metadata) error {
	if err := encodeWvStrings(w, m); err != nil {
		return err
	}

	if err := encodeWvLevelOffset(w, samples, m); err != nil {
		return err
	}

	if err := encodeWvScalars(w, m); err != nil {
		return err
	}

	if err := encodeWvControl(w, m); err != nil {
		return err
	}

	if err := encodeWvMarkers(w, m); err != nil {
		return err
	}

	if err := encodeWvRawTags(w, m); err != nil {
		return err
	}

	return encodeWvData(w, samples, m)
}

func encodeWvStrings(w io.Writer, m *Metadata) error {
	fields := []struct {
		id  [4]byte
		key string
		get func() (string, error)
	}{
		{CIDType, KeyType, m.Type},
		{CIDCopyright, KeyCopyright, m.Copyright},
		{CIDComment, KeyComment, m.Comment},
	}

	for _, f := range fields {
		if _, ok := m.Get(f.key); !ok {
			continue
		}

		s, err := f.get()
		if err != nil {
			return err
		}

		// A present-but-empty value round-trips as a zero-length chunk.
		if err := writeChunk(w, f.id, []byte(s)); err != nil {
			return err
		}
	}

	return nil
}

// encodeWvLevelOffset emits the level offset chunk, computing the offsets
// from the samples when the metadata does not carry them.
func encodeWvLevelOffset(w io.Writer, samples []complex128, m *Metadata) error {
	lo, err := m.LevelOffset()
	if err != nil {
		return err
	}

	if _, ok := m.Get(KeyLevelOffset); !ok {
		if len(samples) == 0 {
			return nil
		}

		lo = LevelOffset{RMS: -dsp.RMS(samples), Peak: -dsp.Peak(samples)}
	}

	payload := make([]byte, 16)
	binary.LittleEndian.PutUint64(payload, math.Float64bits(lo.RMS))
	binary.LittleEndian.PutUint64(payload[8:], math.Float64bits(lo.Peak))

	return writeChunk(w, CIDLevelOffset, payload)
}

func encodeWvScalars(w io.Writer, m *Metadata) error {
	if _, ok := m.Get(KeyTimestamp); ok {
		ts, err := m.Timestamp()
		if err != nil {
			return err
		}

		if err := writeChunk(w, CIDDate, encodeDatePayload(ts)); err != nil {
			return err
		}
	}

	scalars := []struct {
		id  [4]byte
		key string
		get func() (float64, error)
	}{
		{CIDClock, KeyClock, m.Clock},
		{CIDCenterFreq, KeyCenterFrequency, m.CenterFrequency},
		{CIDScaling, KeyScalingFactor, m.ScalingFactor},
	}

	for _, f := range scalars {
		if _, ok := m.Get(f.key); !ok {
			continue
		}

		v, err := f.get()
		if err != nil {
			return err
		}

		payload := make([]byte, 8)
		binary.LittleEndian.PutUint64(payload, math.Float64bits(v))

		if err := writeChunk(w, f.id, payload); err != nil {
			return err
		}
	}

	if _, ok := m.Get(KeyEncrypted); ok {
		enc, err := m.Encrypted()
		if err != nil {
			return err
		}

		var b byte
		if enc {
			b = 1
		}

		if err := writeChunk(w, CIDEncryption, []byte{b}); err != nil {
			return err
		}
	}

	return nil
}

func encodeWvControl(w io.Writer, m *Metadata) error {
	if _, ok := m.Get(KeyControlLength); ok {
		n, err := m.ControlLength()
		if err != nil {
			return err
		}

		payload := make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, uint32(n))

		if err := writeChunk(w, CIDControlLength, payload); err != nil {
			return err
		}
	}

	if _, ok := m.Get(KeyControlList); ok {
		words, err := m.ControlList()
		if err != nil {
			return err
		}

		if err := writeChunk(w, CIDControlList, encodeControlListPayload(words)); err != nil {
			return err
		}
	}

	return nil
}

func encodeWvMarkers(w io.Writer, m *Metadata) error {
	markers, err := m.Markers()
	if err != nil {
		return err
	}

	if len(markers) == 0 {
		return nil
	}

	names, err := sortedMarkerNames(markers)
	if err != nil {
		return err
	}

	for _, name := range names {
		index, err := parseMarkerListName(name)
		if err != nil {
			return err
		}

		if err := writeChunk(w, CIDMarker, encodeMarkerPayload(index, markers[name])); err != nil {
			return err
		}
	}

	return nil
}

// encodeWvRawTags re-emits preserved unknown chunks in their recorded
// metadata order.
func encodeWvRawTags(w io.Writer, m *Metadata) error {
	for _, key := range m.Keys() {
		v, _ := m.Get(key)

		raw, ok := v.(RawTag)
		if !ok {
			continue
		}

		if err := writeChunk(w, raw.ID, raw.Data); err != nil {
			return err
		}
	}

	return nil
}

func encodeWvData(w io.Writer, samples []complex128, m *Metadata) error {
	elem, err := m.SampleFormat()
	if err != nil {
		return err
	}

	scale, err := m.ScalingFactor()
	if err != nil {
		return err
	}

	if scale == 0 {
		return fmt.Errorf("%w: scaling factor must not be zero", ErrMetadataType)
	}

	if err := writeChunk(w, CIDSampleFormat, []byte{byte(elem)}); err != nil {
		return err
	}

	enc, _ := m.Encrypted()
	if enc {
		// Encrypted payloads cannot be produced, only detected; an
		// encrypted segment re-encodes with an empty data chunk.
		return writeChunk(w, CIDData, nil)
	}

	scaled := samples
	if scale != 1 {
		scaled = make([]complex128, len(samples))
		for i, s := range samples {
			scaled[i] = s / complex(scale, 0)
		}
	}

	seg := NewSampleBuffer()
	seg.AppendSegment(scaled)

	var payload bytes.Buffer
	if err := EncodeRaw(&payload, seg, elem); err != nil {
		return err
	}

	return writeChunk(w, CIDData, payload.Bytes())
}

