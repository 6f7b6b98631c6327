package iqwave

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// wvDecoder tracks the state of one chunk stream walk: the segment group
// being assembled and the aligned buffer/metadata pair built so far.
type wvDecoder struct {
	r      io.Reader
	parser *riff.Parser

	buf  *SampleBuffer
	meta []*Metadata

	cur       *Metadata
	encrypted int
}

// DecodeWv decodes a tagged-chunk waveform stream. The stream is a
// sequence of [tag][length][payload] chunks walked to end of stream; a
// sample data chunk closes the current segment group. Unknown tags are
// preserved verbatim in the segment's metadata so vendor extensions
// round-trip unchanged.
//
// If any segment carries the encryption flag its samples are refused: the
// returned buffer holds an empty segment at that index, metadata is intact
// and the error wraps ErrEncryptedContent.
func DecodeWv(r io.Reader) (*SampleBuffer, []*Metadata, error) {
	d := &wvDecoder{
		r:         r,
		parser:    riff.New(r),
		buf:       NewSampleBuffer(),
		encrypted: -1,
	}

	for {
		id, size, err := d.parser.IDnSize()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, nil, fmt.Errorf("%w: truncated chunk header: %v", ErrFormat, err)
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(d.r, payload); err != nil {
			return nil, nil, fmt.Errorf("%w: chunk %q declares %d payload bytes: %v",
				ErrFormat, string(id[:]), size, err)
		}

		if err := d.decodeChunk(id, payload); err != nil {
			return nil, nil, err
		}
	}

	if d.buf.NumSegments() == 0 {
		return nil, nil, ErrSampleDataNotFound
	}

	if d.encrypted >= 0 {
		return d.buf, d.meta, fmt.Errorf("segment %d: %w", d.encrypted, ErrEncryptedContent)
	}

	return d.buf, d.meta, nil
}

// DecodeWvMeta decodes only the metadata records of a chunk stream,
// skipping sample conversion. Encrypted segments do not error here since
// no sample decode is attempted.
func DecodeWvMeta(r io.Reader) ([]*Metadata, error) {
	_, meta, err := DecodeWv(r)
	if err != nil && !errors.Is(err, ErrEncryptedContent) {
		return nil, err
	}

	return meta, nil
}

func (d *wvDecoder) current() *Metadata {
	if d.cur == nil {
		d.cur = NewMetadata()
	}

	return d.cur
}

func (d *wvDecoder) decodeChunk(id [4]byte, payload []byte) error {
	ch := &riff.Chunk{ID: id, Size: len(payload), R: bytes.NewReader(payload)}
	m := d.current()

	switch id {
	case CIDType:
		m.SetType(string(payload))
	case CIDCopyright:
		m.SetCopyright(string(payload))
	case CIDComment:
		m.SetComment(string(payload))
	case CIDDate:
		ts, err := decodeDatePayload(ch)
		if err != nil {
			return err
		}

		m.SetTimestamp(ts)
	case CIDClock:
		v, err := readFloat64Payload(ch)
		if err != nil {
			return err
		}

		m.SetClock(v)
	case CIDCenterFreq:
		v, err := readFloat64Payload(ch)
		if err != nil {
			return err
		}

		m.SetCenterFrequency(v)
	case CIDScaling:
		v, err := readFloat64Payload(ch)
		if err != nil {
			return err
		}

		m.SetScalingFactor(v)
	case CIDLevelOffset:
		if ch.Size != 16 {
			return chunkSizeErr(id, 16, ch.Size)
		}

		var lo LevelOffset
		if err := ch.ReadLE(&lo); err != nil {
			return fmt.Errorf("failed to read level offset payload: %w", err)
		}

		m.SetLevelOffset(lo)
	case CIDEncryption:
		if ch.Size != 1 {
			return chunkSizeErr(id, 1, ch.Size)
		}

		m.SetEncrypted(payload[0] != 0)
	case CIDControlLength:
		if ch.Size != 4 {
			return chunkSizeErr(id, 4, ch.Size)
		}

		var n uint32
		if err := ch.ReadLE(&n); err != nil {
			return fmt.Errorf("failed to read control length payload: %w", err)
		}

		m.SetControlLength(int(n))
	case CIDControlList:
		words, err := decodeControlListPayload(ch)
		if err != nil {
			return err
		}

		m.SetControlList(words)
	case CIDMarker:
		name, entries, err := decodeMarkerPayload(ch)
		if err != nil {
			return err
		}

		markers, err := m.Markers()
		if err != nil {
			return err
		}

		if markers == nil {
			markers = MarkerList{}
		}

		markers[name] = entries
		m.SetMarkers(markers)
	case CIDSampleFormat:
		if ch.Size != 1 {
			return chunkSizeErr(id, 1, ch.Size)
		}

		st := SampleType(payload[0])
		if st.Size() == 0 {
			return fmt.Errorf("%w: unknown sample element type %d", ErrFormat, payload[0])
		}

		m.SetSampleFormat(st)
	case CIDData:
		return d.closeSegment(payload)
	default:
		m.Set(string(id[:]), RawTag{ID: id, Data: payload})
	}

	return nil
}

// closeSegment converts a sample data payload and flushes the current
// metadata/sample pair into the aligned output slots.
func (d *wvDecoder) closeSegment(payload []byte) error {
	m := d.current()
	d.cur = nil

	index := d.buf.NumSegments()

	enc, err := m.Encrypted()
	if err != nil {
		return err
	}

	if enc {
		// Refuse the sample data, surface metadata only.
		d.buf.AppendSegment(nil)
		d.meta = append(d.meta, m)

		if d.encrypted < 0 {
			d.encrypted = index
		}

		return nil
	}

	elem, err := m.SampleFormat()
	if err != nil {
		return err
	}

	scale, err := m.ScalingFactor()
	if err != nil {
		return err
	}

	raw, err := DecodeRaw(bytes.NewReader(payload), elem, true)
	if err != nil {
		return fmt.Errorf("sample data chunk: %w", err)
	}

	samples := raw.Segment(0)
	if scale != 1 {
		for i := range samples {
			samples[i] *= complex(scale, 0)
		}
	}

	d.buf.AppendSegment(samples)
	d.meta = append(d.meta, m)

	return nil
}
