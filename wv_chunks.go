package iqwave

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-audio/riff"
)

// Chunk tags of the wv format. Tags are two-letter mnemonics padded to the
// 4-byte ASCII tag field.
var (
	// CIDType is the waveform type tag chunk.
	CIDType = [4]byte{'T', 'Y', ' ', ' '}
	// CIDCopyright is the copyright string chunk.
	CIDCopyright = [4]byte{'C', 'P', ' ', ' '}
	// CIDComment is the free-text comment chunk.
	CIDComment = [4]byte{'C', 'M', ' ', ' '}
	// CIDDate is the creation timestamp chunk.
	CIDDate = [4]byte{'D', 'T', ' ', ' '}
	// CIDClock is the sample clock frequency chunk.
	CIDClock = [4]byte{'C', 'K', ' ', ' '}
	// CIDCenterFreq is the center frequency chunk.
	CIDCenterFreq = [4]byte{'C', 'F', ' ', ' '}
	// CIDScaling is the sample scaling factor chunk.
	CIDScaling = [4]byte{'S', 'C', ' ', ' '}
	// CIDLevelOffset is the RMS/peak level offset chunk.
	CIDLevelOffset = [4]byte{'L', 'O', ' ', ' '}
	// CIDEncryption is the encryption flag chunk.
	CIDEncryption = [4]byte{'E', 'N', ' ', ' '}
	// CIDControlLength is the control length chunk.
	CIDControlLength = [4]byte{'C', 'N', ' ', ' '}
	// CIDControlList is the packed control list chunk.
	CIDControlList = [4]byte{'C', 'T', ' ', ' '}
	// CIDMarker is a marker list chunk. A segment group may carry one per
	// marker list.
	CIDMarker = [4]byte{'M', 'K', ' ', ' '}
	// CIDSampleFormat declares the element type of the next sample data
	// chunk.
	CIDSampleFormat = [4]byte{'S', 'F', ' ', ' '}
	// CIDData is the sample data chunk. It closes a segment group.
	CIDData = [4]byte{'D', 'A', ' ', ' '}
)

// RawTag preserves a chunk this codec does not interpret. Files carrying
// vendor-specific tags round-trip them byte for byte.
type RawTag struct {
	ID   [4]byte
	Data []byte
}

// Clone returns a copy of the tag with its own payload backing.
func (t RawTag) Clone() RawTag {
	out := t
	out.Data = append([]byte(nil), t.Data...)

	return out
}

func chunkSizeErr(id [4]byte, want, got int) error {
	return fmt.Errorf("%w: chunk %q declares %d payload bytes, layout needs %d",
		ErrFormat, string(id[:]), got, want)
}

func readFloat64Payload(ch *riff.Chunk) (float64, error) {
	if ch.Size != 8 {
		return 0, chunkSizeErr(ch.ID, 8, ch.Size)
	}

	var v float64
	if err := ch.ReadLE(&v); err != nil {
		return 0, fmt.Errorf("failed to read %q payload: %w", string(ch.ID[:]), err)
	}

	return v, nil
}

// dateLayout is the fixed-width timestamp payload: uint16 year followed by
// single-byte month, day, hour, minute and second.
type dateLayout struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
}

const dateLayoutSize = 7

func decodeDatePayload(ch *riff.Chunk) (time.Time, error) {
	if ch.Size != dateLayoutSize {
		return time.Time{}, chunkSizeErr(ch.ID, dateLayoutSize, ch.Size)
	}

	var d dateLayout
	if err := ch.ReadLE(&d); err != nil {
		return time.Time{}, fmt.Errorf("failed to read date payload: %w", err)
	}

	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), 0, time.UTC), nil
}

func encodeDatePayload(ts time.Time) []byte {
	ts = ts.UTC()
	out := make([]byte, dateLayoutSize)
	out[0] = byte(ts.Year())
	out[1] = byte(ts.Year() >> 8)
	out[2] = byte(ts.Month())
	out[3] = byte(ts.Day())
	out[4] = byte(ts.Hour())
	out[5] = byte(ts.Minute())
	out[6] = byte(ts.Second())

	return out
}

// markerListName formats the metadata name of marker list n.
func markerListName(n int) string {
	return fmt.Sprintf("marker_list_%d", n)
}

func parseMarkerListName(name string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(name, "marker_list_%d", &n); err != nil {
		return 0, fmt.Errorf("%w: marker list name %q is not marker_list_<n>", ErrMetadataType, name)
	}

	return n, nil
}

// decodeMarkerPayload reads one marker list: a uint32 list index followed
// by repeated fixed-size [offset, value] records.
func decodeMarkerPayload(ch *riff.Chunk) (string, []MarkerEntry, error) {
	if ch.Size < 4 || (ch.Size-4)%8 != 0 {
		return "", nil, chunkSizeErr(ch.ID, 4, ch.Size)
	}

	var index uint32
	if err := ch.ReadLE(&index); err != nil {
		return "", nil, fmt.Errorf("failed to read marker list index: %w", err)
	}

	entries := make([]MarkerEntry, (ch.Size-4)/8)
	for i := range entries {
		var rec struct{ Offset, Value uint32 }
		if err := ch.ReadLE(&rec); err != nil {
			return "", nil, fmt.Errorf("failed to read marker entry: %w", err)
		}

		entries[i] = MarkerEntry{Offset: int(rec.Offset), Value: int(rec.Value)}
	}

	return markerListName(int(index)), entries, nil
}

func encodeMarkerPayload(index int, entries []MarkerEntry) []byte {
	out := make([]byte, 4+8*len(entries))
	putUint32(out, uint32(index))

	for i, e := range entries {
		putUint32(out[4+8*i:], uint32(e.Offset))
		putUint32(out[8+8*i:], uint32(e.Value))
	}

	return out
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func sortedMarkerNames(markers MarkerList) ([]string, error) {
	names := make([]string, 0, len(markers))
	for name := range markers {
		if _, err := parseMarkerListName(name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		ni, _ := parseMarkerListName(names[i])
		nj, _ := parseMarkerListName(names[j])

		return ni < nj
	})

	return names, nil
}

// packControlWords packs per-sample 4-bit control words two to a byte,
// MSB first, padding the trailing nibble with zeros for odd counts.
func packControlWords(words []ControlWord) []byte {
	out := make([]byte, (len(words)+1)/2)

	for i, w := range words {
		var nibble byte
		for bit := 0; bit < 4; bit++ {
			if w[bit] {
				nibble |= 1 << (3 - bit)
			}
		}

		if i%2 == 0 {
			out[i/2] |= nibble << 4
		} else {
			out[i/2] |= nibble
		}
	}

	return out
}

func unpackControlWords(packed []byte, count int) []ControlWord {
	out := make([]ControlWord, count)

	for i := range out {
		nibble := packed[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}

		for bit := 0; bit < 4; bit++ {
			out[i][bit] = nibble&(1<<(3-bit)) != 0
		}
	}

	return out
}

// decodeControlListPayload reads a uint32 sample count followed by the
// packed control words.
func decodeControlListPayload(ch *riff.Chunk) ([]ControlWord, error) {
	if ch.Size < 4 {
		return nil, chunkSizeErr(ch.ID, 4, ch.Size)
	}

	var count uint32
	if err := ch.ReadLE(&count); err != nil {
		return nil, fmt.Errorf("failed to read control list count: %w", err)
	}

	packed := make([]byte, ch.Size-4)
	if err := ch.ReadLE(&packed); err != nil {
		return nil, fmt.Errorf("failed to read control list bits: %w", err)
	}

	if int(count) > 2*len(packed) {
		return nil, fmt.Errorf("%w: control list declares %d words but carries %d packed bytes",
			ErrFormat, count, len(packed))
	}

	return unpackControlWords(packed, int(count)), nil
}

func encodeControlListPayload(words []ControlWord) []byte {
	packed := packControlWords(words)
	out := make([]byte, 4+len(packed))
	putUint32(out, uint32(len(words)))
	copy(out[4:], packed)

	return out
}
