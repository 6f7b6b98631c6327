package iqwave

import "errors"

var (
	// ErrFormat indicates malformed framing, a tag/length mismatch or an
	// otherwise undecodable byte stream. It is never silently repaired.
	ErrFormat = errors.New("malformed waveform data")
	// ErrUnsupportedFormat is returned when no codec matches the file
	// extension and no explicit codec was given.
	ErrUnsupportedFormat = errors.New("unsupported waveform format")
	// ErrEncryptedContent is returned instead of decoded samples when a
	// segment carries the encryption flag. Metadata is still returned.
	ErrEncryptedContent = errors.New("waveform content is encrypted")
	// ErrMetadataType is returned by a typed metadata accessor when the
	// stored value does not match the expected type.
	ErrMetadataType = errors.New("metadata value has unexpected type")
	// ErrSampleDataNotFound indicates a chunk stream without a sample data
	// chunk.
	ErrSampleDataNotFound = errors.New("sample data chunk not found")

	errSegmentMismatch = errors.New("sample buffer and metadata segment counts differ")
)
