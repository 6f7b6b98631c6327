// Package iqwave loads, edits and saves instrument waveform files: complex
// IQ sample streams plus the typed metadata describing how the samples are
// to be interpreted (clock rate, markers, scaling, timestamps).
//
// Three on-disk encodings are supported:
//
//   - wv: a tagged binary chunk stream (4-byte ASCII tag, 4-byte
//     little-endian length, payload)
//   - iqw: a headerless interleaved I/Q stream
//   - iq.tar: a tar archive pairing an XML metadata document with a raw
//     binary payload per segment
//
// Load and Save resolve the codec from the file extension; LoadAs and
// SaveAs take an explicit codec. All codecs produce and consume the same
// pair: a SampleBuffer holding one or more segments of complex samples and
// one Metadata record per segment, index-aligned.
//
// Encrypted waveforms are detected and refused: decode surfaces
// ErrEncryptedContent and returns the metadata without sample values.
package iqwave
