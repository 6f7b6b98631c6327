package iqwave

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Codec bundles the decode and encode entry points of one container
// format. The registry is a fixed table; there is no runtime codec
// registration.
type Codec struct {
	// Name is a short format label used in error messages.
	Name string

	// Extensions lists the lowercase file extensions the codec claims.
	// Multi-dot suffixes like ".iq.tar" are matched before single
	// extensions.
	Extensions []string

	Decode     func(io.Reader) (*SampleBuffer, []*Metadata, error)
	DecodeMeta func(io.Reader) ([]*Metadata, error)
	Encode     func(io.Writer, *SampleBuffer, []*Metadata) error
}

// The built-in codecs. Passing one of these to LoadAs or SaveAs overrides
// extension-based resolution.
var (
	// WvCodec handles the tagged-chunk stream format.
	WvCodec = &Codec{
		Name:       "wv",
		Extensions: []string{".wv"},
		Decode:     DecodeWv,
		DecodeMeta: DecodeWvMeta,
		Encode:     EncodeWv,
	}

	// IqTarCodec handles the tar archive format.
	IqTarCodec = &Codec{
		Name:       "iq.tar",
		Extensions: []string{".iq.tar", ".iqtar"},
		Decode:     DecodeIqTar,
		DecodeMeta: DecodeIqTarMeta,
		Encode:     EncodeIqTar,
	}

	// RawCodec handles the headerless interleaved format as complex
	// float32 pairs, the layout bare .iqw files conventionally carry.
	// Other layouts go through DecodeRaw and EncodeRaw directly.
	RawCodec = &Codec{
		Name:       "iqw",
		Extensions: []string{".iqw"},
		Decode:     decodeRawDefault,
		Encode:     encodeRawDefault,
	}

	codecs = []*Codec{WvCodec, IqTarCodec, RawCodec}
)

func decodeRawDefault(r io.Reader) (*SampleBuffer, []*Metadata, error) {
	buf, err := DecodeRaw(r, SampleFloat32, true)
	if err != nil {
		return nil, nil, err
	}

	// The format is metadata-free; the record exists only to keep the
	// buffer and metadata slices aligned.
	return buf, []*Metadata{NewMetadata()}, nil
}

func encodeRawDefault(w io.Writer, buf *SampleBuffer, meta []*Metadata) error {
	if buf.NumSegments() != len(meta) {
		return errSegmentMismatch
	}

	return EncodeRaw(w, buf, SampleFloat32)
}

// Resolve returns the codec claiming the extension of path, matched
// case-insensitively. Multi-dot suffixes win over the final extension, so
// "capture.iq.tar" resolves to the archive codec, not a ".tar" format.
func Resolve(path string) (*Codec, error) {
	lower := strings.ToLower(filepath.Base(path))

	for _, c := range codecs {
		for _, ext := range c.Extensions {
			if strings.Count(ext, ".") > 1 {
				if strings.HasSuffix(lower, ext) {
					return c, nil
				}

				continue
			}

			if filepath.Ext(lower) == ext {
				return c, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no codec claims %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads the waveform file at path with the codec its extension
// resolves to.
func Load(path string) (*SampleBuffer, []*Metadata, error) {
	c, err := Resolve(path)
	if err != nil {
		return nil, nil, err
	}

	return LoadAs(path, c)
}

// LoadAs reads the waveform file at path with an explicit codec,
// bypassing extension resolution.
func LoadAs(path string, c *Codec) (*SampleBuffer, []*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return c.Decode(f)
}

// LoadMeta reads only the metadata records of the waveform file at path.
// Formats without self-describing metadata are refused.
func LoadMeta(path string) ([]*Metadata, error) {
	c, err := Resolve(path)
	if err != nil {
		return nil, err
	}

	return LoadMetaAs(path, c)
}

// LoadMetaAs reads only the metadata records with an explicit codec.
func LoadMetaAs(path string, c *Codec) ([]*Metadata, error) {
	if c.DecodeMeta == nil {
		return nil, fmt.Errorf("%w: %s files carry no metadata", ErrUnsupportedFormat, c.Name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return c.DecodeMeta(f)
}

// Save writes buf and meta to path with the codec its extension resolves
// to. Resolution happens before any file is touched.
func Save(path string, buf *SampleBuffer, meta []*Metadata) error {
	c, err := Resolve(path)
	if err != nil {
		return err
	}

	return SaveAs(path, c, buf, meta)
}

// SaveAs writes buf and meta to path with an explicit codec. The encode
// goes to a temporary file in the target directory which replaces path
// only on success, so a failed encode never clobbers an existing file.
func SaveAs(path string, c *Codec, buf *SampleBuffer, meta []*Metadata) error {
	dir, base := filepath.Split(path)

	tmp, err := os.CreateTemp(dir, "."+base+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	if err := c.Encode(tmp, buf, meta); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
