package iqwave

import (
	"fmt"
	"time"
)

// Well-known metadata keys. Typed accessors are layered over these; any
// other key passes through the generic mapping untouched.
const (
	KeyType            = "type"
	KeyCopyright       = "copyright"
	KeyComment         = "comment"
	KeyClock           = "clock"
	KeyMarkers         = "marker"
	KeyControlLength   = "control_length"
	KeyControlList     = "control_list"
	KeyLevelOffset     = "level_offset"
	KeyTimestamp       = "date"
	KeyEncrypted       = "encryption_flag"
	KeyCenterFrequency = "center_frequency"
	KeyScalingFactor   = "scaling_factor"
	KeySampleFormat    = "sample_format"
)

// MarkerEntry is one [sample-offset, marker-value] pair of a marker list.
type MarkerEntry struct {
	Offset int
	Value  int
}

// MarkerList maps a marker list name (e.g. "marker_list_1") to its ordered
// entries.
type MarkerList map[string][]MarkerEntry

// ControlWord holds the four control bits attached to one sample.
type ControlWord [4]bool

// LevelOffset carries the RMS and peak offsets of a segment in dB.
type LevelOffset struct {
	RMS  float64
	Peak float64
}

// Metadata is the typed, extensible key/value store paired with one
// waveform segment. Keys keep insertion order so preserved vendor tags
// re-encode in a stable position.
type Metadata struct {
	keys  []string
	items map[string]any
}

// NewMetadata returns an empty metadata record.
func NewMetadata() *Metadata {
	return &Metadata{items: map[string]any{}}
}

// Get returns the raw value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}

	v, ok := m.items[key]

	return v, ok
}

// Set stores value under key, appending the key on first use.
func (m *Metadata) Set(key string, value any) {
	if m == nil {
		return
	}

	if m.items == nil {
		m.items = map[string]any{}
	}

	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.items[key] = value
}

// Delete removes key from the record.
func (m *Metadata) Delete(key string) {
	if m == nil {
		return
	}

	if _, ok := m.items[key]; !ok {
		return
	}

	delete(m.items, key)

	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}

	return append([]string(nil), m.keys...)
}

// Len returns the number of stored keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}

	return len(m.items)
}

// Update copies all entries of src into the record.
func (m *Metadata) Update(src map[string]any) {
	for k, v := range src {
		m.Set(k, v)
	}
}

// Clone returns a shallow copy of the record.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}

	out := NewMetadata()
	for _, k := range m.keys {
		out.Set(k, m.items[k])
	}

	return out
}

func typeErr(key string, want string, got any) error {
	return fmt.Errorf("%w: key %q holds %T, want %s", ErrMetadataType, key, got, want)
}

func getString(m *Metadata, key string) (string, error) {
	v, ok := m.Get(key)
	if !ok {
		return "", nil
	}

	s, ok := v.(string)
	if !ok {
		return "", typeErr(key, "string", v)
	}

	return s, nil
}

func getFloat(m *Metadata, key string) (float64, error) {
	v, ok := m.Get(key)
	if !ok {
		return 0, nil
	}

	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	default:
		return 0, typeErr(key, "float64", v)
	}
}

// Type returns the waveform type tag (e.g. "SMU-WV").
func (m *Metadata) Type() (string, error) { return getString(m, KeyType) }

// SetType sets the waveform type tag.
func (m *Metadata) SetType(v string) { m.Set(KeyType, v) }

// Copyright returns the copyright string.
func (m *Metadata) Copyright() (string, error) { return getString(m, KeyCopyright) }

// SetCopyright sets the copyright string.
func (m *Metadata) SetCopyright(v string) { m.Set(KeyCopyright, v) }

// Comment returns the free-text comment.
func (m *Metadata) Comment() (string, error) { return getString(m, KeyComment) }

// SetComment sets the free-text comment.
func (m *Metadata) SetComment(v string) { m.Set(KeyComment, v) }

// Clock returns the sample clock frequency in Hz.
func (m *Metadata) Clock() (float64, error) { return getFloat(m, KeyClock) }

// SetClock sets the sample clock frequency in Hz.
func (m *Metadata) SetClock(v float64) { m.Set(KeyClock, v) }

// CenterFrequency returns the center frequency in Hz.
func (m *Metadata) CenterFrequency() (float64, error) { return getFloat(m, KeyCenterFrequency) }

// SetCenterFrequency sets the center frequency in Hz.
func (m *Metadata) SetCenterFrequency(v float64) { m.Set(KeyCenterFrequency, v) }

// ScalingFactor returns the multiplier applied to stored sample values to
// obtain calibrated amplitude. A record without the key scales by 1.
func (m *Metadata) ScalingFactor() (float64, error) {
	if _, ok := m.Get(KeyScalingFactor); !ok {
		return 1, nil
	}

	return getFloat(m, KeyScalingFactor)
}

// SetScalingFactor sets the sample scaling factor.
func (m *Metadata) SetScalingFactor(v float64) { m.Set(KeyScalingFactor, v) }

// Markers returns the marker lists of the segment.
func (m *Metadata) Markers() (MarkerList, error) {
	v, ok := m.Get(KeyMarkers)
	if !ok {
		return nil, nil
	}

	l, ok := v.(MarkerList)
	if !ok {
		return nil, typeErr(KeyMarkers, "MarkerList", v)
	}

	return l, nil
}

// SetMarkers sets the marker lists of the segment.
func (m *Metadata) SetMarkers(v MarkerList) { m.Set(KeyMarkers, v) }

// ControlLength returns the control length count.
func (m *Metadata) ControlLength() (int, error) {
	v, ok := m.Get(KeyControlLength)
	if !ok {
		return 0, nil
	}

	n, ok := v.(int)
	if !ok {
		return 0, typeErr(KeyControlLength, "int", v)
	}

	return n, nil
}

// SetControlLength sets the control length count.
func (m *Metadata) SetControlLength(v int) { m.Set(KeyControlLength, v) }

// ControlList returns the per-sample control words.
func (m *Metadata) ControlList() ([]ControlWord, error) {
	v, ok := m.Get(KeyControlList)
	if !ok {
		return nil, nil
	}

	l, ok := v.([]ControlWord)
	if !ok {
		return nil, typeErr(KeyControlList, "[]ControlWord", v)
	}

	return l, nil
}

// SetControlList sets the per-sample control words.
func (m *Metadata) SetControlList(v []ControlWord) { m.Set(KeyControlList, v) }

// LevelOffset returns the RMS/peak level offsets in dB.
func (m *Metadata) LevelOffset() (LevelOffset, error) {
	v, ok := m.Get(KeyLevelOffset)
	if !ok {
		return LevelOffset{}, nil
	}

	lo, ok := v.(LevelOffset)
	if !ok {
		return LevelOffset{}, typeErr(KeyLevelOffset, "LevelOffset", v)
	}

	return lo, nil
}

// SetLevelOffset sets the RMS/peak level offsets in dB.
func (m *Metadata) SetLevelOffset(v LevelOffset) { m.Set(KeyLevelOffset, v) }

// Timestamp returns the creation timestamp.
func (m *Metadata) Timestamp() (time.Time, error) {
	v, ok := m.Get(KeyTimestamp)
	if !ok {
		return time.Time{}, nil
	}

	ts, ok := v.(time.Time)
	if !ok {
		return time.Time{}, typeErr(KeyTimestamp, "time.Time", v)
	}

	return ts, nil
}

// SetTimestamp sets the creation timestamp.
func (m *Metadata) SetTimestamp(v time.Time) { m.Set(KeyTimestamp, v) }

// Encrypted reports whether the segment's sample data is encrypted. An
// encrypted segment is never decoded, only its metadata is surfaced.
func (m *Metadata) Encrypted() (bool, error) {
	v, ok := m.Get(KeyEncrypted)
	if !ok {
		return false, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, typeErr(KeyEncrypted, "bool", v)
	}

	return b, nil
}

// SetEncrypted sets the encryption flag.
func (m *Metadata) SetEncrypted(v bool) { m.Set(KeyEncrypted, v) }

// SampleFormat returns the element type samples are stored with on disk.
// Records without the key default to 16-bit fixed point.
func (m *Metadata) SampleFormat() (SampleType, error) {
	v, ok := m.Get(KeySampleFormat)
	if !ok {
		return SampleInt16, nil
	}

	st, ok := v.(SampleType)
	if !ok {
		return 0, typeErr(KeySampleFormat, "SampleType", v)
	}

	return st, nil
}

// SetSampleFormat sets the on-disk sample element type.
func (m *Metadata) SetSampleFormat(v SampleType) { m.Set(KeySampleFormat, v) }
