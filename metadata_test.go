package iqwave

import (
	"errors"
	"testing"
	"time"
)

func TestMetadataKeysKeepInsertionOrder(t *testing.T) {
	m := NewMetadata()
	m.SetType("SMU-WV")
	m.SetClock(1e6)
	m.Set("vendor", "custom")
	m.SetComment("hello")

	want := []string{KeyType, KeyClock, "vendor", KeyComment}

	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d mismatch: got %q want %q", i, got[i], want[i])
		}
	}

	// Overwriting keeps the original position.
	m.SetType("SGT100A")

	if m.Keys()[0] != KeyType {
		t.Fatal("overwrite moved the key")
	}

	typ, err := m.Type()
	if err != nil || typ != "SGT100A" {
		t.Fatalf("overwrite lost the value: %q, %v", typ, err)
	}
}

func TestMetadataDelete(t *testing.T) {
	m := NewMetadata()
	m.SetType("SMU-WV")
	m.SetClock(1e6)
	m.Delete(KeyType)

	if _, ok := m.Get(KeyType); ok {
		t.Fatal("deleted key still present")
	}

	if m.Len() != 1 || m.Keys()[0] != KeyClock {
		t.Fatalf("unexpected keys after delete: %v", m.Keys())
	}

	typ, err := m.Type()
	if err != nil || typ != "" {
		t.Fatalf("accessor on deleted key: %q, %v", typ, err)
	}
}

func TestMetadataTypedAccessorMismatch(t *testing.T) {
	m := NewMetadata()
	m.Set(KeyClock, "not a number")
	m.Set(KeyMarkers, 42)
	m.Set(KeyEncrypted, "yes")

	if _, err := m.Clock(); !errors.Is(err, ErrMetadataType) {
		t.Fatalf("clock: expected ErrMetadataType, got %v", err)
	}

	if _, err := m.Markers(); !errors.Is(err, ErrMetadataType) {
		t.Fatalf("markers: expected ErrMetadataType, got %v", err)
	}

	if _, err := m.Encrypted(); !errors.Is(err, ErrMetadataType) {
		t.Fatalf("encrypted: expected ErrMetadataType, got %v", err)
	}
}

func TestMetadataDefaults(t *testing.T) {
	m := NewMetadata()

	scale, err := m.ScalingFactor()
	if err != nil || scale != 1 {
		t.Fatalf("scaling default: %v, %v", scale, err)
	}

	elem, err := m.SampleFormat()
	if err != nil || elem != SampleInt16 {
		t.Fatalf("sample format default: %v, %v", elem, err)
	}

	enc, err := m.Encrypted()
	if err != nil || enc {
		t.Fatalf("encrypted default: %v, %v", enc, err)
	}

	ts, err := m.Timestamp()
	if err != nil || !ts.IsZero() {
		t.Fatalf("timestamp default: %v, %v", ts, err)
	}
}

func TestMetadataIntPromotesToFloat(t *testing.T) {
	m := NewMetadata()
	m.Set(KeyClock, 48000)

	clock, err := m.Clock()
	if err != nil || clock != 48000.0 {
		t.Fatalf("int clock: %v, %v", clock, err)
	}
}

func TestMetadataCloneIsIndependent(t *testing.T) {
	m := NewMetadata()
	m.SetComment("original")
	m.SetTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	c := m.Clone()
	c.SetComment("copy")
	c.Set("extra", 1)

	comment, err := m.Comment()
	if err != nil || comment != "original" {
		t.Fatalf("clone mutated the source: %q, %v", comment, err)
	}

	if _, ok := m.Get("extra"); ok {
		t.Fatal("clone key leaked into the source")
	}
}

func TestMetadataUpdate(t *testing.T) {
	m := NewMetadata()
	m.SetType("SMU-WV")

	m.Update(map[string]any{
		KeyClock:   1e6,
		KeyComment: "merged",
	})

	clock, err := m.Clock()
	if err != nil || clock != 1e6 {
		t.Fatalf("clock after update: %v, %v", clock, err)
	}

	if m.Len() != 3 {
		t.Fatalf("expected 3 keys after update, got %d", m.Len())
	}
}

func TestMetadataNilReceiver(t *testing.T) {
	var m *Metadata

	if m.Len() != 0 || m.Keys() != nil {
		t.Fatal("nil record should be empty")
	}

	if _, ok := m.Get(KeyType); ok {
		t.Fatal("nil record should hold nothing")
	}

	enc, err := m.Encrypted()
	if err != nil || enc {
		t.Fatalf("nil record accessor: %v, %v", enc, err)
	}
}
