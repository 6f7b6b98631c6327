package iqwave

import (
	"bytes"
	"fmt"
	"log"
)

func ExampleEncodeWv() {
	buf := NewSampleBuffer()
	buf.AppendSegment([]complex128{0.25 + 0.5i, -0.25 - 0.5i})

	m := NewMetadata()
	m.SetType("SMU-WV")
	m.SetClock(100e6)
	m.SetSampleFormat(SampleFloat64)

	var stream bytes.Buffer
	if err := EncodeWv(&stream, buf, []*Metadata{m}); err != nil {
		log.Fatal(err)
	}

	decoded, meta, err := DecodeWv(bytes.NewReader(stream.Bytes()))
	if err != nil {
		log.Fatal(err)
	}

	typ, _ := meta[0].Type()
	clock, _ := meta[0].Clock()
	fmt.Printf("%s waveform, %d samples at %.0f Hz\n", typ, decoded.SegmentLen(0), clock)
	// Output: SMU-WV waveform, 2 samples at 100000000 Hz
}

func ExampleMetadata() {
	m := NewMetadata()
	m.SetComment("two-tone test signal")
	m.SetClock(1e6)
	m.Set("vendor_field", "kept verbatim")

	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		fmt.Printf("%s = %v\n", key, v)
	}
	// Output:
	// comment = two-tone test signal
	// clock = 1e+06
	// vendor_field = kept verbatim
}
