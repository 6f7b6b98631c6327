package iqwave

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// errClockRequired is returned by EncodeIqTar when a segment's metadata
// lacks the clock frequency, which the archive metadata schema treats as
// mandatory.
var errClockRequired = errors.New("clock metadata is required to encode an archive")

// tarMember is one archive entry held in memory during the container
// indexing stage.
type tarMember struct {
	name string
	data []byte
}

// DecodeIqTar decodes a tar archive holding per-segment XML metadata
// members paired with raw binary sample members. Decoding runs in two
// stages: the container is indexed first, then each XML member is parsed
// and its binary member decoded with the layout the XML declares.
func DecodeIqTar(r io.Reader) (*SampleBuffer, []*Metadata, error) {
	members, err := indexTarMembers(r)
	if err != nil {
		return nil, nil, err
	}

	xmlNames, byName := splitTarMembers(members)
	if len(xmlNames) == 0 {
		return nil, nil, fmt.Errorf("%w: archive holds no metadata member", ErrFormat)
	}

	buf := NewSampleBuffer()
	meta := make([]*Metadata, 0, len(xmlNames))
	used := map[string]bool{}

	for _, xmlName := range xmlNames {
		used[xmlName] = true

		doc, err := parseIqTarDocument(byName[xmlName])
		if err != nil {
			return nil, nil, fmt.Errorf("member %q: %w", xmlName, err)
		}

		m, elem, isComplex, err := metadataFromDocument(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("member %q: %w", xmlName, err)
		}

		if doc.DataFilename == "" {
			return nil, nil, fmt.Errorf("%w: member %q names no sample data member",
				ErrFormat, xmlName)
		}

		bin, ok := byName[doc.DataFilename]
		if !ok {
			return nil, nil, fmt.Errorf("%w: member %q names sample data member %q, which the archive does not hold",
				ErrFormat, xmlName, doc.DataFilename)
		}

		used[doc.DataFilename] = true

		raw, err := DecodeRaw(bytes.NewReader(bin), elem, isComplex)
		if err != nil {
			return nil, nil, fmt.Errorf("member %q: %w", doc.DataFilename, err)
		}

		samples := raw.Segment(0)

		scale, err := m.ScalingFactor()
		if err != nil {
			return nil, nil, err
		}

		if scale != 1 {
			for i := range samples {
				samples[i] *= complex(scale, 0)
			}
		}

		buf.AppendSegment(samples)
		meta = append(meta, m)
	}

	for _, member := range members {
		if !used[member.name] {
			return nil, nil, fmt.Errorf("%w: sample data member %q is not named by any metadata member",
				ErrFormat, member.name)
		}
	}

	return buf, meta, nil
}

// DecodeIqTarMeta decodes only the metadata members of an archive. Binary
// members are indexed for pairing checks but their samples are not
// converted.
func DecodeIqTarMeta(r io.Reader) ([]*Metadata, error) {
	members, err := indexTarMembers(r)
	if err != nil {
		return nil, err
	}

	xmlNames, byName := splitTarMembers(members)
	if len(xmlNames) == 0 {
		return nil, fmt.Errorf("%w: archive holds no metadata member", ErrFormat)
	}

	meta := make([]*Metadata, 0, len(xmlNames))

	for _, xmlName := range xmlNames {
		doc, err := parseIqTarDocument(byName[xmlName])
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", xmlName, err)
		}

		m, _, _, err := metadataFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", xmlName, err)
		}

		if doc.DataFilename == "" {
			return nil, fmt.Errorf("%w: member %q names no sample data member", ErrFormat, xmlName)
		}

		if _, ok := byName[doc.DataFilename]; !ok {
			return nil, fmt.Errorf("%w: member %q names sample data member %q, which the archive does not hold",
				ErrFormat, xmlName, doc.DataFilename)
		}

		meta = append(meta, m)
	}

	return meta, nil
}

// indexTarMembers reads the whole archive into memory, keeping the member
// order of the container.
func indexTarMembers(r io.Reader) ([]tarMember, error) {
	tr := tar.NewReader(r)

	var members []tarMember

	for {
		hdr, err := tr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("%w: broken archive container: %v", ErrFormat, err)
		}

		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated archive member %q: %v", ErrFormat, hdr.Name, err)
		}

		members = append(members, tarMember{name: hdr.Name, data: data})
	}

	return members, nil
}

// splitTarMembers separates metadata members from the rest and returns the
// metadata names sorted by segment index, falling back to lexical order for
// names outside the segment%d.xml scheme.
func splitTarMembers(members []tarMember) ([]string, map[string][]byte) {
	byName := make(map[string][]byte, len(members))

	var xmlNames []string

	for _, member := range members {
		byName[member.name] = member.data

		if isXMLMemberName(member.name) {
			xmlNames = append(xmlNames, member.name)
		}
	}

	sort.Slice(xmlNames, func(i, j int) bool {
		ni, iOK := parseXMLMemberIndex(xmlNames[i])
		nj, jOK := parseXMLMemberIndex(xmlNames[j])

		if iOK && jOK {
			return ni < nj
		}

		if iOK != jOK {
			return iOK
		}

		return xmlNames[i] < xmlNames[j]
	})

	return xmlNames, byName
}

func isXMLMemberName(name string) bool {
	return len(name) > 4 && name[len(name)-4:] == ".xml"
}

func parseXMLMemberIndex(name string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(name, "segment%d.xml", &n); err != nil {
		return 0, false
	}

	return n, true
}

func xmlMemberName(i int) string {
	return fmt.Sprintf("segment%d.xml", i)
}

func binaryMemberName(i int, elem SampleType) string {
	return fmt.Sprintf("segment%d.complex.%s", i, elem)
}

// EncodeIqTar writes buf and its aligned metadata records as a tar archive,
// one XML member followed by one binary member per segment. Member order,
// header fields and XML rendering are all fixed so encoding the same input
// twice yields byte-identical archives.
func EncodeIqTar(w io.Writer, buf *SampleBuffer, meta []*Metadata) error {
	if buf.NumSegments() != len(meta) {
		return errSegmentMismatch
	}

	if buf.NumSegments() == 0 {
		return fmt.Errorf("nothing to encode: %w", ErrSampleDataNotFound)
	}

	tw := tar.NewWriter(w)

	for i := 0; i < buf.NumSegments(); i++ {
		m := meta[i]
		if m == nil {
			m = NewMetadata()
		}

		if err := encodeIqTarSegment(tw, i, buf.Segment(i), m); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	return nil
}

func encodeIqTarSegment(tw *tar.Writer, i int, samples []complex128, m *Metadata) error {
	elem, err := archiveSampleFormat(m)
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

	binName := binaryMemberName(i, elem)

	xmlData, err := renderIqTarDocument(m, len(samples), elem, binName)
	if err != nil {
		return err
	}

	scaled := samples
	if scale != 1 {
		scaled = make([]complex128, len(samples))
		for n, s := range samples {
			scaled[n] = s / complex(scale, 0)
		}
	}

	seg := NewSampleBuffer()
	seg.AppendSegment(scaled)

	var binData bytes.Buffer
	if err := EncodeRaw(&binData, seg, elem); err != nil {
		return err
	}

	if err := writeTarMember(tw, xmlMemberName(i), xmlData); err != nil {
		return err
	}

	return writeTarMember(tw, binName, binData.Bytes())
}

// archiveSampleFormat resolves the on-disk element type for an archive
// segment. Unlike the chunk format, archives default to float32.
func archiveSampleFormat(m *Metadata) (SampleType, error) {
	if _, ok := m.Get(KeySampleFormat); !ok {
		return SampleFloat32, nil
	}

	return m.SampleFormat()
}

func writeTarMember(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0644,
		Size:     int64(len(data)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write archive member header %q: %w", name, err)
	}

	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write archive member %q: %w", name, err)
	}

	return nil
}
