// This tool reads metadata from the passed waveform file if available.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/iqwave"
)

const missingPathMessage = "You must pass the path of the file to decode"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	meta, err := iqwave.LoadMeta(args[0])
	if err != nil {
		return err
	}

	if len(meta) == 0 {
		fmt.Fprintln(out, "No metadata present")
		return nil
	}

	for i, m := range meta {
		fmt.Fprintf(out, "Segment %d:\n", i)
		printRecord(out, m)
	}

	return nil
}

func printRecord(out io.Writer, m *iqwave.Metadata) {
	for _, key := range m.Keys() {
		v, _ := m.Get(key)

		switch key {
		case iqwave.KeyClock, iqwave.KeyCenterFrequency:
			fmt.Fprintf(out, "\t%s: %v Hz\n", key, v)
		case iqwave.KeyLevelOffset:
			lo, err := m.LevelOffset()
			if err == nil {
				fmt.Fprintf(out, "\t%s: rms %g dB, peak %g dB\n", key, lo.RMS, lo.Peak)
				continue
			}

			fmt.Fprintf(out, "\t%s: %v\n", key, v)
		case iqwave.KeyMarkers:
			markers, err := m.Markers()
			if err != nil {
				fmt.Fprintf(out, "\t%s: %v\n", key, v)
				continue
			}

			for name, entries := range markers {
				fmt.Fprintf(out, "\t%s: %+v\n", name, entries)
			}
		case iqwave.KeyControlList:
			words, err := m.ControlList()
			if err == nil {
				fmt.Fprintf(out, "\t%s: %d words\n", key, len(words))
				continue
			}

			fmt.Fprintf(out, "\t%s: %v\n", key, v)
		default:
			fmt.Fprintf(out, "\t%s: %v\n", key, v)
		}
	}
}
