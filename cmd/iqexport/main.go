// This tool exports an IQ waveform file into a two-channel audio file
// (channel 0 = I, channel 1 = Q) for inspection in audio editors.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/iqwave"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth          = 16
	defaultSampleRate = 48000
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("iqexport", flag.ContinueOnError)

	path := flagSet.String("path", "", "the waveform file to export")
	format := flagSet.String("format", "wav", "output format, wav or aiff")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("the -path flag is required")
	}

	var ext string

	switch *format {
	case "wav":
		ext = ".wav"
	case "aiff":
		ext = ".aif"
	default:
		return fmt.Errorf("unknown output format %q", *format)
	}

	buf, meta, err := iqwave.Load(*path)
	if err != nil {
		return err
	}

	sampleRate := defaultSampleRate
	if clock, err := meta[0].Clock(); err == nil && clock > 0 {
		sampleRate = int(clock)
	}

	outPath := (*path)[:len(*path)-len(filepath.Ext(*path))] + ext

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer outFile.Close()

	intBuf := floatToIntBuffer(buf.FloatBuffer(0, sampleRate))

	switch *format {
	case "wav":
		enc := wav.NewEncoder(outFile, sampleRate, bitDepth, 2, 1)
		if err := enc.Write(intBuf); err != nil {
			return err
		}

		if err := enc.Close(); err != nil {
			return err
		}
	case "aiff":
		enc := aiff.NewEncoder(outFile, sampleRate, bitDepth, 2)
		if err := enc.Write(intBuf); err != nil {
			return err
		}

		if err := enc.Close(); err != nil {
			return err
		}
	}

	log.Printf("exported %s to %s", *path, outPath)

	return nil
}

func floatToIntBuffer(buf *audio.FloatBuffer) *audio.IntBuffer {
	intBuf := &audio.IntBuffer{
		Format:         buf.Format,
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(buf.Data)),
	}

	for i, v := range buf.Data {
		intBuf.Data[i] = floatToPCMInt16(v)
	}

	return intBuf
}

func floatToPCMInt16(v float64) int {
	scaled := math.Round(v * 32767)
	if scaled < math.MinInt16 {
		return math.MinInt16
	}

	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}

	return int(scaled)
}
