package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/cwbudde/iqwave"
	"github.com/cwbudde/iqwave/dsp"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-tone", flag.ContinueOnError)

	output := flagSet.String("output", "output.wv", "filename to write to")
	frequency := flagSet.Float64("frequency", 1e6, "tone frequency in hertz")
	clock := flagSet.Float64("clock", 100e6, "sample clock in hertz")
	length := flagSet.Float64("length", 0.001, "length in seconds of output file")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec complex tone at %f hz", *length, *frequency)

	numSamples := int(*clock * *length)
	samples := make([]complex128, numSamples)

	for i := range samples {
		phase := 2 * math.Pi * *frequency * float64(i) / *clock
		samples[i] = complex(math.Cos(phase), math.Sin(phase))
	}

	samples = dsp.Normalize(samples, 0)

	buf := iqwave.NewSampleBuffer()
	buf.AppendSegment(samples)

	m := iqwave.NewMetadata()
	m.SetType("SMU-WV")
	m.SetComment(fmt.Sprintf("complex tone at %g Hz", *frequency))
	m.SetClock(*clock)
	m.SetTimestamp(time.Now().UTC())

	return iqwave.Save(*output, buf, []*iqwave.Metadata{m})
}
