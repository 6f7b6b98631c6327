// Package dsp provides small signal helpers over decoded IQ sample
// slices: normalization and peak/RMS/PAR levels in dB. The functions only
// read their input and never reach back into the container formats.
package dsp

import (
	"math"
	"math/cmplx"
)

// DefaultReference is the normalization target amplitude: full scale of a
// 16-bit quantized waveform, just below 1.0.
const DefaultReference = 1 - 1.0/32768

// Normalize scales data so its peak magnitude hits reference. A zero
// reference selects DefaultReference. All-zero input is returned
// unchanged.
func Normalize(data []complex128, reference float64) []complex128 {
	if reference == 0 {
		reference = DefaultReference
	}

	peak := peakMagnitude(data)
	if peak == 0 {
		return data
	}

	out := make([]complex128, len(data))
	k := complex(reference/peak, 0)

	for i, s := range data {
		out[i] = s * k
	}

	return out
}

// ToDB converts an amplitude ratio to dB.
func ToDB(value float64) float64 {
	return 20 * math.Log10(value)
}

// Peak returns the peak magnitude of data in dB.
func Peak(data []complex128) float64 {
	return ToDB(peakMagnitude(data))
}

// RMS returns the root-mean-square magnitude of data in dB.
func RMS(data []complex128) float64 {
	if len(data) == 0 {
		return ToDB(0)
	}

	var sum float64
	for _, s := range data {
		sum += real(s)*real(s) + imag(s)*imag(s)
	}

	return ToDB(math.Sqrt(sum / float64(len(data))))
}

// PAR returns the peak-to-average ratio of data in dB.
func PAR(data []complex128) float64 {
	return Peak(data) - RMS(data)
}

func peakMagnitude(data []complex128) float64 {
	var peak float64

	for _, s := range data {
		if m := cmplx.Abs(s); m > peak {
			peak = m
		}
	}

	return peak
}
