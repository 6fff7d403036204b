// Package analyzer reduces rendered audio to UI-sized summaries: peak
// waveforms for scrubbing views and magnitude spectra for the analyzer
// panel.
package analyzer

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// DefaultWaveformPoints is the peak count returned when a request
	// does not specify one.
	DefaultWaveformPoints = 200

	// SpectrumFFTSize is the analysis window length. Must be a power of
	// two for the radix-2 FFT path.
	SpectrumFFTSize = 2048

	// spectrumFloorDB is the level reported for silent bins.
	spectrumFloorDB = -120.0
)

// WaveformPeaks reduces a sample buffer to n peak-magnitude points, one
// per equal-sized block. Returns nil for an empty buffer or n <= 0.
func WaveformPeaks(samples []float64, n int) []float64 {
	if len(samples) == 0 || n <= 0 {
		return nil
	}
	if n > len(samples) {
		n = len(samples)
	}
	peaks := make([]float64, n)
	blockLen := len(samples) / n
	for i := 0; i < n; i++ {
		start := i * blockLen
		end := start + blockLen
		if i == n-1 {
			end = len(samples)
		}
		var peak float64
		for _, v := range samples[start:end] {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
		peaks[i] = peak
	}
	return peaks
}

// Bin is one frequency bin of a magnitude spectrum.
type Bin struct {
	FrequencyHz float64 `json:"frequencyHz"`
	MagnitudeDB float64 `json:"magnitudeDb"`
}

// MagnitudeSpectrumDB computes the magnitude spectrum of the most
// recent SpectrumFFTSize samples, Hann-windowed, as dBFS per bin up to
// Nyquist. Returns nil when fewer than SpectrumFFTSize samples are
// available.
func MagnitudeSpectrumDB(samples []float64, sampleRate int) []Bin {
	if len(samples) < SpectrumFFTSize || sampleRate <= 0 {
		return nil
	}
	tail := samples[len(samples)-SpectrumFFTSize:]

	window := make([]float64, SpectrumFFTSize)
	for i, v := range tail {
		hann := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(SpectrumFFTSize-1)))
		window[i] = v * hann
	}

	coeffs := fft.FFTReal(window)

	// Hann window coherent gain is 0.5; scale so a full-scale sine
	// reads close to 0 dBFS.
	scale := 2.0 / (0.5 * float64(SpectrumFFTSize))

	bins := make([]Bin, SpectrumFFTSize/2)
	binWidth := float64(sampleRate) / float64(SpectrumFFTSize)
	for i := range bins {
		c := coeffs[i]
		mag := math.Hypot(real(c), imag(c)) * scale
		db := spectrumFloorDB
		if mag > 0 {
			db = 20 * math.Log10(mag)
			if db < spectrumFloorDB {
				db = spectrumFloorDB
			}
		}
		bins[i] = Bin{
			FrequencyHz: float64(i) * binWidth,
			MagnitudeDB: db,
		}
	}
	return bins
}
