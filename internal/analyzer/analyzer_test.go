package analyzer

import (
	"math"
	"testing"
)

func TestWaveformPeaksEmpty(t *testing.T) {
	if got := WaveformPeaks(nil, 10); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := WaveformPeaks([]float64{0.5}, 0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
}

func TestWaveformPeaksBlocks(t *testing.T) {
	samples := make([]float64, 100)
	samples[10] = -0.9 // peak is magnitude, sign discarded
	samples[60] = 0.4
	peaks := WaveformPeaks(samples, 2)
	if len(peaks) != 2 {
		t.Fatalf("got %d points, want 2", len(peaks))
	}
	if peaks[0] != 0.9 || peaks[1] != 0.4 {
		t.Errorf("peaks = %v, want [0.9 0.4]", peaks)
	}
}

func TestWaveformPeaksFewerSamplesThanPoints(t *testing.T) {
	peaks := WaveformPeaks([]float64{0.1, 0.2, 0.3}, 10)
	if len(peaks) != 3 {
		t.Errorf("got %d points, want 3", len(peaks))
	}
}

func TestMagnitudeSpectrumTooShort(t *testing.T) {
	if got := MagnitudeSpectrumDB(make([]float64, SpectrumFFTSize-1), 48000); got != nil {
		t.Errorf("expected nil for short input, got %d bins", len(got))
	}
}

func TestMagnitudeSpectrumSinePeak(t *testing.T) {
	const sampleRate = 48000
	const freq = 1000.0
	samples := make([]float64, SpectrumFFTSize)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}

	bins := MagnitudeSpectrumDB(samples, sampleRate)
	if len(bins) != SpectrumFFTSize/2 {
		t.Fatalf("got %d bins, want %d", len(bins), SpectrumFFTSize/2)
	}

	peak := 0
	for i, b := range bins {
		if b.MagnitudeDB > bins[peak].MagnitudeDB {
			peak = i
		}
	}
	binWidth := float64(sampleRate) / SpectrumFFTSize
	if got := bins[peak].FrequencyHz; math.Abs(got-freq) > binWidth {
		t.Errorf("spectral peak at %.1f Hz, want within one bin of %.1f Hz", got, freq)
	}
	if bins[peak].MagnitudeDB < -3 || bins[peak].MagnitudeDB > 3 {
		t.Errorf("full-scale sine peak at %.1f dB, want near 0 dBFS", bins[peak].MagnitudeDB)
	}
}

func TestMagnitudeSpectrumSilence(t *testing.T) {
	bins := MagnitudeSpectrumDB(make([]float64, SpectrumFFTSize), 48000)
	for _, b := range bins {
		if b.MagnitudeDB != -120 {
			t.Fatalf("silent bin at %.1f Hz reads %.1f dB, want floor", b.FrequencyHz, b.MagnitudeDB)
		}
	}
}
