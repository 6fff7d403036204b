package probe

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"

	"github.com/soundbench/soundbench/internal/analyzer"
)

// WavPeaks decodes a WAV file fully and reduces it to n peak points,
// mono-mixed and normalized to [0, 1]. Meant for library previews, so
// it trades memory for simplicity.
func WavPeaks(path string, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("point count must be positive, got %d", n)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || len(buf.Data) == 0 {
		return nil, fmt.Errorf("empty wav file")
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	fullScale := math.Pow(2, float64(bitDepth-1))

	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		mono[i] = sum / float64(channels) / fullScale
	}

	return analyzer.WaveformPeaks(mono, n), nil
}
