package engine

import (
	"fmt"
	"math"

	"github.com/faiface/beep"
)

// toneStreamer is a seekable sine generator used for the "tone:<freq>"
// asset names. It lets the transport and effect chain be exercised
// without any audio files on disk.
type toneStreamer struct {
	freq       float64
	sampleRate beep.SampleRate
	length     int
	pos        int
}

func newToneStreamer(freq float64, sampleRate beep.SampleRate, durationSec float64) *toneStreamer {
	return &toneStreamer{
		freq:       freq,
		sampleRate: sampleRate,
		length:     int(durationSec * float64(sampleRate)),
	}
}

func (t *toneStreamer) Stream(samples [][2]float64) (int, bool) {
	if t.pos >= t.length {
		return 0, false
	}
	n := 0
	for i := range samples {
		if t.pos >= t.length {
			break
		}
		sec := float64(t.pos) / float64(t.sampleRate)
		v := toneAmplitude * math.Sin(2*math.Pi*t.freq*sec)
		samples[i][0] = v
		samples[i][1] = v
		t.pos++
		n++
	}
	return n, true
}

func (t *toneStreamer) Err() error { return nil }

func (t *toneStreamer) Len() int { return t.length }

func (t *toneStreamer) Position() int { return t.pos }

func (t *toneStreamer) Seek(p int) error {
	if p < 0 || p > t.length {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, t.length)
	}
	t.pos = p
	return nil
}

var _ beep.StreamSeeker = (*toneStreamer)(nil)
