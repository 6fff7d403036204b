package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/effects/pitch"
	"github.com/cwbudde/algo-dsp/dsp/effects/reverb"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/shelving"
	"github.com/faiface/beep/speaker"
)

const (
	// convMinBlockOrder sizes the smallest partition of the partitioned
	// convolution (2^7 = 128 samples).
	convMinBlockOrder = 7

	reverbWet = 0.35
	reverbDry = 1.0

	eqLowShelfHz  = 400.0
	eqMidPeakHz   = 1000.0
	eqMidQ        = 1.0
	eqHighShelfHz = 2500.0
)

// pitchShiftNode wraps a WSOLA pitch shifter. Parameter pushes and
// disposal happen under the speaker lock, which also excludes the
// render goroutine.
type pitchShiftNode struct {
	shifter  *pitch.PitchShifter
	disposed bool
}

func newPitchShiftNode(sampleRate float64, semitones int) (*pitchShiftNode, error) {
	sh, err := pitch.NewPitchShifter(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("create pitch shifter: %w", err)
	}
	if err := sh.SetPitchSemitones(float64(semitones)); err != nil {
		return nil, fmt.Errorf("apply initial pitch: %w", err)
	}
	return &pitchShiftNode{shifter: sh}, nil
}

func (n *pitchShiftNode) SetSemitones(semitones int) error {
	speaker.Lock()
	defer speaker.Unlock()
	if n.disposed {
		return ErrDisposed
	}
	return n.shifter.SetPitchSemitones(float64(semitones))
}

func (n *pitchShiftNode) Dispose() error {
	speaker.Lock()
	n.disposed = true
	speaker.Unlock()
	return nil
}

// process runs on the render goroutine, under the speaker lock.
func (n *pitchShiftNode) process(buf []float64) {
	if n.disposed {
		return
	}
	n.shifter.ProcessInPlace(buf)
}

// reverbNode holds a partitioned convolution engine built from a
// synthesized impulse. RegenerateImpulse does the expensive kernel and
// FFT setup off the render path and swaps the engine in under the
// speaker lock. A nil engine means dry passthrough, which is also the
// decay=0 setting.
type reverbNode struct {
	sampleRate float64

	mu    sync.Mutex
	decay float64

	conv     *reverb.ConvolutionReverb
	disposed bool
}

func newReverbNode(sampleRate, decaySeconds float64) *reverbNode {
	return &reverbNode{sampleRate: sampleRate, decay: decaySeconds}
}

func (n *reverbNode) SetDecaySeconds(seconds float64) {
	n.mu.Lock()
	n.decay = seconds
	n.mu.Unlock()
}

func (n *reverbNode) RegenerateImpulse(ctx context.Context) error {
	n.mu.Lock()
	decay := n.decay
	n.mu.Unlock()

	var conv *reverb.ConvolutionReverb
	if kernel := impulseKernel(decay, n.sampleRate); len(kernel) > 0 {
		c, err := reverb.NewConvolutionReverb(kernel, convMinBlockOrder)
		if err != nil {
			return fmt.Errorf("build convolution engine: %w", err)
		}
		c.SetWetDry(reverbWet, reverbDry)
		conv = c
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	speaker.Lock()
	defer speaker.Unlock()
	if n.disposed {
		return nil
	}
	n.conv = conv
	return nil
}

func (n *reverbNode) Dispose() error {
	speaker.Lock()
	n.disposed = true
	n.conv = nil
	speaker.Unlock()
	return nil
}

// process runs on the render goroutine, under the speaker lock. The
// convolution engine only fails on a block larger than its partition
// plan allows; a failed block passes through dry.
func (n *reverbNode) process(buf []float64) {
	if n.disposed || n.conv == nil {
		return
	}
	_ = n.conv.ProcessInPlace(buf)
}

// eqNode is a 3-band equalizer: Butterworth low shelf, peak mid,
// Butterworth high shelf. Gain changes rebuild the affected filters
// and preserve the state of running sections.
type eqNode struct {
	sampleRate float64
	gains      [3]float64

	low      *biquad.Chain
	mid      *biquad.Chain
	high     *biquad.Chain
	disposed bool
}

func newEqNode(sampleRate float64, lowDB, midDB, highDB int) (*eqNode, error) {
	n := &eqNode{
		sampleRate: sampleRate,
		gains:      [3]float64{float64(lowDB), float64(midDB), float64(highDB)},
	}
	if err := n.rebuild(); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *eqNode) SetGainDB(band Band, gainDB int) error {
	speaker.Lock()
	defer speaker.Unlock()
	if n.disposed {
		return ErrDisposed
	}
	switch band {
	case BandLow, BandMid, BandHigh:
		n.gains[band] = float64(gainDB)
	default:
		return fmt.Errorf("unknown band %d", band)
	}
	return n.rebuild()
}

func (n *eqNode) rebuild() error {
	lowCoeffs, err := shelving.ButterworthLowShelf(n.sampleRate, eqLowShelfHz, n.gains[BandLow], 1)
	if err != nil {
		return fmt.Errorf("design low shelf: %w", err)
	}
	midCoeffs, err := design.PeakCascade(n.sampleRate, eqMidPeakHz, eqMidQ, n.gains[BandMid], 1)
	if err != nil {
		return fmt.Errorf("design mid peak: %w", err)
	}
	highCoeffs, err := shelving.ButterworthHighShelf(n.sampleRate, eqHighShelfHz, n.gains[BandHigh], 1)
	if err != nil {
		return fmt.Errorf("design high shelf: %w", err)
	}
	if n.low == nil {
		n.low = biquad.NewChain(lowCoeffs)
		n.mid = biquad.NewChain(midCoeffs)
		n.high = biquad.NewChain(highCoeffs)
		return nil
	}
	n.low.UpdateCoefficients(lowCoeffs, 1)
	n.mid.UpdateCoefficients(midCoeffs, 1)
	n.high.UpdateCoefficients(highCoeffs, 1)
	return nil
}

func (n *eqNode) Dispose() error {
	speaker.Lock()
	n.disposed = true
	speaker.Unlock()
	return nil
}

// process runs on the render goroutine, under the speaker lock.
func (n *eqNode) process(buf []float64) {
	if n.disposed {
		return
	}
	n.low.ProcessBlock(buf)
	n.mid.ProcessBlock(buf)
	n.high.ProcessBlock(buf)
}

var (
	_ PitchNode  = (*pitchShiftNode)(nil)
	_ ReverbNode = (*reverbNode)(nil)
	_ EqNode     = (*eqNode)(nil)
)
