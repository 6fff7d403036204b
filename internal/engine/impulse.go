package engine

import (
	"math"
	"math/rand"
)

// envelopeDecayLn is ln(1000): the exponential envelope reaches -60 dB
// at the end of the kernel, so decaySeconds behaves like an RT60 time.
const envelopeDecayLn = 6.907755278982137

const impulseSeed = 0x50a2db

// impulseKernel synthesizes a mono room impulse response: white noise
// under an exponential decay envelope, with a unit direct-sound sample
// at the front. Returns nil for a non-positive decay, which callers
// treat as a fully dry node.
//
// The noise source is seeded deterministically so the same decay always
// produces the same room.
func impulseKernel(decaySeconds, sampleRate float64) []float64 {
	length := int(decaySeconds * sampleRate)
	if length <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(impulseSeed))
	kernel := make([]float64, length)
	kernel[0] = 1
	for i := 1; i < length; i++ {
		t := float64(i) / float64(length)
		kernel[i] = (2*rng.Float64() - 1) * math.Exp(-envelopeDecayLn*t)
	}
	return kernel
}
