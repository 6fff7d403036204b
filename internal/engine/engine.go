// Package engine defines the audio engine boundary consumed by the
// control session: asset decoding, effect node construction, chaining
// and the playback transport. The production implementation is backed
// by beep for decode/output and algo-dsp for the effect processors;
// tests use MockEngine.
package engine

import (
	"context"
	"errors"
)

var (
	// ErrUnsupportedFormat is returned by Decode for assets whose
	// extension has no registered decoder.
	ErrUnsupportedFormat = errors.New("engine: unsupported audio format")

	// ErrDisposed is returned when an operation reaches a node or
	// source that has already been released.
	ErrDisposed = errors.New("engine: resource disposed")

	// ErrNotChained is returned by transport operations on a source
	// that was never wired into an effect chain.
	ErrNotChained = errors.New("engine: source not chained")
)

// Band identifies one of the three equalizer bands.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

// String returns the lowercase band name used in the HTTP API and logs.
func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Engine decodes assets and constructs effect nodes.
type Engine interface {
	// Decode opens and decodes the named asset, yielding a playable
	// source. The name "tone:<freqHz>" yields a generated test tone.
	Decode(ctx context.Context, name string) (Source, error)

	NewPitchShiftNode(semitones int) (PitchNode, error)
	NewReverbNode(decaySeconds float64) (ReverbNode, error)
	NewEqNode(lowDB, midDB, highDB int) (EqNode, error)

	// Chain wires source → pitch → reverb → eq → output. It must be
	// called exactly once per source, before any transport operation.
	Chain(src Source, pitch PitchNode, rev ReverbNode, eq EqNode) error
}

// Source is the transport surface of one decoded asset.
type Source interface {
	// DurationSeconds reports the decoded length.
	DurationSeconds() float64

	Start() error
	Stop() error

	// SetPlaybackRate applies immediately, including to in-progress
	// playback.
	SetPlaybackRate(ratio float64)

	SeekTo(seconds float64) error
	Position() float64
	IsRunning() bool

	// OutputSnapshot returns up to the given number of seconds of the
	// most recently rendered post-effects samples, oldest first.
	// Returns nil when nothing has been rendered yet.
	OutputSnapshot(seconds float64) []float64

	Close() error
}

// Node is an owned engine resource that must be released exactly once.
type Node interface {
	Dispose() error
}

// PitchNode shifts pitch by whole semitones without changing tempo.
type PitchNode interface {
	Node
	SetSemitones(semitones int) error
}

// ReverbNode applies convolution reverb. Changing the decay only takes
// audible effect after RegenerateImpulse rebuilds the impulse response.
type ReverbNode interface {
	Node
	SetDecaySeconds(seconds float64)

	// RegenerateImpulse rebuilds the impulse response for the current
	// decay value. It may run concurrently with rendering and with a
	// later regeneration superseding this one.
	RegenerateImpulse(ctx context.Context) error
}

// EqNode is a 3-band equalizer with per-band gain in whole dB.
type EqNode interface {
	Node
	SetGainDB(band Band, gainDB int) error
}
