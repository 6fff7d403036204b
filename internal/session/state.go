package session

// Declared ranges for every control parameter. Setters clamp to these,
// they never reject.
const (
	MinPlaybackRate = 0.5
	MaxPlaybackRate = 2.0

	MinPitchSemitones = -12
	MaxPitchSemitones = 12

	MinReverbDecaySeconds = 0.0
	MaxReverbDecaySeconds = 5.0

	MinEQGainDB = -30
	MaxEQGainDB = 30

	DefaultPlaybackRate       = 1.0
	DefaultPitchSemitones     = 0
	DefaultReverbDecaySeconds = 1.5
	DefaultEQGainDB           = 0
)

// State is the canonical control state of one playback session. It is
// owned exclusively by the session and mutated only through session
// operations; callers receive copies.
type State struct {
	Ready   bool `json:"ready"`
	Playing bool `json:"playing"`

	PlaybackRate       float64 `json:"playbackRate"`
	PitchSemitones     int     `json:"pitchSemitones"`
	ReverbDecaySeconds float64 `json:"reverbDecaySeconds"`
	EQLowDB            int     `json:"eqLowDb"`
	EQMidDB            int     `json:"eqMidDb"`
	EQHighDB           int     `json:"eqHighDb"`

	DurationSeconds float64 `json:"durationSeconds"`
	PositionSeconds float64 `json:"positionSeconds"`
	Seeking         bool    `json:"seeking"`
}

// defaultState returns the state a session starts with: not ready, not
// playing, every parameter at its declared default.
func defaultState() State {
	return State{
		PlaybackRate:       DefaultPlaybackRate,
		PitchSemitones:     DefaultPitchSemitones,
		ReverbDecaySeconds: DefaultReverbDecaySeconds,
		EQLowDB:            DefaultEQGainDB,
		EQMidDB:            DefaultEQGainDB,
		EQHighDB:           DefaultEQGainDB,
	}
}

func clampFloat(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
