package session

import "fmt"

// Labels are the human-readable descriptions of the numeric control
// state. They are derived on every read and carry no state of their own.
type Labels struct {
	Rate   string `json:"rate"`
	Pitch  string `json:"pitch"`
	Reverb string `json:"reverb"`
	EQLow  string `json:"eqLow"`
	EQMid  string `json:"eqMid"`
	EQHigh string `json:"eqHigh"`
}

// DeriveLabels maps a state snapshot to its descriptive labels.
func DeriveLabels(st State) Labels {
	return Labels{
		Rate:   RateLabel(st.PlaybackRate),
		Pitch:  PitchLabel(st.PitchSemitones),
		Reverb: ReverbLabel(st.ReverbDecaySeconds),
		EQLow:  EQLabel(st.EQLowDB),
		EQMid:  EQLabel(st.EQMidDB),
		EQHigh: EQLabel(st.EQHighDB),
	}
}

// RateLabel categorizes a playback rate.
func RateLabel(rate float64) string {
	switch {
	case rate < 0.8:
		return "Slow"
	case rate > 1.2:
		return "Fast"
	default:
		return "Normal"
	}
}

// PitchLabel describes a pitch shift in semitones.
func PitchLabel(semitones int) string {
	switch {
	case semitones > 0:
		return fmt.Sprintf("+%d semitones (higher)", semitones)
	case semitones < 0:
		return fmt.Sprintf("%d semitones (lower)", semitones)
	default:
		return "Original"
	}
}

// ReverbLabel categorizes a reverb decay time in seconds.
func ReverbLabel(decaySeconds float64) string {
	switch {
	case decaySeconds < 0.5:
		return "Dry"
	case decaySeconds < 1.5:
		return "Medium Room"
	case decaySeconds < 3:
		return "Large Hall"
	default:
		return "Cathedral"
	}
}

// EQLabel describes a single equalizer band gain in dB.
func EQLabel(gainDB int) string {
	switch {
	case gainDB > 0:
		return fmt.Sprintf("Boost +%ddB", gainDB)
	case gainDB < 0:
		return fmt.Sprintf("Cut %ddB", -gainDB)
	default:
		return "Neutral"
	}
}
