package session

import "testing"

func TestRateLabel(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{0.5, "Slow"},
		{0.79, "Slow"},
		{0.8, "Normal"},
		{1.0, "Normal"},
		{1.2, "Normal"},
		{1.21, "Fast"},
		{2.0, "Fast"},
	}
	for _, tc := range cases {
		if got := RateLabel(tc.rate); got != tc.want {
			t.Errorf("RateLabel(%g) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}

func TestPitchLabel(t *testing.T) {
	cases := []struct {
		semitones int
		want      string
	}{
		{0, "Original"},
		{3, "+3 semitones (higher)"},
		{12, "+12 semitones (higher)"},
		{-3, "-3 semitones (lower)"},
		{-12, "-12 semitones (lower)"},
	}
	for _, tc := range cases {
		if got := PitchLabel(tc.semitones); got != tc.want {
			t.Errorf("PitchLabel(%d) = %q, want %q", tc.semitones, got, tc.want)
		}
	}
}

func TestReverbLabel(t *testing.T) {
	cases := []struct {
		decay float64
		want  string
	}{
		{0, "Dry"},
		{0.3, "Dry"},
		{0.5, "Medium Room"},
		{1.49, "Medium Room"},
		{1.5, "Large Hall"},
		{2.9, "Large Hall"},
		{3, "Cathedral"},
		{4, "Cathedral"},
		{5, "Cathedral"},
	}
	for _, tc := range cases {
		if got := ReverbLabel(tc.decay); got != tc.want {
			t.Errorf("ReverbLabel(%g) = %q, want %q", tc.decay, got, tc.want)
		}
	}
}

func TestEQLabel(t *testing.T) {
	cases := []struct {
		gain int
		want string
	}{
		{0, "Neutral"},
		{6, "Boost +6dB"},
		{30, "Boost +30dB"},
		{-5, "Cut 5dB"},
		{-30, "Cut 30dB"},
	}
	for _, tc := range cases {
		if got := EQLabel(tc.gain); got != tc.want {
			t.Errorf("EQLabel(%d) = %q, want %q", tc.gain, got, tc.want)
		}
	}
}

func TestDeriveLabels(t *testing.T) {
	st := defaultState()
	labels := DeriveLabels(st)
	if labels.Rate != "Normal" || labels.Pitch != "Original" ||
		labels.Reverb != "Large Hall" || labels.EQLow != "Neutral" {
		t.Errorf("unexpected default labels: %+v", labels)
	}
}
