package handler

import (
	"net/http"
	"strconv"

	"github.com/soundbench/soundbench/internal/analyzer"
)

const spectrumWindowSeconds = 1.0

// AnalysisWaveform handles GET .../analysis/waveform?points=N: a peak
// envelope of the most recently rendered post-effects output.
func (h *Handlers) AnalysisWaveform(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	points := analyzer.DefaultWaveformPoints
	if p := r.URL.Query().Get("points"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "points must be a positive integer")
			return
		}
		points = n
	}

	peaks := analyzer.WaveformPeaks(sess.OutputSnapshot(spectrumWindowSeconds*2), points)
	if peaks == nil {
		peaks = []float64{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"peaks": peaks})
}

// AnalysisSpectrum handles GET .../analysis/spectrum: the magnitude
// spectrum of the last second of processed output. Bins are empty until
// enough output has been rendered.
func (h *Handlers) AnalysisSpectrum(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	bins := analyzer.MagnitudeSpectrumDB(sess.OutputSnapshot(spectrumWindowSeconds), h.sampleRate)
	if bins == nil {
		bins = []analyzer.Bin{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sampleRate": h.sampleRate,
		"fftSize":    analyzer.SpectrumFFTSize,
		"bins":       bins,
	})
}
