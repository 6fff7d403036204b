package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soundbench/soundbench/internal/analyzer"
	"github.com/soundbench/soundbench/internal/probe"
)

// Library handles GET /v1/library.
func (h *Handlers) Library(w http.ResponseWriter, r *http.Request) {
	assets, err := probe.ScanDir(h.assetsDir, h.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "library scan failed")
		return
	}
	if assets == nil {
		assets = []probe.Asset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

// LibraryWaveform handles GET /v1/library/waveform?file=...&points=N.
// Only WAV files support a full-asset peak envelope.
func (h *Handlers) LibraryWaveform(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")
	if name == "" {
		writeError(w, http.StatusBadRequest, "file parameter is required")
		return
	}
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}
	if strings.ToLower(filepath.Ext(name)) != ".wav" {
		writeError(w, http.StatusUnprocessableEntity, "waveform preview requires a wav file")
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

	peaks, err := probe.WavPeaks(filepath.Join(h.assetsDir, name), points)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unreadable wav file")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"file": name, "peaks": peaks})
}
