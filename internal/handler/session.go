package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soundbench/soundbench/internal/engine"
	"github.com/soundbench/soundbench/internal/session"
	"github.com/soundbench/soundbench/internal/studio"
)

type sessionResponse struct {
	SessionID string         `json:"sessionId"`
	State     session.State  `json:"state"`
	Labels    session.Labels `json:"labels"`
}

func snapshot(sess *session.Session) sessionResponse {
	return sessionResponse{
		SessionID: sess.ID,
		State:     sess.State(),
		Labels:    sess.Labels(),
	}
}

// lookup resolves {sessionId} or writes a 404.
func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "sessionId")
	sess, ok := h.studio.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil
	}
	return sess
}

// CreateSession handles POST /v1/sessions. Decoding runs synchronously:
// the response is either a ready session or the surfaced init error.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.File == "" {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}

	sess, err := h.studio.Create(r.Context(), req.File)
	if err != nil {
		if errors.Is(err, studio.ErrTooManySessions) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, snapshot(sess))
}

// GetSession handles GET /v1/sessions/{sessionId}.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// DeleteSession handles DELETE /v1/sessions/{sessionId}.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.studio.Delete(chi.URLParam(r, "sessionId")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransportToggle handles POST /v1/sessions/{sessionId}/transport/toggle.
func (h *Handlers) TransportToggle(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}
	if err := sess.TogglePlay(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// TransportSeek handles POST /v1/sessions/{sessionId}/transport/seek.
// The three phases mirror a UI drag gesture: begin holds position
// updates, update moves the canonical position only, commit pushes the
// final position to the engine.
func (h *Handlers) TransportSeek(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Phase    string   `json:"phase"`
		Position *float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Phase {
	case "begin":
		sess.BeginSeek()
		if req.Position != nil {
			sess.SeekTo(*req.Position)
		}
	case "update":
		if req.Position == nil {
			writeError(w, http.StatusBadRequest, "position is required for update")
			return
		}
		sess.SeekTo(*req.Position)
	case "commit":
		if req.Position != nil {
			sess.SeekTo(*req.Position)
		}
		if err := sess.EndSeek(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "phase must be begin, update or commit")
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// PutParam handles PUT /v1/sessions/{sessionId}/params/{param} for the
// rate, pitch and reverb parameters. Out-of-range values are clamped;
// the response echoes what was applied.
func (h *Handlers) PutParam(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch chi.URLParam(r, "param") {
	case "rate":
		sess.SetPlaybackRate(req.Value)
	case "pitch":
		if err := sess.SetPitch(int(math.Round(req.Value))); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case "reverb":
		sess.SetReverbDecay(req.Value)
	default:
		writeError(w, http.StatusNotFound, "unknown parameter")
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// PutEQGain handles PUT /v1/sessions/{sessionId}/params/eq/{band}.
func (h *Handlers) PutEQGain(w http.ResponseWriter, r *http.Request) {
	sess := h.lookup(w, r)
	if sess == nil {
		return
	}

	var band engine.Band
	switch chi.URLParam(r, "band") {
	case "low":
		band = engine.BandLow
	case "mid":
		band = engine.BandMid
	case "high":
		band = engine.BandHigh
	default:
		writeError(w, http.StatusNotFound, "unknown eq band")
		return
	}

	var req struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := sess.SetEQGain(band, int(math.Round(req.Value))); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}
