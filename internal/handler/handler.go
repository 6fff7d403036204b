// Package handler exposes the studio over HTTP for the browser UI.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/soundbench/soundbench/internal/middleware"
	"github.com/soundbench/soundbench/internal/studio"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	studio     *studio.Studio
	assetsDir  string
	sampleRate int
	logger     *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(st *studio.Studio, assetsDir string, sampleRate int, logger *zap.Logger) *Handlers {
	return &Handlers{
		studio:     st,
		assetsDir:  assetsDir,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Router builds the chi router with the full middleware stack.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(h.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/library", h.Library)
		r.Get("/library/waveform", h.LibraryWaveform)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Post("/transport/toggle", h.TransportToggle)
				r.Post("/transport/seek", h.TransportSeek)
				r.Put("/params/{param}", h.PutParam)
				r.Put("/params/eq/{band}", h.PutEQGain)
				r.Get("/analysis/waveform", h.AnalysisWaveform)
				r.Get("/analysis/spectrum", h.AnalysisSpectrum)
			})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
