package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soundbench_active_sessions",
		Help: "Number of active playback sessions",
	})
	PlayingSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soundbench_playing_sessions",
		Help: "Number of sessions currently playing",
	})
)

// Counters
var (
	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundbench_sessions_created_total",
		Help: "Total sessions created",
	})
	SessionsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundbench_sessions_rejected_total",
		Help: "Sessions rejected due to capacity limit",
	})
	DecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundbench_decode_errors_total",
		Help: "Total asset decode failures",
	})
	ParamUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbench_param_updates_total",
		Help: "Total control parameter updates by parameter",
	}, []string{"param"})
	SeekCommitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundbench_seek_commits_total",
		Help: "Total seek positions committed to the engine",
	})
	ImpulseRegenerationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundbench_impulse_regenerations_total",
		Help: "Total reverb impulse regenerations completed",
	})
	ImpulseRegenSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundbench_impulse_regen_skipped_total",
		Help: "Reverb decay values superseded before their regeneration ran",
	})
	EngineOpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbench_engine_op_errors_total",
		Help: "Total engine operation failures by operation",
	}, []string{"op"})
)

// Histograms
var (
	DecodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "soundbench_decode_duration_ms",
		Help:    "Asset decode and chain construction duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
)
