// Package session implements the playback/effects control session: the
// canonical control state, its synchronization with the audio engine's
// node graph, and the position polling loop.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soundbench/soundbench/internal/engine"
	"github.com/soundbench/soundbench/internal/metrics"
)

// DefaultPollInterval approximates one display refresh at 60Hz.
const DefaultPollInterval = 16 * time.Millisecond

// Session owns the canonical control state for one audio asset and the
// engine resources that realize it. All methods are safe for concurrent
// use.
type Session struct {
	ID string

	eng          engine.Engine
	logger       *zap.Logger
	pollInterval time.Duration

	mu     sync.Mutex
	st     State
	src    engine.Source
	pitch  engine.PitchNode
	reverb engine.ReverbNode
	eq     engine.EqNode

	pollStop chan struct{} // non-nil while the polling loop is armed

	regenActive  bool // an impulse regeneration is in flight
	regenPending bool // a newer decay value arrived during regeneration

	closed bool
	wg     sync.WaitGroup
}

// New creates a session with default state. The session is not usable
// for playback until Init succeeds.
func New(id string, eng engine.Engine, logger *zap.Logger, pollInterval time.Duration) *Session {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Session{
		ID:           id,
		eng:          eng,
		logger:       logger.With(zap.String("session", id)),
		pollInterval: pollInterval,
		st:           defaultState(),
	}
}

// Init decodes the asset and constructs the processing chain
// source → pitch → reverb → EQ → output, awaiting the initial impulse
// generation. On failure the session stays not-ready and every engine
// resource created so far is released; the error is returned to the
// caller.
func (s *Session) Init(ctx context.Context, asset string) error {
	start := time.Now()

	src, err := s.eng.Decode(ctx, asset)
	if err != nil {
		metrics.DecodeErrorsTotal.Inc()
		return fmt.Errorf("decode %q: %w", asset, err)
	}

	s.mu.Lock()
	st := s.st
	s.mu.Unlock()

	pitch, err := s.eng.NewPitchShiftNode(st.PitchSemitones)
	if err != nil {
		s.releaseInitFailure(src, nil, nil, nil)
		return fmt.Errorf("create pitch node: %w", err)
	}
	rev, err := s.eng.NewReverbNode(st.ReverbDecaySeconds)
	if err != nil {
		s.releaseInitFailure(src, pitch, nil, nil)
		return fmt.Errorf("create reverb node: %w", err)
	}
	eq, err := s.eng.NewEqNode(st.EQLowDB, st.EQMidDB, st.EQHighDB)
	if err != nil {
		s.releaseInitFailure(src, pitch, rev, nil)
		return fmt.Errorf("create eq node: %w", err)
	}

	if err := s.eng.Chain(src, pitch, rev, eq); err != nil {
		s.releaseInitFailure(src, pitch, rev, eq)
		return fmt.Errorf("chain nodes: %w", err)
	}

	// Reverb is silent until its impulse response exists; await it.
	if err := rev.RegenerateImpulse(ctx); err != nil {
		s.releaseInitFailure(src, pitch, rev, eq)
		return fmt.Errorf("generate impulse: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.releaseInitFailure(src, pitch, rev, eq)
		return engine.ErrDisposed
	}
	s.src = src
	s.pitch = pitch
	s.reverb = rev
	s.eq = eq
	s.st.Ready = true
	s.st.DurationSeconds = src.DurationSeconds()
	duration := s.st.DurationSeconds
	s.mu.Unlock()

	metrics.DecodeDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	s.logger.Info("session ready",
		zap.String("asset", asset),
		zap.Float64("durationSec", duration),
		zap.Duration("initTime", time.Since(start)),
	)
	return nil
}

// releaseInitFailure tears down partially constructed engine resources
// after a failed Init. Dispose errors are logged, not surfaced; the
// Init error itself is what the caller needs.
func (s *Session) releaseInitFailure(src engine.Source, pitch engine.PitchNode, rev engine.ReverbNode, eq engine.EqNode) {
	if eq != nil {
		if err := eq.Dispose(); err != nil {
			s.logger.Warn("dispose eq node", zap.Error(err))
		}
	}
	if rev != nil {
		if err := rev.Dispose(); err != nil {
			s.logger.Warn("dispose reverb node", zap.Error(err))
		}
	}
	if pitch != nil {
		if err := pitch.Dispose(); err != nil {
			s.logger.Warn("dispose pitch node", zap.Error(err))
		}
	}
	if src != nil {
		if err := src.Close(); err != nil {
			s.logger.Warn("close source", zap.Error(err))
		}
	}
}

// State returns a copy of the canonical control state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Labels returns the derived descriptive labels for the current state.
func (s *Session) Labels() Labels {
	return DeriveLabels(s.State())
}

// TogglePlay starts playback if stopped and stops it if playing. The
// current playback rate is applied to the source before each start.
// It is a no-op before the session is ready.
func (s *Session) TogglePlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.st.Ready || s.closed {
		return nil
	}

	if s.st.Playing {
		if err := s.src.Stop(); err != nil {
			metrics.EngineOpErrorsTotal.WithLabelValues("stop").Inc()
			return fmt.Errorf("stop transport: %w", err)
		}
		s.st.Playing = false
		metrics.PlayingSessions.Dec()
		s.stopPollingLocked()
		return nil
	}

	s.src.SetPlaybackRate(s.st.PlaybackRate)
	if err := s.src.Start(); err != nil {
		metrics.EngineOpErrorsTotal.WithLabelValues("start").Inc()
		return fmt.Errorf("start transport: %w", err)
	}
	s.st.Playing = true
	metrics.PlayingSessions.Inc()
	s.startPollingLocked()
	return nil
}

// BeginSeek marks the start of an interactive seek gesture. While the
// gesture is held, the polling loop leaves the position alone.
func (s *Session) BeginSeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.Ready || s.closed {
		return
	}
	s.st.Seeking = true
}

// SeekTo updates the canonical position immediately for responsive UI
// feedback. Nothing is pushed to the engine until EndSeek.
func (s *Session) SeekTo(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.Ready || s.closed {
		return
	}
	s.st.PositionSeconds = clampFloat(seconds, 0, s.st.DurationSeconds)
}

// EndSeek finishes the gesture and commits the last position to the
// engine transport exactly once.
func (s *Session) EndSeek() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.st.Ready || s.closed || !s.st.Seeking {
		return nil
	}
	s.st.Seeking = false
	if err := s.src.SeekTo(s.st.PositionSeconds); err != nil {
		metrics.EngineOpErrorsTotal.WithLabelValues("seek").Inc()
		return fmt.Errorf("commit seek: %w", err)
	}
	metrics.SeekCommitsTotal.Inc()
	return nil
}

// SetPlaybackRate clamps to [0.5, 2.0] and applies the new rate to the
// engine immediately, including during playback.
func (s *Session) SetPlaybackRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.PlaybackRate = clampFloat(rate, MinPlaybackRate, MaxPlaybackRate)
	metrics.ParamUpdatesTotal.WithLabelValues("rate").Inc()
	if s.src != nil && !s.closed {
		s.src.SetPlaybackRate(s.st.PlaybackRate)
	}
}

// SetPitch clamps to [-12, 12] semitones and pushes the value to the
// pitch node.
func (s *Session) SetPitch(semitones int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.PitchSemitones = clampInt(semitones, MinPitchSemitones, MaxPitchSemitones)
	metrics.ParamUpdatesTotal.WithLabelValues("pitch").Inc()
	if s.pitch == nil || s.closed {
		return nil
	}
	if err := s.pitch.SetSemitones(s.st.PitchSemitones); err != nil {
		metrics.EngineOpErrorsTotal.WithLabelValues("pitch").Inc()
		return fmt.Errorf("set pitch: %w", err)
	}
	return nil
}

// SetReverbDecay clamps to [0, 5] seconds, pushes the decay to the
// reverb node and schedules an asynchronous impulse regeneration.
// Overlapping regenerations are serialized: intermediate decay values
// may never be rendered, but the final value always is.
func (s *Session) SetReverbDecay(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ReverbDecaySeconds = clampFloat(seconds, MinReverbDecaySeconds, MaxReverbDecaySeconds)
	metrics.ParamUpdatesTotal.WithLabelValues("reverb").Inc()
	if s.reverb == nil || s.closed {
		return
	}
	s.reverb.SetDecaySeconds(s.st.ReverbDecaySeconds)

	if s.regenActive {
		if s.regenPending {
			metrics.ImpulseRegenSkippedTotal.Inc()
		}
		s.regenPending = true
		return
	}
	s.regenActive = true
	s.wg.Add(1)
	go s.regenerateLoop(s.reverb)
}

// regenerateLoop runs impulse regenerations one at a time until no
// newer decay value is pending. The node reads its current decay on
// each pass, so the last value wins.
func (s *Session) regenerateLoop(rev engine.ReverbNode) {
	defer s.wg.Done()
	for {
		err := rev.RegenerateImpulse(context.Background())

		s.mu.Lock()
		if err != nil {
			s.logger.Warn("impulse regeneration failed", zap.Error(err))
			metrics.EngineOpErrorsTotal.WithLabelValues("regenerate").Inc()
		} else {
			metrics.ImpulseRegenerationsTotal.Inc()
		}
		if !s.regenPending || s.closed {
			s.regenActive = false
			s.mu.Unlock()
			return
		}
		s.regenPending = false
		s.mu.Unlock()
	}
}

// SetEQGain clamps to [-30, 30] dB and pushes the gain to the EQ node.
func (s *Session) SetEQGain(band engine.Band, gainDB int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gainDB = clampInt(gainDB, MinEQGainDB, MaxEQGainDB)
	switch band {
	case engine.BandLow:
		s.st.EQLowDB = gainDB
	case engine.BandMid:
		s.st.EQMidDB = gainDB
	case engine.BandHigh:
		s.st.EQHighDB = gainDB
	default:
		return fmt.Errorf("unknown eq band %d", band)
	}
	metrics.ParamUpdatesTotal.WithLabelValues("eq_" + band.String()).Inc()
	if s.eq == nil || s.closed {
		return nil
	}
	if err := s.eq.SetGainDB(band, gainDB); err != nil {
		metrics.EngineOpErrorsTotal.WithLabelValues("eq").Inc()
		return fmt.Errorf("set eq %s: %w", band, err)
	}
	return nil
}

// OutputSnapshot returns up to the given number of seconds of recently
// rendered post-effects samples, or nil before the session is ready.
func (s *Session) OutputSnapshot(seconds float64) []float64 {
	s.mu.Lock()
	src := s.src
	s.mu.Unlock()
	if src == nil {
		return nil
	}
	return src.OutputSnapshot(seconds)
}

// startPollingLocked arms the position polling loop. Caller holds s.mu.
func (s *Session) startPollingLocked() {
	if s.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	s.pollStop = stop
	s.wg.Add(1)
	go s.pollLoop(stop)
}

// stopPollingLocked cancels the polling loop. Caller holds s.mu.
func (s *Session) stopPollingLocked() {
	if s.pollStop == nil {
		return
	}
	close(s.pollStop)
	s.pollStop = nil
}

// pollLoop samples the engine position once per tick while armed. A
// tick that races with cancellation re-checks the stop channel under
// the state lock, so no write can land after teardown. Writes are
// skipped while the transport is idle or a seek gesture is held.
func (s *Session) pollLoop(stop <-chan struct{}) {
	defer s.wg.Done()
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.mu.Lock()
			select {
			case <-stop:
				s.mu.Unlock()
				return
			default:
			}
			if !s.st.Seeking && s.src.IsRunning() {
				s.st.PositionSeconds = clampFloat(s.src.Position(), 0, s.st.DurationSeconds)
			}
			s.mu.Unlock()
		}
	}
}

// Close tears the session down: cancels the polling loop, waits for any
// in-flight impulse regeneration, and disposes every owned engine
// resource exactly once. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.st.Playing {
		s.st.Playing = false
		metrics.PlayingSessions.Dec()
		if err := s.src.Stop(); err != nil {
			s.logger.Warn("stop transport on close", zap.Error(err))
		}
	}
	s.stopPollingLocked()
	src, pitch, rev, eq := s.src, s.pitch, s.reverb, s.eq
	s.src, s.pitch, s.reverb, s.eq = nil, nil, nil, nil
	s.mu.Unlock()

	s.wg.Wait()

	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		s.logger.Warn("teardown error", zap.String("resource", what), zap.Error(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", what, err)
		}
	}
	if eq != nil {
		record("eq", eq.Dispose())
	}
	if rev != nil {
		record("reverb", rev.Dispose())
	}
	if pitch != nil {
		record("pitch", pitch.Dispose())
	}
	if src != nil {
		record("source", src.Close())
	}

	s.logger.Info("session closed")
	return firstErr
}
