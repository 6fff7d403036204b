// Package studio manages the registry of live control sessions.
package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soundbench/soundbench/internal/engine"
	"github.com/soundbench/soundbench/internal/metrics"
	"github.com/soundbench/soundbench/internal/session"
)

// ErrTooManySessions is returned when the configured session cap is hit.
var ErrTooManySessions = errors.New("session limit reached")

// Studio owns all live sessions and hands them a shared engine.
type Studio struct {
	eng          engine.Engine
	logger       *zap.Logger
	pollInterval time.Duration
	maxSessions  int

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New creates an empty studio.
func New(eng engine.Engine, maxSessions int, pollInterval time.Duration, logger *zap.Logger) *Studio {
	return &Studio{
		eng:          eng,
		logger:       logger,
		pollInterval: pollInterval,
		maxSessions:  maxSessions,
		sessions:     make(map[string]*session.Session),
	}
}

// Count returns the current number of registered sessions.
func (st *Studio) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Create registers a new session for the named asset and initializes
// it. The session is registered before the (potentially slow) decode so
// the cap holds under concurrent creates; a failed init unregisters it
// again.
func (st *Studio) Create(ctx context.Context, asset string) (*session.Session, error) {
	id := uuid.NewString()
	sess := session.New(id, st.eng, st.logger, st.pollInterval)

	st.mu.Lock()
	if len(st.sessions) >= st.maxSessions {
		st.mu.Unlock()
		metrics.SessionsRejectedTotal.Inc()
		return nil, ErrTooManySessions
	}
	st.sessions[id] = sess
	st.mu.Unlock()
	metrics.ActiveSessions.Inc()

	if err := sess.Init(ctx, asset); err != nil {
		st.remove(id)
		return nil, err
	}

	metrics.SessionsCreatedTotal.Inc()
	st.logger.Info("session created", zap.String("session", id), zap.String("asset", asset))
	return sess, nil
}

// Get returns the session with the given id, or false.
func (st *Studio) Get(id string) (*session.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

// Delete tears down a session and removes it from the registry.
// Returns false when the id is unknown.
func (st *Studio) Delete(id string) bool {
	sess := st.remove(id)
	if sess == nil {
		return false
	}
	if err := sess.Close(); err != nil {
		st.logger.Warn("session teardown", zap.String("session", id), zap.Error(err))
	}
	st.logger.Info("session deleted", zap.String("session", id))
	return true
}

func (st *Studio) remove(id string) *session.Session {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if !ok {
		return nil
	}
	metrics.ActiveSessions.Dec()
	return sess
}

// Shutdown closes every session.
func (st *Studio) Shutdown() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*session.Session)
	st.mu.Unlock()

	for id, sess := range sessions {
		if err := sess.Close(); err != nil {
			st.logger.Warn("session teardown", zap.String("session", id), zap.Error(err))
		}
	}
	metrics.ActiveSessions.Set(0)
	st.logger.Info("studio shutdown complete", zap.Int("closed", len(sessions)))
}
