package engine

import (
	"context"
	"sync"
	"time"
)

// MockEngine returns scripted sources and nodes for testing the control
// session without an audio device.
type MockEngine struct {
	DecodeErr     error
	PitchErr      error
	ReverbErr     error
	EqErr         error
	ChainErr      error
	SourceLengthS float64 // duration of decoded sources (default 120)

	mu      sync.Mutex
	sources []*MockSource
	pitches []*MockPitchNode
	reverbs []*MockReverbNode
	eqs     []*MockEqNode
}

func (m *MockEngine) Decode(ctx context.Context, name string) (Source, error) {
	if m.DecodeErr != nil {
		return nil, m.DecodeErr
	}
	length := m.SourceLengthS
	if length == 0 {
		length = 120
	}
	src := &MockSource{duration: length}
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
	return src, nil
}

func (m *MockEngine) NewPitchShiftNode(semitones int) (PitchNode, error) {
	if m.PitchErr != nil {
		return nil, m.PitchErr
	}
	n := &MockPitchNode{Semitones: semitones}
	m.mu.Lock()
	m.pitches = append(m.pitches, n)
	m.mu.Unlock()
	return n, nil
}

func (m *MockEngine) NewReverbNode(decaySeconds float64) (ReverbNode, error) {
	if m.ReverbErr != nil {
		return nil, m.ReverbErr
	}
	n := &MockReverbNode{Decay: decaySeconds}
	m.mu.Lock()
	m.reverbs = append(m.reverbs, n)
	m.mu.Unlock()
	return n, nil
}

func (m *MockEngine) NewEqNode(lowDB, midDB, highDB int) (EqNode, error) {
	if m.EqErr != nil {
		return nil, m.EqErr
	}
	n := &MockEqNode{Gains: map[Band]int{BandLow: lowDB, BandMid: midDB, BandHigh: highDB}}
	m.mu.Lock()
	m.eqs = append(m.eqs, n)
	m.mu.Unlock()
	return n, nil
}

func (m *MockEngine) Chain(src Source, pitch PitchNode, rev ReverbNode, eq EqNode) error {
	return m.ChainErr
}

// Source returns the i-th decoded source.
func (m *MockEngine) Source(i int) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sources[i]
}

// Pitch returns the i-th created pitch node.
func (m *MockEngine) Pitch(i int) *MockPitchNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pitches[i]
}

// Reverb returns the i-th created reverb node.
func (m *MockEngine) Reverb(i int) *MockReverbNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reverbs[i]
}

// Eq returns the i-th created EQ node.
func (m *MockEngine) Eq(i int) *MockEqNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eqs[i]
}

// NodeDisposeCounts returns the dispose call count of every node ever
// created, in creation order.
func (m *MockEngine) NodeDisposeCounts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, n := range m.pitches {
		out = append(out, n.disposeCalls())
	}
	for _, n := range m.reverbs {
		out = append(out, n.disposeCalls())
	}
	for _, n := range m.eqs {
		out = append(out, n.disposeCalls())
	}
	return out
}

// MockSource is a scripted transport. Tests drive the reported position
// with SetEnginePosition.
type MockSource struct {
	mu       sync.Mutex
	duration float64
	position float64
	rate     float64
	running  bool
	closed   bool

	StartCalls int
	StopCalls  int
	SeekCalls  int
	LastSeek   float64
}

func (s *MockSource) DurationSeconds() float64 { return s.duration }

func (s *MockSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StartCalls++
	s.running = true
	return nil
}

func (s *MockSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StopCalls++
	s.running = false
	return nil
}

func (s *MockSource) SetPlaybackRate(ratio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = ratio
}

func (s *MockSource) SeekTo(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SeekCalls++
	s.LastSeek = seconds
	s.position = seconds
	return nil
}

func (s *MockSource) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *MockSource) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *MockSource) OutputSnapshot(seconds float64) []float64 {
	n := int(seconds * 100)
	if n <= 0 {
		return nil
	}
	return make([]float64, n)
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.running = false
	return nil
}

// SetEnginePosition sets the position the transport reports to pollers.
func (s *MockSource) SetEnginePosition(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = seconds
}

// Rate returns the last playback rate applied to the transport.
func (s *MockSource) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Closed reports whether Close has been called.
func (s *MockSource) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type mockNode struct {
	mu       sync.Mutex
	Disposes int
}

func (n *mockNode) Dispose() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Disposes++
	return nil
}

func (n *mockNode) disposeCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Disposes
}

// MockPitchNode records the applied semitone values.
type MockPitchNode struct {
	mockNode
	Semitones int
	SetErr    error
}

func (n *MockPitchNode) SetSemitones(semitones int) error {
	if n.SetErr != nil {
		return n.SetErr
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Semitones = semitones
	return nil
}

// Applied returns the last semitone value pushed to the node.
func (n *MockPitchNode) Applied() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Semitones
}

// MockReverbNode records decay pushes and counts regenerations. An
// optional RegenDelay simulates slow impulse construction so tests can
// overlap regenerations.
type MockReverbNode struct {
	mockNode
	Decay      float64
	RegenErr   error
	RegenDelay time.Duration

	regens       int
	regenDecays  []float64
	appliedDecay float64
}

func (n *MockReverbNode) SetDecaySeconds(seconds float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Decay = seconds
}

func (n *MockReverbNode) RegenerateImpulse(ctx context.Context) error {
	if n.RegenDelay > 0 {
		select {
		case <-time.After(n.RegenDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.RegenErr != nil {
		return n.RegenErr
	}
	n.regens++
	n.regenDecays = append(n.regenDecays, n.Decay)
	n.appliedDecay = n.Decay
	return nil
}

// SetRegenErr scripts the outcome of subsequent regenerations. It may
// be called while the regeneration worker is running.
func (n *MockReverbNode) SetRegenErr(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.RegenErr = err
}

// Regenerations returns how many impulse regenerations completed.
func (n *MockReverbNode) Regenerations() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.regens
}

// AppliedDecay returns the decay value of the last completed regeneration.
func (n *MockReverbNode) AppliedDecay() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.appliedDecay
}

// MockEqNode records per-band gains.
type MockEqNode struct {
	mockNode
	Gains  map[Band]int
	SetErr error
}

func (n *MockEqNode) SetGainDB(band Band, gainDB int) error {
	if n.SetErr != nil {
		return n.SetErr
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Gains[band] = gainDB
	return nil
}

// Gain returns the last gain pushed for a band.
func (n *MockEqNode) Gain(band Band) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Gains[band]
}

var (
	_ Engine     = (*MockEngine)(nil)
	_ Source     = (*MockSource)(nil)
	_ PitchNode  = (*MockPitchNode)(nil)
	_ ReverbNode = (*MockReverbNode)(nil)
	_ EqNode     = (*MockEqNode)(nil)
)
