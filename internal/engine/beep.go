package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"

	"github.com/soundbench/soundbench/internal/ringbuffer"
)

const (
	// resampleQuality is beep's sinc interpolation quality for both the
	// sample-rate conversion and the live playback-rate resampler.
	resampleQuality = 4

	// tapSeconds is how much rendered output the analysis tap retains.
	tapSeconds = 2.0

	toneDurationSeconds = 30.0
	toneAmplitude       = 0.4
)

// BeepEngine is the production Engine: beep decoders and speaker for
// decode/output transport, algo-dsp processors for the effect nodes.
// A single speaker device is shared by all sources and initialized on
// first playback.
type BeepEngine struct {
	logger     *zap.Logger
	assetsDir  string
	sampleRate beep.SampleRate
	bufferLen  time.Duration

	speakerOnce sync.Once
	speakerErr  error
}

// NewBeepEngine creates an engine rendering at the given sample rate.
// bufferLen is the speaker buffer length; 100ms is a sane default.
func NewBeepEngine(assetsDir string, sampleRate int, bufferLen time.Duration, logger *zap.Logger) *BeepEngine {
	return &BeepEngine{
		logger:     logger,
		assetsDir:  assetsDir,
		sampleRate: beep.SampleRate(sampleRate),
		bufferLen:  bufferLen,
	}
}

func (e *BeepEngine) initSpeaker() error {
	e.speakerOnce.Do(func() {
		e.speakerErr = speaker.Init(e.sampleRate, e.sampleRate.N(e.bufferLen))
	})
	if e.speakerErr != nil {
		return fmt.Errorf("init speaker: %w", e.speakerErr)
	}
	return nil
}

// Decode opens the named asset from the assets directory and decodes it
// by extension (.wav, .mp3, .ogg). The special name "tone:<freqHz>"
// yields a generated 30-second test tone.
func (e *BeepEngine) Decode(ctx context.Context, name string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if freqStr, ok := strings.CutPrefix(name, "tone:"); ok {
		freq, err := strconv.ParseFloat(freqStr, 64)
		if err != nil || freq <= 0 || freq > float64(e.sampleRate)/2 {
			return nil, fmt.Errorf("invalid tone frequency %q", freqStr)
		}
		tone := newToneStreamer(freq, e.sampleRate, toneDurationSeconds)
		return &beepSource{
			eng:      e,
			logger:   e.logger.With(zap.String("asset", name)),
			seeker:   tone,
			srcRate:  e.sampleRate,
			duration: toneDurationSeconds,
		}, nil
	}

	path, err := e.assetPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%q: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}

	return &beepSource{
		eng:      e,
		logger:   e.logger.With(zap.String("asset", name)),
		seeker:   streamer,
		closer:   streamer,
		srcRate:  format.SampleRate,
		duration: float64(streamer.Len()) / float64(format.SampleRate),
	}, nil
}

// assetPath resolves an asset name inside the assets directory and
// rejects anything that could escape it.
func (e *BeepEngine) assetPath(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return filepath.Join(e.assetsDir, filepath.Clean(name)), nil
}

// NewPitchShiftNode creates a WSOLA pitch shifter at the engine rate.
func (e *BeepEngine) NewPitchShiftNode(semitones int) (PitchNode, error) {
	return newPitchShiftNode(float64(e.sampleRate), semitones)
}

// NewReverbNode creates a convolution reverb node. The node is dry
// until its first RegenerateImpulse completes.
func (e *BeepEngine) NewReverbNode(decaySeconds float64) (ReverbNode, error) {
	return newReverbNode(float64(e.sampleRate), decaySeconds), nil
}

// NewEqNode creates a 3-band equalizer (low shelf, mid peak, high shelf).
func (e *BeepEngine) NewEqNode(lowDB, midDB, highDB int) (EqNode, error) {
	return newEqNode(float64(e.sampleRate), lowDB, midDB, highDB)
}

// Chain wires source → pitch → reverb → eq → output. The decoded stream
// is converted to the engine rate first, the processed signal feeds the
// live playback-rate resampler, and a pause control sits last so the
// source enters the speaker mixer silent.
func (e *BeepEngine) Chain(src Source, p PitchNode, r ReverbNode, q EqNode) error {
	bs, ok := src.(*beepSource)
	if !ok {
		return fmt.Errorf("source was not created by this engine")
	}
	pn, ok := p.(*pitchShiftNode)
	if !ok {
		return fmt.Errorf("pitch node was not created by this engine")
	}
	rn, ok := r.(*reverbNode)
	if !ok {
		return fmt.Errorf("reverb node was not created by this engine")
	}
	qn, ok := q.(*eqNode)
	if !ok {
		return fmt.Errorf("eq node was not created by this engine")
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.chained {
		return fmt.Errorf("source already chained")
	}

	var stream beep.Streamer = bs.seeker
	if bs.srcRate != e.sampleRate {
		stream = beep.Resample(resampleQuality, bs.srcRate, e.sampleRate, stream)
	}

	tap := ringbuffer.New(tapSeconds, int(e.sampleRate))
	proc := &effectsStreamer{
		src:    stream,
		pitch:  pn,
		reverb: rn,
		eq:     qn,
		tap:    tap,
	}
	bs.rate = beep.ResampleRatio(resampleQuality, 1.0, proc)
	bs.ctrl = &beep.Ctrl{Streamer: bs.rate, Paused: true}
	bs.tap = tap
	bs.chained = true
	return nil
}

// beepSource is the transport for one decoded asset. Everything the
// speaker's render goroutine can touch is mutated under speaker.Lock;
// the lifecycle flags get their own mutex because control calls and
// teardown may arrive on different goroutines.
type beepSource struct {
	eng    *BeepEngine
	logger *zap.Logger

	seeker   beep.StreamSeeker
	closer   interface{ Close() error } // nil for generated sources
	srcRate  beep.SampleRate
	duration float64

	mu      sync.Mutex
	chained bool
	rate    *beep.Resampler
	ctrl    *beep.Ctrl
	tap     *ringbuffer.Buffer
	started bool // the ctrl has been handed to the speaker mixer
	closed  bool
}

func (s *beepSource) DurationSeconds() float64 { return s.duration }

func (s *beepSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisposed
	}
	if !s.chained {
		return ErrNotChained
	}
	if err := s.eng.initSpeaker(); err != nil {
		return err
	}
	if !s.started {
		s.started = true
		speaker.Play(s.ctrl)
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (s *beepSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisposed
	}
	if !s.chained {
		return ErrNotChained
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (s *beepSource) SetPlaybackRate(ratio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.chained {
		return
	}
	speaker.Lock()
	s.rate.SetRatio(ratio)
	speaker.Unlock()
}

func (s *beepSource) SeekTo(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisposed
	}
	n := int(seconds * float64(s.srcRate))
	if n < 0 {
		n = 0
	}
	if max := s.seeker.Len() - 1; n > max {
		n = max
	}
	speaker.Lock()
	err := s.seeker.Seek(n)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek to %fs: %w", seconds, err)
	}
	return nil
}

func (s *beepSource) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	speaker.Lock()
	p := s.seeker.Position()
	speaker.Unlock()
	return float64(p) / float64(s.srcRate)
}

func (s *beepSource) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.started {
		return false
	}
	speaker.Lock()
	running := !s.ctrl.Paused && s.seeker.Position() < s.seeker.Len()
	speaker.Unlock()
	return running
}

func (s *beepSource) OutputSnapshot(seconds float64) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.tap == nil {
		return nil
	}
	return s.tap.Snapshot(seconds)
}

// Close detaches the source from the speaker mixer and releases the
// underlying decoder. The speaker device itself is shared and stays up.
func (s *beepSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.started {
		speaker.Lock()
		s.ctrl.Paused = true
		s.ctrl.Streamer = nil // mixer drops a drained ctrl
		speaker.Unlock()
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return fmt.Errorf("close decoder: %w", err)
		}
	}
	return nil
}

// effectsStreamer pulls from the decoded stream, mixes to mono, runs
// the node chain in place and writes the result to both channels plus
// the analysis tap. It runs on the speaker's render goroutine, under
// the speaker lock.
type effectsStreamer struct {
	src    beep.Streamer
	pitch  *pitchShiftNode
	reverb *reverbNode
	eq     *eqNode
	tap    *ringbuffer.Buffer

	block []float64
}

func (p *effectsStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := p.src.Stream(samples)
	if n == 0 {
		return n, ok
	}

	if len(p.block) < n {
		p.block = make([]float64, n)
	}
	buf := p.block[:n]
	for i := 0; i < n; i++ {
		buf[i] = 0.5 * (samples[i][0] + samples[i][1])
	}

	p.pitch.process(buf)
	p.reverb.process(buf)
	p.eq.process(buf)

	for i := 0; i < n; i++ {
		v := buf[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	p.tap.Write(buf)
	return n, ok
}

func (p *effectsStreamer) Err() error { return p.src.Err() }

var _ Engine = (*BeepEngine)(nil)
