package ringbuffer

import "sync"

// Buffer holds a fixed-duration circular buffer of mono float64 samples.
// It is safe for concurrent use from a single writer (the audio render
// callback) and any number of snapshot readers.
type Buffer struct {
	mu         sync.Mutex
	buf        []float64
	writePos   int
	capacity   int
	written    int // total samples ever written (for tracking fill level)
	sampleRate int
}

// New creates a buffer holding the given number of seconds at sampleRate.
func New(seconds float64, sampleRate int) *Buffer {
	capacity := int(seconds * float64(sampleRate))
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		buf:        make([]float64, capacity),
		capacity:   capacity,
		sampleRate: sampleRate,
	}
}

// SampleRate returns the sample rate the buffer was created with.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Write appends samples, overwriting the oldest data when full.
func (b *Buffer) Write(samples []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(samples) > 0 {
		n := copy(b.buf[b.writePos:], samples)
		samples = samples[n:]
		b.writePos = (b.writePos + n) % b.capacity
		b.written += n
	}
}

// Snapshot returns a copy of the last N seconds of samples, oldest first.
// If less data has been written than requested, only the available data
// is returned; an empty buffer yields nil.
func (b *Buffer) Snapshot(seconds float64) []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	requested := int(seconds * float64(b.sampleRate))
	if requested > b.capacity {
		requested = b.capacity
	}

	available := b.written
	if available > b.capacity {
		available = b.capacity
	}
	if requested > available {
		requested = available
	}

	if requested <= 0 {
		return nil
	}

	out := make([]float64, requested)
	start := (b.writePos - requested + b.capacity) % b.capacity

	if start+requested <= b.capacity {
		copy(out, b.buf[start:start+requested])
	} else {
		first := b.capacity - start
		copy(out[:first], b.buf[start:])
		copy(out[first:], b.buf[:requested-first])
	}

	return out
}

// AvailableSeconds returns the number of seconds of audio currently stored.
func (b *Buffer) AvailableSeconds() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	available := b.written
	if available > b.capacity {
		available = b.capacity
	}
	return float64(available) / float64(b.sampleRate)
}
