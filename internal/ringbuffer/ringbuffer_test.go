package ringbuffer

import "testing"

func TestSnapshotEmpty(t *testing.T) {
	b := New(2, 1000)
	if snap := b.Snapshot(1); snap != nil {
		t.Errorf("expected nil snapshot from empty buffer, got %d samples", len(snap))
	}
}

func TestWriteAndSnapshotExact(t *testing.T) {
	b := New(1, 1000)
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i)
	}
	b.Write(data)

	snap := b.Snapshot(1)
	if len(snap) != 1000 {
		t.Fatalf("expected snapshot len 1000, got %d", len(snap))
	}
	for i, v := range snap {
		if v != float64(i) {
			t.Fatalf("sample %d: expected %f, got %f", i, float64(i), v)
		}
	}
}

func TestSnapshotPartialFill(t *testing.T) {
	b := New(5, 1000)
	b.Write(make([]float64, 1000)) // 1 second into a 5-second buffer

	snap := b.Snapshot(3) // request 3 seconds but only 1 is available
	if len(snap) != 1000 {
		t.Errorf("expected 1000 samples (1 second), got %d", len(snap))
	}
}

func TestWrapAround(t *testing.T) {
	b := New(1, 1000)

	// Write 1.5 seconds — the first 0.5s should be overwritten.
	first := make([]float64, 500)
	for i := range first {
		first[i] = -1
	}
	second := make([]float64, 1000)
	for i := range second {
		second[i] = 1
	}

	b.Write(first)
	b.Write(second)

	snap := b.Snapshot(1)
	if len(snap) != 1000 {
		t.Fatalf("expected 1000 samples, got %d", len(snap))
	}
	for i, v := range snap {
		if v != 1 {
			t.Errorf("sample %d: expected 1, got %f", i, v)
			break
		}
	}
}

func TestAvailableSeconds(t *testing.T) {
	b := New(5, 1000)
	if b.AvailableSeconds() != 0 {
		t.Errorf("expected 0 available, got %f", b.AvailableSeconds())
	}

	b.Write(make([]float64, 2000))
	if b.AvailableSeconds() != 2.0 {
		t.Errorf("expected 2.0 available, got %f", b.AvailableSeconds())
	}

	// Write more than capacity.
	b.Write(make([]float64, 10000))
	if b.AvailableSeconds() != 5.0 {
		t.Errorf("expected 5.0 available (capped), got %f", b.AvailableSeconds())
	}
}
