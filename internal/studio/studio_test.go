package studio

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/soundbench/soundbench/internal/engine"
	"github.com/soundbench/soundbench/internal/testutil"
)

func newStudio(t *testing.T, eng engine.Engine, maxSessions int) *Studio {
	t.Helper()
	st := New(eng, maxSessions, time.Millisecond, zap.NewNop())
	t.Cleanup(st.Shutdown)
	return st
}

func TestCreateGetDelete(t *testing.T) {
	st := newStudio(t, &engine.MockEngine{}, 4)

	sess, err := st.Create(context.Background(), "song.wav")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !sess.State().Ready {
		t.Error("created session not ready")
	}

	got, ok := st.Get(sess.ID)
	if !ok || got != sess {
		t.Fatalf("Get(%q) = %v, %v", sess.ID, got, ok)
	}
	if st.Count() != 1 {
		t.Errorf("Count() = %d, want 1", st.Count())
	}

	if !st.Delete(sess.ID) {
		t.Error("Delete returned false for live session")
	}
	if _, ok := st.Get(sess.ID); ok {
		t.Error("session still reachable after delete")
	}
	if st.Delete(sess.ID) {
		t.Error("second Delete returned true")
	}
}

func TestCreateEnforcesCap(t *testing.T) {
	st := newStudio(t, &engine.MockEngine{}, 1)

	if _, err := st.Create(context.Background(), "a.wav"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.Create(context.Background(), "b.wav"); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("err = %v, want ErrTooManySessions", err)
	}
}

func TestCreateInitFailureUnregisters(t *testing.T) {
	decodeErr := errors.New("corrupt file")
	st := newStudio(t, &engine.MockEngine{DecodeErr: decodeErr}, 4)

	if _, err := st.Create(context.Background(), "bad.wav"); !errors.Is(err, decodeErr) {
		t.Fatalf("err = %v, want decode failure", err)
	}
	if st.Count() != 0 {
		t.Errorf("failed create left %d sessions registered", st.Count())
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	baseline := runtime.NumGoroutine()
	eng := &engine.MockEngine{}
	st := New(eng, 4, time.Millisecond, zap.NewNop())

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := st.Create(context.Background(), "song.wav")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := sess.TogglePlay(); err != nil {
			t.Fatalf("TogglePlay: %v", err)
		}
		ids = append(ids, sess.ID)
	}

	st.Shutdown()

	if st.Count() != 0 {
		t.Errorf("Count() = %d after shutdown", st.Count())
	}
	for i := range ids {
		if !eng.Source(i).Closed() {
			t.Errorf("source %d not closed after shutdown", i)
		}
	}
	testutil.AssertNoGoroutineLeaks(t, baseline, 2)
}
