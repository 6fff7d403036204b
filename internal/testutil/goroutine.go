package testutil

import (
	"runtime"
	"testing"
	"time"
)

const (
	leakCheckTimeout = 10 * time.Second
	leakCheckPoll    = 50 * time.Millisecond
)

// AssertNoGoroutineLeaks fails the test if the goroutine count does not
// settle back to baseline+margin before the check times out. Background
// goroutines wind down asynchronously after Close, so the count is
// polled rather than read once.
func AssertNoGoroutineLeaks(t *testing.T, baseline int, margin int) {
	t.Helper()

	var current int
	for deadline := time.Now().Add(leakCheckTimeout); ; time.Sleep(leakCheckPoll) {
		current = runtime.NumGoroutine()
		if current <= baseline+margin {
			return
		}
		if time.Now().After(deadline) {
			break
		}
	}
	t.Errorf("leaked goroutines: %d running, expected at most %d (baseline %d, margin %d)",
		current, baseline+margin, baseline, margin)
}
