package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

// manualTimers records scheduled callbacks instead of running them.
type manualTimers struct {
	delays    []time.Duration
	callbacks []func()
}

func useManualTimers(t *testing.T) *manualTimers {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })

	m := &manualTimers{}
	afterFunc = func(delay time.Duration, f func()) *time.Timer {
		m.delays = append(m.delays, delay)
		m.callbacks = append(m.callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
	return m
}

func (m *manualTimers) fireAll() {
	for _, f := range m.callbacks {
		f()
	}
}

func TestBurstOfEventsRefreshesOnce(t *testing.T) {
	timers := useManualTimers(t)

	var refreshes atomic.Int32
	var d *Debouncer
	for range 5 {
		Ensure(&d, 350*time.Millisecond, func() { refreshes.Add(1) }).Trigger()
	}

	if len(timers.callbacks) != 5 {
		t.Fatalf("expected a timer per event, got %d", len(timers.callbacks))
	}
	for _, delay := range timers.delays {
		if delay != 350*time.Millisecond {
			t.Fatalf("expected 350ms delay, got %v", delay)
		}
	}
	timers.fireAll()
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected one refresh for the burst, got %d", got)
	}

	// Timers from the burst that fire late stay stale.
	timers.callbacks[0]()
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected stale timer to be ignored, got %d refreshes", got)
	}
}

func TestStopDropsPendingRefresh(t *testing.T) {
	timers := useManualTimers(t)

	var refreshes atomic.Int32
	var d *Debouncer
	Ensure(&d, time.Second, func() { refreshes.Add(1) }).Trigger()
	d.Stop()
	timers.fireAll()
	if got := refreshes.Load(); got != 0 {
		t.Fatalf("expected no refresh after stop, got %d", got)
	}

	d.Trigger()
	timers.callbacks[len(timers.callbacks)-1]()
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected trigger after stop to schedule again, got %d", got)
	}
}

func TestEnsureKeepsFirstDebouncer(t *testing.T) {
	timers := useManualTimers(t)

	var first, second atomic.Int32
	var d *Debouncer
	a := Ensure(&d, time.Second, func() { first.Add(1) })
	b := Ensure(&d, time.Minute, func() { second.Add(1) })
	if a != b || d != a {
		t.Fatal("expected Ensure to keep the existing debouncer")
	}

	b.Trigger()
	timers.fireAll()
	if first.Load() != 1 || second.Load() != 0 {
		t.Fatalf("expected first callback only, got first=%d second=%d", first.Load(), second.Load())
	}
	if timers.delays[0] != time.Second {
		t.Fatalf("expected first delay to be kept, got %v", timers.delays[0])
	}
}

func TestTriggerRunsAfterQuietPeriod(t *testing.T) {
	done := make(chan struct{}, 4)
	d := New(200*time.Millisecond, func() { done <- struct{}{} })
	t.Cleanup(d.Stop)

	for range 3 {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	select {
	case <-done:
		t.Fatal("expected a single callback for the burst")
	case <-time.After(300 * time.Millisecond):
	}
}
