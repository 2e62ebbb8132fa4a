package exam

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock advances a fixed step on every reading, so a millisecond test
// ticker simulates whole wall-clock seconds.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0), step: step}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(f.step)
	return f.t
}

func waitDone(t *testing.T, c *Countdown) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown goroutine did not exit")
	}
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	s, _ := NewSession(fixedQuestions(2), 3)

	var fired int32
	expired := make(chan *Snapshot, 2)
	c := NewCountdown(s, func(snap *Snapshot) {
		atomic.AddInt32(&fired, 1)
		expired <- snap
	})
	c.interval = time.Millisecond
	c.now = newFakeClock(time.Second).Now

	var ticks int32
	c.OnTick = func(int) { atomic.AddInt32(&ticks, 1) }

	c.Start()

	var snap *Snapshot
	select {
	case snap = <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never expired")
	}
	waitDone(t, c)

	if !snap.TimedOut {
		t.Error("expiry snapshot not marked TimedOut")
	}
	if got := s.Status(); got != StatusSubmitted {
		t.Errorf("status = %s, want %s", got, StatusSubmitted)
	}
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Errorf("expiry callback fired %d times, want 1", n)
	}
	// 2 pre-expiry ticks for a 3 second budget; the expiring tick reports
	// through onExpire, not OnTick.
	if n := atomic.LoadInt32(&ticks); n != 2 {
		t.Errorf("OnTick fired %d times, want 2", n)
	}
}

func TestCountdownReconcilesLongPauses(t *testing.T) {
	s, _ := NewSession(fixedQuestions(1), 60)

	expired := make(chan struct{})
	c := NewCountdown(s, func(*Snapshot) { close(expired) })
	c.interval = time.Millisecond
	// Each wake observes 25 elapsed seconds, as if the host throttled the
	// ticker. The full minute must be charged after three wakes.
	c.now = newFakeClock(25 * time.Second).Now

	c.Start()

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not reconcile elapsed wall-clock time")
	}
	waitDone(t, c)

	if got := s.Remaining(); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

func TestCountdownStopsAfterManualSubmit(t *testing.T) {
	s, _ := NewSession(fixedQuestions(1), 1000)

	c := NewCountdown(s, func(*Snapshot) {
		t.Error("expiry callback fired after manual submit")
	})
	c.interval = time.Millisecond
	c.now = newFakeClock(time.Second).Now

	c.Start()

	if snap := s.Submit(); snap == nil {
		t.Fatal("manual submit returned nil")
	}
	c.Stop()
	waitDone(t, c)

	remaining := s.Remaining()
	time.Sleep(20 * time.Millisecond)
	if got := s.Remaining(); got != remaining {
		t.Errorf("session ticked after stop: %d -> %d", remaining, got)
	}
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	s, _ := NewSession(fixedQuestions(1), 100)

	c := NewCountdown(s, nil)
	c.interval = time.Millisecond
	c.now = newFakeClock(time.Second).Now

	c.Start()
	c.Stop()
	c.Stop()
	waitDone(t, c)
}

func TestCountdownExitsWhenSessionSubmittedElsewhere(t *testing.T) {
	// Even without an explicit Stop, a countdown observing a submitted
	// session must wind down on its own rather than tick forever.
	s, _ := NewSession(fixedQuestions(1), 1000)

	c := NewCountdown(s, nil)
	c.interval = time.Millisecond
	c.now = newFakeClock(time.Second).Now

	_ = s.Submit()
	c.Start()
	waitDone(t, c)
}
