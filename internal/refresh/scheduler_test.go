package refresh

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock fires timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	due     time.Duration
	seq     int
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{clock: c, due: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, firing every timer that comes due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var live []*fakeTimer
		for _, t := range c.timers {
			if !t.stopped {
				live = append(live, t)
			}
		}
		sort.Slice(live, func(i, j int) bool {
			if live[i].due == live[j].due {
				return live[i].seq < live[j].seq
			}
			return live[i].due < live[j].due
		})
		c.timers = live
		if len(live) == 0 || live[0].due > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := live[0]
		next.stopped = true
		c.now = next.due
		c.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of armed timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func newTestScheduler(interval time.Duration) (*Scheduler, *fakeClock, *atomic.Int64) {
	clock := &fakeClock{}
	var calls atomic.Int64
	s := New(func() { calls.Add(1) }, interval)
	s.after = clock.AfterFunc
	return s, clock, &calls
}

func TestSchedulerFiresOncePerInterval(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()

	for i := 1; i <= 10; i++ {
		clock.Advance(time.Second)
		if got := calls.Load(); got != int64(i) {
			t.Fatalf("after %ds: expected %d calls, got %d", i, i, got)
		}
		if clock.Pending() != 1 {
			t.Fatalf("expected exactly one pending timer, got %d", clock.Pending())
		}
	}

	s.Stop()
	clock.Advance(10 * time.Second)
	if got := calls.Load(); got != 10 {
		t.Errorf("expected no calls after Stop, got %d total", got)
	}
}

func TestSchedulerNoFireBeforeInterval(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()

	clock.Advance(999 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("callback fired early")
	}
	clock.Advance(time.Millisecond)
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestSchedulerDoubleStartDoesNotStack(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()
	s.Start()

	if clock.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", clock.Pending())
	}
	clock.Advance(5 * time.Second)
	if got := calls.Load(); got != 5 {
		t.Errorf("expected 5 calls, got %d", got)
	}
}

func TestSchedulerZeroIntervalDisabled(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		s, clock, calls := newTestScheduler(interval)
		s.Start()

		if s.Running() {
			t.Errorf("interval %v: scheduler should not be running", interval)
		}
		if clock.Pending() != 0 {
			t.Errorf("interval %v: expected no timer armed", interval)
		}
		clock.Advance(time.Hour)
		if calls.Load() != 0 {
			t.Errorf("interval %v: expected no calls, got %d", interval, calls.Load())
		}
	}
}

func TestSchedulerSetIntervalZeroWhileRunning(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()
	clock.Advance(2 * time.Second)

	s.SetInterval(0)
	if calls.Load() != 2 {
		t.Fatalf("SetInterval must not invoke the callback, got %d calls", calls.Load())
	}
	clock.Advance(time.Minute)
	if calls.Load() != 2 {
		t.Errorf("expected no further calls, got %d", calls.Load())
	}
	if s.Running() {
		t.Error("scheduler should be stopped")
	}
}

func TestSchedulerSetIntervalWhileRunningRestarts(t *testing.T) {
	s, clock, calls := newTestScheduler(10 * time.Second)
	s.Start()
	clock.Advance(6 * time.Second)

	s.SetInterval(3 * time.Second)
	if s.Interval() != 3*time.Second {
		t.Fatalf("expected interval 3s, got %v", s.Interval())
	}

	// The old 10s wait is discarded; next tick is 3s after the change.
	clock.Advance(3 * time.Second)
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
	clock.Advance(3 * time.Second)
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if clock.Pending() != 1 {
		t.Errorf("expected one pending timer, got %d", clock.Pending())
	}
}

func TestSchedulerSetIntervalWhileStopped(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.SetInterval(5 * time.Second)

	if s.Running() {
		t.Fatal("SetInterval must not start a stopped scheduler")
	}
	clock.Advance(time.Minute)
	if calls.Load() != 0 {
		t.Fatalf("expected no calls, got %d", calls.Load())
	}

	s.Start()
	clock.Advance(5 * time.Second)
	if calls.Load() != 1 {
		t.Errorf("expected new interval to apply on Start, got %d calls", calls.Load())
	}
}

func TestSchedulerStopBeforeStart(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Stop()
	s.Stop()

	clock.Advance(time.Minute)
	if calls.Load() != 0 {
		t.Errorf("expected no calls, got %d", calls.Load())
	}
}

func TestSchedulerDoubleStop(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()
	clock.Advance(time.Second)

	s.Stop()
	s.Stop()
	clock.Advance(time.Minute)
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestSchedulerStaleFireIgnored(t *testing.T) {
	clock := &fakeClock{}
	var calls atomic.Int64
	var fires []func()

	s := New(func() { calls.Add(1) }, time.Second)
	s.after = func(d time.Duration, f func()) timer {
		fires = append(fires, f)
		return clock.AfterFunc(d, f)
	}

	s.Start()
	s.Stop()
	// A timer that already fired when Stop ran still delivers its callback.
	fires[0]()
	if calls.Load() != 0 {
		t.Errorf("stale fire must not reach the callback")
	}
	if s.Running() {
		t.Errorf("stale fire must not re-arm")
	}
}

func TestSchedulerCallbackCanChangeInterval(t *testing.T) {
	clock := &fakeClock{}
	var calls atomic.Int64
	var s *Scheduler
	s = New(func() {
		if calls.Add(1) == 1 {
			s.SetInterval(2 * time.Second)
		}
	}, time.Second)
	s.after = clock.AfterFunc
	s.Start()

	clock.Advance(time.Second)
	if clock.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", clock.Pending())
	}
	clock.Advance(time.Second)
	if calls.Load() != 1 {
		t.Fatalf("expected new interval to delay the next tick, got %d calls", calls.Load())
	}
	clock.Advance(time.Second)
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestSchedulerCallbackCanStop(t *testing.T) {
	clock := &fakeClock{}
	var calls atomic.Int64
	var s *Scheduler
	s = New(func() {
		calls.Add(1)
		s.Stop()
	}, time.Second)
	s.after = clock.AfterFunc
	s.Start()

	clock.Advance(time.Minute)
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestSchedulerCloseIsInert(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()
	s.Close()
	s.Close()

	s.Start()
	s.SetInterval(time.Second)
	clock.Advance(time.Minute)
	if calls.Load() != 0 {
		t.Errorf("expected no calls after Close, got %d", calls.Load())
	}
	if s.Running() {
		t.Error("closed scheduler must not run")
	}
}

func TestSchedulerTimerArmedBeforeCloseDoesNotFire(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()

	clock.mu.Lock()
	armed := clock.timers[0].f
	clock.mu.Unlock()

	// Mark closed without bumping the generation, as a Start racing with
	// Close would leave it.
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	armed()
	if calls.Load() != 0 {
		t.Errorf("expected no calls after close, got %d", calls.Load())
	}
}

func TestSchedulerCloseCancelsUnderOneLock(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); s.Start() }()
		go func() { defer wg.Done(); s.Close() }()
	}
	wg.Wait()

	clock.Advance(time.Minute)
	if calls.Load() != 0 {
		t.Errorf("expected no calls after Close, got %d", calls.Load())
	}
	if s.Running() {
		t.Error("closed scheduler must not run")
	}
}

func TestSchedulerBindContext(t *testing.T) {
	s, clock, calls := newTestScheduler(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	s.BindContext(ctx)
	s.Start()

	clock.Advance(time.Second)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.Running() {
		t.Fatal("scheduler still running after context cancel")
	}
	clock.Advance(time.Minute)
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestSchedulerRealTimer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping wall-clock test")
	}

	fired := make(chan struct{}, 10)
	s := New(func() { fired <- struct{}{} }, 20*time.Millisecond)
	s.Start()
	defer s.Close()

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never fired", i)
		}
	}
}

func TestDefaultInterval(t *testing.T) {
	s := New(func() {}, DefaultInterval)
	if s.Interval() != 60*time.Second {
		t.Errorf("expected 60s default, got %v", s.Interval())
	}
}
