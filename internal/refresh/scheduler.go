// Package refresh drives periodic re-fetching of dashboard data while a view is mounted.
package refresh

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the refresh period views use unless configured otherwise.
const DefaultInterval = 60 * time.Second

// timer is the part of *time.Timer the scheduler needs.
type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Scheduler invokes a callback once every interval for as long as it is running.
//
// Each firing arms the next one with the interval current at that moment, so a
// changed interval is picked up on the following tick. At most one timer is
// ever pending.
type Scheduler struct {
	callback func()
	logger   *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	pending  timer
	gen      uint64
	closed   bool

	closeOnce sync.Once
	after     afterFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for lifecycle debug messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger.With("component", "refresh")
	}
}

// New creates a stopped Scheduler. An interval <= 0 disables scheduling.
func New(callback func(), interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		callback: callback,
		interval: interval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		after:    realAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start (re)initializes scheduling. Any pending timer is cancelled first.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.restartLocked()
}

// Stop cancels the pending timer, if any. Safe to call when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return
	}
	s.cancelLocked()
	s.logger.Debug("refresh stopped")
}

// SetInterval updates the interval and restarts scheduling if it is running.
func (s *Scheduler) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = d
	if s.pending != nil && !s.closed {
		s.restartLocked()
	}
}

// Interval returns the current interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Running reports whether a tick is pending.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Close stops the scheduler for good. Only the first call has an effect and
// Start is a no-op afterwards.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		s.cancelLocked()
		s.logger.Debug("refresh closed")
	})
}

// BindContext closes the scheduler when ctx is done. The returned function
// detaches the binding without closing.
func (s *Scheduler) BindContext(ctx context.Context) (detach func() bool) {
	return context.AfterFunc(ctx, s.Close)
}

func (s *Scheduler) restartLocked() {
	s.cancelLocked()
	if s.interval <= 0 {
		s.logger.Debug("refresh disabled", "interval", s.interval)
		return
	}
	s.armLocked()
	s.logger.Debug("refresh started", "interval", s.interval)
}

// cancelLocked invalidates every timer armed so far, including one whose
// callback is already in flight.
func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Scheduler) armLocked() {
	gen := s.gen
	s.pending = s.after(s.interval, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil || s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// The handle stays set while the callback runs so that SetInterval from
	// inside the callback still counts as running.
	s.callback()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.closed {
		return
	}
	s.pending = nil
	if s.interval > 0 {
		s.armLocked()
	}
}
