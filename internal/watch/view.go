// Package watch keeps periodically refreshed snapshots of wigo data.
//
// A View owns one refresh.Scheduler. Each tick launches an asynchronous load;
// loads may overlap, and a result is only applied when no newer load has
// already been applied.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wigowatch/wigowatch/internal/observability"
	"github.com/wigowatch/wigowatch/internal/refresh"
)

// subscriberBuffer is the channel capacity handed out by Subscribe.
const subscriberBuffer = 4

// FetchFunc loads one snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Update is published after every applied load.
type Update[T any] struct {
	View string
	Seq  uint64
	Data T
	Err  error
	At   time.Time
}

// Option configures a View.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	metrics      *observability.Metrics
	schedulerOps []refresh.Option
}

// WithLogger sets the logger used for fetch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the metrics sink for refresh counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSchedulerOptions passes options through to the view's scheduler.
func WithSchedulerOptions(opts ...refresh.Option) Option {
	return func(o *options) { o.schedulerOps = append(o.schedulerOps, opts...) }
}

// View is a named, periodically refreshed snapshot.
type View[T any] struct {
	name    string
	fetch   FetchFunc[T]
	sched   *refresh.Scheduler
	logger  *slog.Logger
	metrics *observability.Metrics

	issued atomic.Uint64

	// deliverMu orders applying a result with publishing it, so subscribers
	// and hooks see updates in sequence order.
	deliverMu sync.Mutex

	mu        sync.RWMutex
	ctx       context.Context
	mounted   bool
	applied   uint64
	data      T
	hasData   bool
	updatedAt time.Time
	lastErr   error
	detach    func() bool

	subMu     sync.Mutex
	subs      []chan Update[T]
	hooks     []func(Update[T])
	unmounted bool

	unmountOnce sync.Once
}

// New creates an unmounted view.
func New[T any](name string, fetch FetchFunc[T], interval time.Duration, opts ...Option) *View[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = observability.NewMetrics(o.logger)
	}

	v := &View[T]{
		name:    name,
		fetch:   fetch,
		logger:  o.logger.With("component", "view", "view", name),
		metrics: o.metrics,
		ctx:     context.Background(),
	}
	schedOpts := append([]refresh.Option{refresh.WithLogger(o.logger)}, o.schedulerOps...)
	v.sched = refresh.New(v.Refresh, interval, schedOpts...)
	return v
}

// Name returns the view name.
func (v *View[T]) Name() string { return v.name }

// Mount loads immediately and starts periodic refreshes. When ctx is done the
// view unmounts.
func (v *View[T]) Mount(ctx context.Context) {
	v.mu.Lock()
	v.ctx = ctx
	v.mounted = true
	if v.detach == nil {
		v.detach = context.AfterFunc(ctx, v.Unmount)
	}
	v.mu.Unlock()

	v.Refresh()
	v.sched.Start()
}

// Unmount stops refreshes for good and closes subscriber channels. Loads
// still in flight complete but are not published.
func (v *View[T]) Unmount() {
	v.unmountOnce.Do(func() {
		v.sched.Close()

		v.mu.Lock()
		v.mounted = false
		if v.detach != nil {
			v.detach()
		}
		v.mu.Unlock()

		v.subMu.Lock()
		v.unmounted = true
		for _, ch := range v.subs {
			close(ch)
		}
		v.subs = nil
		v.subMu.Unlock()
		v.logger.Debug("view unmounted")
	})
}

// Refresh launches an asynchronous load and returns immediately.
func (v *View[T]) Refresh() {
	seq := v.issued.Add(1)
	go v.load(seq)
}

func (v *View[T]) load(seq uint64) {
	v.mu.RLock()
	ctx := v.ctx
	v.mu.RUnlock()

	v.metrics.RefreshesTotal.Add(1)
	data, err := v.fetch(ctx)
	if err != nil {
		v.metrics.RefreshesFailed.Add(1)
		v.logger.Warn("refresh failed", "seq", seq, "error", err)
	}

	v.deliverMu.Lock()
	defer v.deliverMu.Unlock()

	now := time.Now()
	v.mu.Lock()
	if applied := v.applied; seq <= applied {
		v.mu.Unlock()
		v.metrics.RefreshesStale.Add(1)
		v.logger.Debug("discarding outdated result", "seq", seq, "applied", applied)
		return
	}
	v.applied = seq
	v.lastErr = err
	if err == nil {
		v.data = data
		v.hasData = true
		v.updatedAt = now
	}
	u := Update[T]{View: v.name, Seq: seq, Data: v.data, Err: err, At: now}
	v.mu.Unlock()

	v.publish(u)
}

func (v *View[T]) publish(u Update[T]) {
	v.subMu.Lock()
	if v.unmounted {
		v.subMu.Unlock()
		return
	}
	for _, ch := range v.subs {
		select {
		case ch <- u:
		default:
			v.logger.Debug("subscriber full, dropping update", "seq", u.Seq)
		}
	}
	hooks := append([]func(Update[T]){}, v.hooks...)
	v.subMu.Unlock()

	for _, h := range hooks {
		h(u)
	}
}

// Snapshot returns the last successfully loaded data and its load time. ok is
// false until the first successful load.
func (v *View[T]) Snapshot() (data T, at time.Time, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.data, v.updatedAt, v.hasData
}

// LastError returns the error of the most recently applied load, nil when it
// succeeded.
func (v *View[T]) LastError() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastErr
}

// SetInterval changes the refresh interval. Zero or negative disables
// periodic refreshes; a positive interval on a mounted view starts them again.
func (v *View[T]) SetInterval(d time.Duration) {
	v.sched.SetInterval(d)

	v.mu.RLock()
	mounted := v.mounted
	v.mu.RUnlock()
	if mounted && d > 0 && !v.sched.Running() {
		v.sched.Start()
	}
}

// Interval returns the refresh interval.
func (v *View[T]) Interval() time.Duration {
	return v.sched.Interval()
}

// Subscribe returns a channel receiving every applied update. Updates are
// dropped for a subscriber whose buffer is full. The channel is closed on
// Unmount.
func (v *View[T]) Subscribe() <-chan Update[T] {
	ch := make(chan Update[T], subscriberBuffer)
	v.subMu.Lock()
	defer v.subMu.Unlock()
	if v.unmounted {
		close(ch)
		return ch
	}
	v.subs = append(v.subs, ch)
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (v *View[T]) Unsubscribe(ch <-chan Update[T]) {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	for i, c := range v.subs {
		if c == ch {
			v.subs = append(v.subs[:i], v.subs[i+1:]...)
			close(c)
			return
		}
	}
}

// OnUpdate registers fn to run after every applied update. Hooks run one
// update at a time in sequence order; a slow hook delays later updates.
func (v *View[T]) OnUpdate(fn func(Update[T])) {
	v.subMu.Lock()
	defer v.subMu.Unlock()
	v.hooks = append(v.hooks, fn)
}
