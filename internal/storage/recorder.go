package storage

import (
	"log/slog"

	"github.com/wigowatch/wigowatch/internal/observability"
	"github.com/wigowatch/wigowatch/internal/status"
	"github.com/wigowatch/wigowatch/internal/types"
)

// Recorder flattens overviews into samples and stores them.
type Recorder struct {
	store   Storage
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store Storage, metrics *observability.Metrics, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:   store,
		metrics: metrics,
		logger:  logger.With("component", "recorder"),
	}
}

// Record stores one sample per group, host and probe of o plus a global one.
// Failures are logged and counted, never returned.
func (r *Recorder) Record(o *types.Overview) {
	if o == nil {
		return
	}
	samples := o.Samples(func(code int) string { return status.FromCode(code).String() })
	if err := r.store.Store(samples); err != nil {
		r.metrics.StorageErrors.Add(1)
		r.logger.Error("failed to record history", "backend", r.store.Name(), "error", err)
		return
	}
	r.metrics.SamplesStored.Add(int64(len(samples)))
}
