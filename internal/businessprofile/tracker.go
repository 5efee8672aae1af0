package businessprofile

import (
	"context"
	"sync"
	"time"

	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/metrics"
	"supplier-portal/internal/models"
)

// DefaultMinDwell is how long a visitor stays before a view counts.
const DefaultMinDwell = time.Second

type ViewAPI interface {
	TrackView(ctx context.Context, req models.TrackViewRequest) error
}

// Clock abstracts time for the tracker.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// ViewTracker sends at most two track-view calls per visit: one once the
// dwell time has passed and one on Stop with the elapsed seconds.
type ViewTracker struct {
	api        ViewAPI
	supplierID string
	clock      Clock
	minDwell   time.Duration
	logger     logger.Logger

	mu      sync.Mutex
	ctx     context.Context
	started time.Time
	timer   Timer
	running bool
}

type TrackerOption func(*ViewTracker)

func WithClock(c Clock) TrackerOption {
	return func(t *ViewTracker) { t.clock = c }
}

func WithMinDwell(d time.Duration) TrackerOption {
	return func(t *ViewTracker) {
		if d > 0 {
			t.minDwell = d
		}
	}
}

func WithTrackerLogger(l logger.Logger) TrackerOption {
	return func(t *ViewTracker) { t.logger = l }
}

func NewViewTracker(api ViewAPI, supplierID string, opts ...TrackerOption) *ViewTracker {
	t := &ViewTracker{
		api:        api,
		supplierID: supplierID,
		clock:      realClock{},
		minDwell:   DefaultMinDwell,
		logger:     logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins a visit. Calling it on a running tracker does nothing.
func (t *ViewTracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.ctx = context.WithoutCancel(ctx)
	t.started = t.clock.Now()
	t.timer = t.clock.AfterFunc(t.minDwell, t.dwellReached)
}

func (t *ViewTracker) dwellReached() {
	t.mu.Lock()
	running, ctx := t.running, t.ctx
	t.mu.Unlock()
	if !running {
		return
	}
	if t.send(ctx, 0) {
		metrics.ProfileViewsTracked.Inc()
	}
}

// Stop ends the visit and reports the elapsed time when it reached the
// dwell threshold. It returns the elapsed time.
func (t *ViewTracker) Stop(ctx context.Context) time.Duration {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return 0
	}
	t.running = false
	t.timer.Stop()
	elapsed := t.clock.Now().Sub(t.started)
	t.mu.Unlock()

	if elapsed >= t.minDwell {
		t.send(ctx, int(elapsed/time.Second))
	}
	return elapsed
}

func (t *ViewTracker) send(ctx context.Context, seconds int) bool {
	err := t.api.TrackView(ctx, models.TrackViewRequest{SupplierID: t.supplierID, DurationSeconds: seconds})
	if err != nil {
		t.logger.WithError(err).Warn("View tracking failed", map[string]interface{}{
			"supplierId": t.supplierID,
			"duration":   seconds,
		})
		return false
	}
	return true
}
