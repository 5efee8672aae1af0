package businessprofile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/models"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due timers on the caller's goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

type recordingViewAPI struct {
	mu    sync.Mutex
	calls []models.TrackViewRequest
	err   error
}

func (r *recordingViewAPI) TrackView(_ context.Context, req models.TrackViewRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)
	return r.err
}

func TestViewTracker_TwoCallsPerVisit(t *testing.T) {
	clock := newFakeClock()
	api := &recordingViewAPI{}
	tr := NewViewTracker(api, "42", WithClock(clock))

	tr.Start(context.Background())
	clock.Advance(500 * time.Millisecond)
	assert.Empty(t, api.calls)

	clock.Advance(500 * time.Millisecond)
	require.Len(t, api.calls, 1)
	assert.Equal(t, models.TrackViewRequest{SupplierID: "42"}, api.calls[0])

	clock.Advance(3500 * time.Millisecond)
	elapsed := tr.Stop(context.Background())
	assert.Equal(t, 4500*time.Millisecond, elapsed)
	require.Len(t, api.calls, 2)
	assert.Equal(t, 4, api.calls[1].DurationSeconds)

	assert.Zero(t, tr.Stop(context.Background()))
	assert.Len(t, api.calls, 2)
}

func TestViewTracker_ShortVisitSendsNothing(t *testing.T) {
	clock := newFakeClock()
	api := &recordingViewAPI{}
	tr := NewViewTracker(api, "42", WithClock(clock))

	tr.Start(context.Background())
	clock.Advance(900 * time.Millisecond)
	tr.Stop(context.Background())
	clock.Advance(time.Minute)

	assert.Empty(t, api.calls)
}

func TestViewTracker_FailuresAreSwallowed(t *testing.T) {
	clock := newFakeClock()
	api := &recordingViewAPI{err: errors.New("No auth token found")}
	tr := NewViewTracker(api, "42", WithClock(clock), WithMinDwell(2*time.Second), WithTrackerLogger(logger.NewTestLogger(t)))

	tr.Start(context.Background())
	clock.Advance(time.Second)
	assert.Empty(t, api.calls)
	clock.Advance(time.Second)
	assert.NotPanics(t, func() { tr.Stop(context.Background()) })
	assert.Len(t, api.calls, 2)
}

func TestViewTracker_RealClock(t *testing.T) {
	api := &recordingViewAPI{}
	tr := NewViewTracker(api, "42", WithMinDwell(10*time.Millisecond))

	tr.Start(context.Background())
	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.calls) == 1
	}, time.Second, 5*time.Millisecond)
	tr.Stop(context.Background())

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Len(t, api.calls, 2)
}
