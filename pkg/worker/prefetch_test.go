package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/metrics"
)

type call struct {
	doctorID   string
	start, end time.Time
}

type fakeSource struct {
	mu         sync.Mutex
	doctors    []model.Doctor
	doctorErrs int
	failFor    map[string]int
	calls      []call
}

func (f *fakeSource) AllDoctors(context.Context) ([]model.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.doctorErrs > 0 {
		f.doctorErrs--
		return nil, errors.New("data service unavailable")
	}
	return f.doctors, nil
}

func (f *fakeSource) AppointmentsByDoctorAndDateRange(_ context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{doctorID, start, end})
	if f.failFor[doctorID] > 0 {
		f.failFor[doctorID]--
		return nil, errors.New("timeout")
	}
	return nil, nil
}

func (f *fakeSource) Location() *time.Location { return time.UTC }

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newPrefetcher(t *testing.T, src Source, attempts int) (*Prefetcher, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewNop()
	p, err := NewPrefetcher(src, PrefetchConfig{
		Interval:      time.Hour,
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
	}, nil, m)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2026, time.October, 14, 11, 0, 0, 0, time.UTC) }
	return p, m
}

func TestNewPrefetcher_InvalidConfig(t *testing.T) {
	tests := []PrefetchConfig{
		{Interval: 0, RetryAttempts: 1},
		{Interval: time.Minute, RetryAttempts: 0},
		{Interval: time.Minute, RetryAttempts: 1, RetryDelay: -time.Second},
	}
	for _, cfg := range tests {
		_, err := NewPrefetcher(&fakeSource{}, cfg, nil, nil)
		assert.Error(t, err)
	}
}

func TestRunOnce_WarmsCurrentWeek(t *testing.T) {
	src := &fakeSource{doctors: []model.Doctor{{ID: "doc-1"}, {ID: "doc-2"}}}
	p, m := newPrefetcher(t, src, 1)

	require.NoError(t, p.RunOnce(context.Background()))
	require.Len(t, src.calls, 2)
	assert.Equal(t, "doc-1", src.calls[0].doctorID)
	assert.Equal(t, time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC), src.calls[0].start)
	assert.Equal(t, time.Date(2026, time.October, 18, 23, 59, 59, int(999*time.Millisecond), time.UTC), src.calls[0].end)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrefetchRuns.WithLabelValues("success")))
}

func TestRunOnce_RetriesThenSucceeds(t *testing.T) {
	src := &fakeSource{
		doctors:    []model.Doctor{{ID: "doc-1"}},
		doctorErrs: 1,
		failFor:    map[string]int{"doc-1": 2},
	}
	p, m := newPrefetcher(t, src, 3)

	require.NoError(t, p.RunOnce(context.Background()))
	assert.Len(t, src.calls, 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PrefetchRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrefetchRuns.WithLabelValues("success")))
}

func TestRunOnce_PartialAndTotalFailure(t *testing.T) {
	src := &fakeSource{
		doctors: []model.Doctor{{ID: "doc-1"}, {ID: "doc-2"}},
		failFor: map[string]int{"doc-2": 10},
	}
	p, m := newPrefetcher(t, src, 2)

	require.NoError(t, p.RunOnce(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrefetchRuns.WithLabelValues("partial")))

	src.failFor = map[string]int{"doc-1": 10, "doc-2": 10}
	err := p.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 doctors")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrefetchRuns.WithLabelValues("error")))
}

func TestRunOnce_DoctorListFails(t *testing.T) {
	src := &fakeSource{doctorErrs: 5}
	p, m := newPrefetcher(t, src, 2)

	err := p.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list doctors")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrefetchRuns.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrefetchRetries))
}

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	src := &fakeSource{doctors: []model.Doctor{{ID: "doc-1"}}}
	p, _ := newPrefetcher(t, src, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
