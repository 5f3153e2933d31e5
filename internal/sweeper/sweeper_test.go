package sweeper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mmynk/moves/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLister struct {
	groups []string
	err    error
}

func (l *fakeLister) ListGroupsPastDeadline(context.Context, time.Time) ([]string, error) {
	return l.groups, l.err
}

type fakeSweeper struct {
	mu       sync.Mutex
	calls    map[string]int
	removed  map[string]int
	failures map[string]error
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newFakeSweeper() *fakeSweeper {
	return &fakeSweeper{
		calls:    map[string]int{},
		removed:  map[string]int{},
		failures: map[string]error{},
	}
}

func (f *fakeSweeper) Sweep(_ context.Context, groupID string) (int, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[groupID]++
	if err := f.failures[groupID]; err != nil {
		return 0, err
	}
	return f.removed[groupID], nil
}

func (f *fakeSweeper) callCount(groupID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[groupID]
}

func TestRunOnceSweepsEveryGroup(t *testing.T) {
	lister := &fakeLister{groups: []string{"g1", "g2", "g3", "g4", "g5"}}
	sw := newFakeSweeper()
	sw.removed["g1"] = 2
	sw.removed["g4"] = 3
	sw.failures["g2"] = errors.New("database is locked")

	m := metrics.NewUnregistered()
	s := New(lister, sw, Config{Interval: time.Minute, Concurrency: 2}, m, nil)

	removed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	for _, g := range lister.groups {
		assert.Equal(t, 1, sw.callCount(g), "group %s", g)
	}
	assert.LessOrEqual(t, int(sw.maxSeen.Load()), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweeperRuns))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SweeperGroups))
}

func TestRunOnceListFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("disk I/O error")}
	s := New(lister, newFakeSweeper(), Config{Interval: time.Minute}, nil, nil)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list groups")
}

func TestRunStopsOnCancel(t *testing.T) {
	lister := &fakeLister{groups: []string{"g1"}}
	sw := newFakeSweeper()
	s := New(lister, sw, Config{Interval: 10 * time.Millisecond, Concurrency: 1}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return sw.callCount("g1") >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunDisabled(t *testing.T) {
	sw := newFakeSweeper()
	s := New(&fakeLister{groups: []string{"g1"}}, sw, Config{}, nil, nil)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 0, sw.callCount("g1"))
}
