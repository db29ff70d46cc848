package refresh

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/verte-zerg/weekboard/internal/metrics"
	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/sheet"
	"github.com/verte-zerg/weekboard/internal/source"
	"github.com/verte-zerg/weekboard/internal/stats"
	"github.com/verte-zerg/weekboard/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const twoWeeksCSV = `Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won
Ann Lee,12,6,12,6,"$1,200.00"
Bob Stone,8,4,8,4,$0.00
Totals,20,10,20,10,"$1,200.00"
,,,,,
Rep,Weekly Sets,Weekly Shows,Monthly Sets,Monthly Shows,Closed Won
Ann Lee,18,9,30,15,"$2,500.50"
John Deactivated,5,5,5,5,$10.00
Bob Stone,12,6,20,10,X
Totals,30,15,50,25,"$2,500.50"
`

type stubSource struct {
	mu   sync.Mutex
	rows []sheet.Row
	err  error
}

func (s *stubSource) Fetch(context.Context) ([]sheet.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.err
}

func (s *stubSource) String() string { return "stub" }

func (s *stubSource) set(rows []sheet.Row, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.err = rows, err
}

func TestEndToEndTwoWeeks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte(twoWeeksCSV), 0o644))

	st := store.New()
	p := NewPipeline(&source.FileSource{Path: path}, st, zap.NewNop(), metrics.New())
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.CycleID)
	require.Equal(t, 4, res.Reps)
	require.Equal(t, 1, res.Skipped[sheet.SkipInactive])

	require.Equal(t, 2, st.Len())
	cur, ok := st.Current()
	require.True(t, ok)
	prev, ok := st.Previous()
	require.True(t, ok)

	require.Equal(t, 30, stats.Summarize(cur).WeeklySets)
	require.Equal(t, 50, stats.Summarize(cur).ShowRate)
	require.Equal(t, 20, stats.Summarize(prev).WeeklySets)
	require.Equal(t, "2500.5", stats.Summarize(cur).ClosedWon.String())

	trend := stats.CompareWeeks(cur, prev)
	require.Equal(t, model.Delta{Value: 10, Direction: model.Up}, trend.Sets)
}

func TestPipelineFailureKeepsWeeks(t *testing.T) {
	src := &stubSource{rows: sheet.Tokenize(twoWeeksCSV)}
	st := store.New()
	p := NewPipeline(src, st, zap.NewNop(), nil)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, st.Len())

	src.set(nil, source.ErrStatus)
	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, source.ErrStatus)
	require.Equal(t, 2, st.Len())

	src.set(sheet.Tokenize("no headers here\n1,2,3"), nil)
	_, err = p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, st.Len())
	require.Equal(t, -1, st.CurrentIndex())
}

type scriptedRunner struct {
	mu    sync.Mutex
	calls int
	steps []func(ctx context.Context) (Result, error)
}

func (r *scriptedRunner) Run(ctx context.Context) (Result, error) {
	r.mu.Lock()
	i := r.calls
	r.calls++
	r.mu.Unlock()
	if i < len(r.steps) {
		return r.steps[i](ctx)
	}
	return Result{CycleID: "idle"}, nil
}

func (r *scriptedRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestPollerStatusAndTrigger(t *testing.T) {
	runner := &scriptedRunner{steps: []func(context.Context) (Result, error){
		func(context.Context) (Result, error) {
			return Result{CycleID: "one", Weeks: make([]model.Week, 2)}, nil
		},
		func(context.Context) (Result, error) {
			return Result{CycleID: "two"}, errors.New("boom")
		},
	}}
	p := NewPoller(runner, time.Hour, zap.NewNop())
	p.now = func() time.Time { return time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC) }

	var mu sync.Mutex
	var seen []Status
	unsubscribe := p.Subscribe(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return p.Status().LastCycle == "one" }, time.Second, 5*time.Millisecond)
	st := p.Status()
	require.Equal(t, "09:05", st.Label())
	require.Equal(t, 2, st.Weeks)

	p.Trigger()
	require.Eventually(t, func() bool { return p.Status().LastCycle == "two" }, time.Second, 5*time.Millisecond)
	st = p.Status()
	require.Equal(t, "Error", st.Label())
	require.Equal(t, "boom", st.LastError)
	require.Equal(t, 2, st.Weeks, "failed cycle keeps previous week count")

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, seen[0].InFlight)
	require.Equal(t, "...", seen[0].Label())
}

func TestPollerLastCompletionWins(t *testing.T) {
	st := store.New()
	slowRelease := make(chan struct{})
	runner := &scriptedRunner{steps: []func(context.Context) (Result, error){
		func(context.Context) (Result, error) {
			<-slowRelease
			st.Rebuild(make([]model.Week, 1))
			return Result{CycleID: "slow", Weeks: make([]model.Week, 1)}, nil
		},
		func(context.Context) (Result, error) {
			st.Rebuild(make([]model.Week, 3))
			return Result{CycleID: "fast", Weeks: make([]model.Week, 3)}, nil
		},
	}}
	p := NewPoller(runner, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, 5*time.Millisecond)
	p.Trigger()
	require.Eventually(t, func() bool { return p.Status().LastCycle == "fast" }, time.Second, 5*time.Millisecond)
	require.Equal(t, 3, st.Len())
	require.True(t, p.Status().Refreshing())

	close(slowRelease)
	require.Eventually(t, func() bool { return p.Status().LastCycle == "slow" }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, st.Len(), "the later completion wins")
	require.False(t, p.Status().Refreshing())

	cancel()
	require.NoError(t, <-done)
}

func TestPollerTicks(t *testing.T) {
	runner := &scriptedRunner{}
	p := NewPoller(runner, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "", Status{}.Label())
	require.Equal(t, "...", Status{InFlight: 1, LastError: "x"}.Label())
}
