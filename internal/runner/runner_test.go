package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/ddbsink/internal/testutil"
	"github.com/jacentio/ddbsink/sink"
)

// fakeSource serves queued polls, then cancels the run.
type fakeSource struct {
	mu         sync.Mutex
	polls      [][]sink.Record
	cancel     context.CancelFunc
	commits    int
	commitErrs []error
}

func (s *fakeSource) Poll(ctx context.Context) ([]sink.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.polls) == 0 {
		s.cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	next := s.polls[0]
	s.polls = s.polls[1:]
	return next, nil
}

func (s *fakeSource) Commit(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	if len(s.commitErrs) > 0 {
		err := s.commitErrs[0]
		s.commitErrs = s.commitErrs[1:]
		return err
	}
	return nil
}

type putCall struct {
	res sink.Result
	err error
}

// fakeTask replays results in order, repeating the last one.
type fakeTask struct {
	results []putCall
	calls   [][]sink.Record
}

func (f *fakeTask) Put(_ context.Context, records []sink.Record) (sink.Result, error) {
	f.calls = append(f.calls, records)
	i := len(f.calls) - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i].res, f.results[i].err
}

func done() putCall {
	return putCall{res: sink.Result{Status: sink.StatusDone}}
}

func retriable(d time.Duration) putCall {
	return putCall{res: sink.Result{Status: sink.StatusRetriable, Backoff: d}}
}

func newRunner(t *testing.T, polls [][]sink.Record, results ...putCall) (*Runner, *fakeSource, *fakeTask, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	src := &fakeSource{polls: polls, cancel: cancel}
	task := &fakeTask{results: results}
	r := New(src, task, testutil.NewTestLogger())
	r.commitDelay = time.Millisecond
	return r, src, task, ctx
}

func batch(offsets ...int64) []sink.Record {
	out := make([]sink.Record, len(offsets))
	for i, o := range offsets {
		out[i] = sink.Record{Topic: "orders", Offset: o}
	}
	return out
}

func TestRun_CommitsAfterDone(t *testing.T) {
	r, src, task, ctx := newRunner(t, [][]sink.Record{batch(1, 2), batch(3)}, done())

	require.NoError(t, r.Run(ctx))

	assert.Len(t, task.calls, 2)
	assert.Equal(t, 2, src.commits)
}

func TestRun_RedeliversSameRecords(t *testing.T) {
	r, src, task, ctx := newRunner(t, [][]sink.Record{batch(1, 2, 3)},
		retriable(time.Millisecond),
		retriable(time.Millisecond),
		done(),
	)

	start := time.Now()
	require.NoError(t, r.Run(ctx))

	require.Len(t, task.calls, 3)
	for _, call := range task.calls {
		assert.Equal(t, batch(1, 2, 3), call)
	}
	assert.Equal(t, 1, src.commits)
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
}

func TestRun_FatalErrorStopsWithoutCommit(t *testing.T) {
	fatal := &sink.ConfigurationError{Source: "record value"}
	r, src, task, ctx := newRunner(t, [][]sink.Record{batch(1), batch(2)}, putCall{err: fatal})

	err := r.Run(ctx)

	assert.ErrorIs(t, err, fatal)
	assert.Len(t, task.calls, 1)
	assert.Equal(t, 0, src.commits)
}

func TestRun_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{polls: [][]sink.Record{batch(1)}, cancel: cancel}
	task := &fakeTask{results: []putCall{retriable(time.Hour)}}
	r := New(src, task, testutil.NewTestLogger())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	require.NoError(t, r.Run(ctx))
	assert.Len(t, task.calls, 1)
	assert.Equal(t, 0, src.commits)
}

func TestRun_RetriesCommit(t *testing.T) {
	r, src, _, ctx := newRunner(t, [][]sink.Record{batch(1)}, done())
	src.commitErrs = []error{errors.New("coordinator loading")}

	require.NoError(t, r.Run(ctx))
	assert.Equal(t, 2, src.commits)
}

func TestRun_CommitFailure(t *testing.T) {
	r, src, _, ctx := newRunner(t, [][]sink.Record{batch(1)}, done())
	boom := errors.New("rebalance in progress")
	src.commitErrs = []error{boom, boom, boom}

	err := r.Run(ctx)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, src.commits)
}

func TestRun_EmptyPollIsDelivered(t *testing.T) {
	r, src, task, ctx := newRunner(t, [][]sink.Record{{}}, done())

	require.NoError(t, r.Run(ctx))
	require.Len(t, task.calls, 1)
	assert.Empty(t, task.calls[0])
	assert.Equal(t, 1, src.commits)
}
