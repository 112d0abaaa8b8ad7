package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error {
	return f(ctx)
}

type testCloser struct {
	closed int
	doneCh chan struct{}
}

func (c *testCloser) Close() error {
	c.closed++
	if c.closed == 1 {
		close(c.doneCh)
	}
	return nil
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	err := errs.Add(errors.New("a"), nil, errors.New("b")).Aggregate()
	require.EqualError(t, err, "Multiple errors:\na\nb")

	errs.Add(context.Canceled)
	require.True(t, errors.Is(errs.Aggregate(), context.Canceled))
}

func TestNamedRun(t *testing.T) {
	r := NamedRun("x", runFunc(func(context.Context) error { return nil }))
	require.Equal(t, "x", r.(Named).Name())
}

func TestRunnerWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	failure := errors.New("failed")
	r := NewRunnerWith(ctx).Go(
		runFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		runFunc(func(context.Context) error {
			cancel()
			return failure
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	require.Equal(t, []error{failure}, err.(*AggregatedError).Errors)
}

func TestRunWithContextCloser(t *testing.T) {
	closer := &testCloser{doneCh: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-closer.doneCh
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closer.closed)

	closer = &testCloser{doneCh: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), closer, func() error {
		return errors.New("done")
	})
	require.EqualError(t, err, "done")
	require.Equal(t, 1, closer.closed)
}
