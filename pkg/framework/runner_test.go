package framework

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func waitCancel(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerStopsOthers(t *testing.T) {
	failure := errors.New("link lost")
	err := NewRunner().Run(
		NamedRun("serve", RunnableFunc(func(context.Context) error { return failure })),
		RunnableFunc(waitCancel),
	)
	require.Equal(t, failure, err)
}

func TestRunnerCancelIsNotError(t *testing.T) {
	r := NewRunner()
	r.Go(RunnableFunc(waitCancel), RunnableFunc(waitCancel))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestRunnerAggregates(t *testing.T) {
	err1, err2 := errors.New("one"), errors.New("two")
	err := NewRunner().Run(
		RunnableFunc(func(context.Context) error { return err1 }),
		RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return err2
		}),
	)
	var agg *AggregatedError
	require.True(t, errors.As(err, &agg))
	assert.Equal(t, []error{err1, err2}, agg.Errors)
	assert.True(t, errors.Is(err, err1))
	assert.Equal(t, "multiple errors:\n  one\n  two", err.Error())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	only := errors.New("only")
	require.Equal(t, only, errs.Add(only).Aggregate())
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	var closes int
	closer := closerFunc(func() error {
		closes++
		close(unblock)
		return nil
	})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closes)

	closes = 0
	unblock = make(chan struct{})
	err = RunWithContextCloser(context.Background(), closer, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, closes)
}
