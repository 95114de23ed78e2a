package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/edutrack/internal/testfixtures"
)

const waitFor = 2 * time.Second

func manualFactory(clock *testfixtures.Clock) TickerFactory {
	return func(period time.Duration) Ticker {
		return clock.NewTicker(period)
	}
}

func recv(t *testing.T, ch <-chan time.Time) time.Time {
	t.Helper()
	select {
	case at := <-ch:
		return at
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for job run")
		return time.Time{}
	}
}

func recordingJob(name string, interval time.Duration, runs chan<- time.Time) Job {
	return Job{
		Name:     name,
		Interval: interval,
		Run: func(ctx context.Context, now time.Time) error {
			runs <- now
			return nil
		},
	}
}

func TestRunnerRunsImmediatelyThenOnTicks(t *testing.T) {
	clock := testfixtures.NewClock(time.Time{})
	sweeps := make(chan time.Time, 8)

	runner := NewRunner(nil, manualFactory(clock), clock.Now, recordingJob("sweep", time.Minute, sweeps))
	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	assert.Equal(t, clock.Now(), recv(t, sweeps))

	next := clock.Advance(time.Minute)
	assert.Equal(t, next, recv(t, sweeps))

	clock.Advance(30 * time.Second)
	select {
	case at := <-sweeps:
		t.Fatalf("unexpected run at %v", at)
	default:
	}
}

func TestRunnerJobsTickIndependently(t *testing.T) {
	clock := testfixtures.NewClock(time.Time{})
	refreshes := make(chan time.Time, 32)
	sweeps := make(chan time.Time, 32)

	runner := NewRunner(nil, manualFactory(clock), clock.Now,
		recordingJob("refresh", 5*time.Second, refreshes),
		recordingJob("sweep", time.Minute, sweeps),
	)
	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	recv(t, refreshes)
	recv(t, sweeps)

	for i := 0; i < 12; i++ {
		clock.Advance(5 * time.Second)
		recv(t, refreshes)
	}
	recv(t, sweeps)
}

func TestRunnerKeepsRunningAfterFailure(t *testing.T) {
	clock := testfixtures.NewClock(time.Time{})
	core, logs := observer.New(zap.ErrorLevel)
	var calls atomic.Int32
	done := make(chan time.Time, 4)

	job := Job{
		Name:     "refresh",
		Interval: time.Second,
		Run: func(ctx context.Context, now time.Time) error {
			defer func() { done <- now }()
			if calls.Add(1) == 1 {
				return errors.New("store unavailable")
			}
			return nil
		},
	}
	runner := NewRunner(zap.New(core), manualFactory(clock), clock.Now, job)
	require.NoError(t, runner.Start(context.Background()))

	recv(t, done)
	clock.Advance(time.Second)
	recv(t, done)
	runner.Stop()

	assert.Equal(t, int32(2), calls.Load())
	require.Equal(t, 1, logs.FilterMessage("scheduled job failed").Len())
	assert.Equal(t, "refresh", logs.All()[0].ContextMap()["job"])
}

func TestRunnerStopReleasesTickers(t *testing.T) {
	clock := testfixtures.NewClock(time.Time{})
	var tickers []*testfixtures.ManualTicker
	factory := func(period time.Duration) Ticker {
		ticker := clock.NewTicker(period)
		tickers = append(tickers, ticker)
		return ticker
	}
	runs := make(chan time.Time, 4)

	runner := NewRunner(nil, factory, clock.Now, recordingJob("sweep", time.Minute, runs))
	require.NoError(t, runner.Start(context.Background()))
	assert.ErrorIs(t, runner.Start(context.Background()), ErrAlreadyStarted)
	recv(t, runs)

	runner.Stop()
	runner.Stop()

	require.Len(t, tickers, 1)
	assert.True(t, tickers[0].Stopped())
}

func TestRunnerStopsWithContext(t *testing.T) {
	clock := testfixtures.NewClock(time.Time{})
	runs := make(chan time.Time, 4)
	ctx, cancel := context.WithCancel(context.Background())

	runner := NewRunner(nil, manualFactory(clock), clock.Now, recordingJob("sweep", time.Minute, runs))
	require.NoError(t, runner.Start(ctx))
	recv(t, runs)

	cancel()
	runner.Stop()

	clock.Advance(time.Minute)
	select {
	case at := <-runs:
		t.Fatalf("unexpected run at %v after cancel", at)
	default:
	}
}
