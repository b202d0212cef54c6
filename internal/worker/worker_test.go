package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"supplement-iq/internal/logging"
)

func TestPool(t *testing.T) {
	p := NewPool(3, logging.Discard())
	var mu sync.Mutex
	count := 0
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func(context.Context) {
			mu.Lock()
			count++
			mu.Unlock()
		}))
	}
	p.Stop()
	require.Equal(t, 5, count)
}

func TestPoolSubmitAfterStop(t *testing.T) {
	p := NewPool(0, logging.Discard())
	p.Stop()
	p.Stop()
	require.ErrorIs(t, p.Submit(func(context.Context) {}), ErrStopped)
}

func TestPoolSurvivesPanic(t *testing.T) {
	p := NewPool(1, logging.Discard())
	var ran int32
	require.NoError(t, p.Submit(func(context.Context) { panic("boom") }))
	require.NoError(t, p.Submit(nil))
	require.NoError(t, p.Submit(func(context.Context) { atomic.AddInt32(&ran, 1) }))
	p.Stop()
	require.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestDailyNext(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	d := NewDaily("refresh", loc, logging.Discard(), nil)

	now := time.Date(2024, 11, 3, 7, 30, 0, 0, time.UTC) // 00:30 PDT
	require.Equal(t, time.Date(2024, 11, 4, 0, 0, 0, 0, loc), d.Next(now))
}

func TestDailyRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan time.Time)
	var waits []time.Duration
	var mu sync.Mutex
	calls := 0

	d := NewDaily("refresh", time.UTC, logging.Discard(), func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return errors.New("first run fails")
		}
		return nil
	})
	d.now = func() time.Time { return time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC) }
	d.after = func(dur time.Duration) <-chan time.Time {
		mu.Lock()
		waits = append(waits, dur)
		mu.Unlock()
		return fired
	}

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	fired <- time.Time{}
	fired <- time.Time{}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 2, calls)
	require.GreaterOrEqual(t, len(waits), 2)
	require.Equal(t, 6*time.Hour, waits[0])
}
