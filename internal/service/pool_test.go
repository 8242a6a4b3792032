package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunPool_PreservesOrder(t *testing.T) {
	inputs := []int{5, 1, 4, 2, 3}
	got := runPool(context.Background(), 3, inputs, func(_ context.Context, n int) (int, bool) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, true
	})
	assert.Equal(t, []int{50, 10, 40, 20, 30}, got)
}

func TestRunPool_DropsFailed(t *testing.T) {
	got := runPool(context.Background(), 2, []string{"a", "", "b"}, func(_ context.Context, s string) (string, bool) {
		return s, s != ""
	})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRunPool_BoundedConcurrency(t *testing.T) {
	var inFlight, peak int32
	inputs := make([]int, 20)

	runPool(context.Background(), 4, inputs, func(_ context.Context, _ int) (int, bool) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 0, true
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}

func TestRunPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	got := runPool(ctx, 2, []int{1, 2, 3}, func(_ context.Context, n int) (int, bool) {
		atomic.AddInt32(&calls, 1)
		return n, true
	})
	assert.Empty(t, got)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRunPool_Empty(t *testing.T) {
	got := runPool(context.Background(), 0, []int(nil), func(_ context.Context, n int) (int, bool) {
		return n, true
	})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
