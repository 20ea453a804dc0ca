package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPreservesInputOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	results, err := Map(context.Background(), 8, items, func(_ context.Context, v int) int {
		if v%7 == 0 {
			time.Sleep(time.Millisecond)
		}
		return v * 2
	})
	require.NoError(t, err)
	require.Len(t, results, 100)
	for i, r := range results {
		assert.Equal(t, i*2, r)
	}
}

func TestMapEmptyInput(t *testing.T) {
	results, err := Map(context.Background(), 4, nil, func(_ context.Context, v int) int { return v })
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []int{1, 2, 3}
	_, err := Map(ctx, 2, items, func(_ context.Context, v int) int { return v })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWaitsForAllJobs(t *testing.T) {
	var count int64
	Run(context.Background(), 5, func(_ context.Context, _ int) {
		atomic.AddInt64(&count, 1)
	})
	assert.Equal(t, int64(5), count)
}
