package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"minimum", MinChunkSize, false},
		{"default", DefaultChunkSize, false},
		{"maximum", MaxChunkSize, false},
		{"zero", 0, true},
		{"too large", MaxChunkSize + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New[int](tt.size, 1)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidChunkSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, p.ChunkSize())
		})
	}
}

func TestChunks(t *testing.T) {
	p, err := New[int](10, 1)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{0, 10}, {10, 20}, {20, 25}}, p.Chunks(25))
	assert.Equal(t, [][2]int{{0, 10}}, p.Chunks(10))
	assert.Empty(t, p.Chunks(0))
}

func TestRun_VisitsEveryItemOnce(t *testing.T) {
	for _, concurrency := range []int{0, 1, 3} {
		p, err := New[int](7, concurrency)
		require.NoError(t, err)

		seen := make([]int32, 50)
		err = p.Run(context.Background(), seq(50), func(_ context.Context, chunk []int, offset int) error {
			for i, v := range chunk {
				assert.Equal(t, offset+i, v)
				atomic.AddInt32(&seen[v], 1)
			}
			return nil
		})
		require.NoError(t, err)
		for i, n := range seen {
			assert.Equal(t, int32(1), n, "item %d with concurrency %d", i, concurrency)
		}
	}
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	p, err := New[int](1, 2)
	require.NoError(t, err)

	var active, peak int32
	err = p.Run(context.Background(), seq(10), func(context.Context, []int, int) error {
		n := atomic.AddInt32(&active, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(2))
}

func TestRun_Progress(t *testing.T) {
	p, err := New[int](10, 2)
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		reports []Progress
	)
	p.WithProgress(func(pr Progress) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, pr)
	})

	require.NoError(t, p.Run(context.Background(), seq(25), func(context.Context, []int, int) error { return nil }))

	require.Len(t, reports, 3)
	last := reports[len(reports)-1]
	assert.Equal(t, 25, last.Total)
	assert.Equal(t, 25, last.Done)
	assert.InDelta(t, 100.0, last.Percent(), 1e-9)
}

func TestRun_Errors(t *testing.T) {
	p, err := New[int](10, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = p.Run(context.Background(), seq(25), func(_ context.Context, _ []int, offset int) error {
		if offset == 10 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chunk at 10")

	assert.ErrorIs(t, p.Run(context.Background(), seq(1), nil), ErrNilFunc)
	assert.NoError(t, p.Run(context.Background(), nil, func(context.Context, []int, int) error { return boom }))
}

func TestRun_Cancelled(t *testing.T) {
	p, err := New[int](1, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Run(ctx, seq(5), func(ctx context.Context, _ []int, _ int) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgress_Percent(t *testing.T) {
	assert.InDelta(t, 40.0, Progress{Total: 5, Done: 2}.Percent(), 1e-9)
	assert.InDelta(t, 100.0, Progress{}.Percent(), 1e-9)
}
