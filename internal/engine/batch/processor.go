// Package batch runs a function over a slice in fixed-size chunks with
// bounded concurrency. The engine uses it to score many households at once.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Chunking limits.
const (
	DefaultChunkSize   = 25
	MinChunkSize       = 1
	MaxChunkSize       = 1000
	DefaultConcurrency = 4
)

// Processor errors.
var (
	ErrInvalidChunkSize = errors.New("chunk size must be between 1 and 1000")
	ErrNilFunc          = errors.New("batch function cannot be nil")
)

// Func handles one chunk. offset is the index of chunk[0] in the full slice.
type Func[T any] func(ctx context.Context, chunk []T, offset int) error

// Progress is reported after each chunk completes.
type Progress struct {
	Total   int
	Done    int
	Elapsed time.Duration
}

// Percent returns Done as a percentage of Total.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Done) / float64(p.Total) * 100
}

// Processor splits work into chunks and runs up to concurrency chunks at once.
type Processor[T any] struct {
	chunkSize   int
	concurrency int
	onProgress  func(Progress)
}

// New returns a Processor. A concurrency below 1 runs chunks one at a time.
func New[T any](chunkSize, concurrency int) (*Processor[T], error) {
	if chunkSize < MinChunkSize || chunkSize > MaxChunkSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor[T]{chunkSize: chunkSize, concurrency: concurrency}, nil
}

// WithProgress registers fn to be called after each chunk. Calls are serialized.
func (p *Processor[T]) WithProgress(fn func(Progress)) *Processor[T] {
	p.onProgress = fn
	return p
}

// ChunkSize returns the configured chunk size.
func (p *Processor[T]) ChunkSize() int { return p.chunkSize }

// Chunks returns the [start, end) bounds of each chunk for n items.
func (p *Processor[T]) Chunks(n int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += p.chunkSize {
		out = append(out, [2]int{start, min(start+p.chunkSize, n)})
	}
	return out
}

// Run calls fn for every chunk of items. The first error cancels the
// context passed to the remaining chunks and is returned wrapped with the
// chunk offset. An empty slice is a no-op.
func (p *Processor[T]) Run(ctx context.Context, items []T, fn Func[T]) error {
	if fn == nil {
		return ErrNilFunc
	}
	if len(items) == 0 {
		return nil
	}

	start := time.Now()
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, bounds := range p.Chunks(len(items)) {
		chunk := items[bounds[0]:bounds[1]]
		offset := bounds[0]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := fn(gctx, chunk, offset); err != nil {
				return fmt.Errorf("chunk at %d: %w", offset, err)
			}
			mu.Lock()
			defer mu.Unlock()
			done += len(chunk)
			if p.onProgress != nil {
				p.onProgress(Progress{Total: len(items), Done: done, Elapsed: time.Since(start)})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
