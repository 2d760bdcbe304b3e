// Package batch runs work over fixed-size chunks with a bound on how many
// chunks are in flight at once.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Func processes one chunk of items.
type Func[T, R any] func(ctx context.Context, items []T) (R, error)

// Result is the settled outcome of one chunk. Index is the chunk's position
// in submission order.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Chunk splits items into consecutive slices of at most size elements.
// A non-positive size yields a single chunk.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// Run partitions items into chunks of batchSize and calls fn for each chunk,
// never running more than concurrency chunks at once. Every chunk is
// submitted and awaited; a failing chunk does not stop the others. Results
// are returned in submission order, one per chunk.
func Run[T, R any](ctx context.Context, items []T, concurrency, batchSize int, fn Func[T, R]) []Result[R] {
	chunks := Chunk(items, batchSize)
	if len(chunks) == 0 {
		return []Result[R]{}
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result[R], len(chunks))

	// Chunk errors are recorded in results rather than returned to the group so
	// that one failure never cancels sibling chunks.
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			value, err := fn(ctx, chunk)
			results[i] = Result[R]{Index: i, Value: value, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Errors collects the non-nil chunk errors from results.
func Errors[R any](results []Result[R]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
