// Package coordinate runs lexing plus parsing, or lexing plus validation,
// across the chunk ranges produced by package partition on a fixed-size
// worker pool, and merges the per-chunk results back into file order.
//
// Each chunk's output is worker-local until merge, which happens only after
// every launched goroutine has joined, so no worker ever observes another
// worker's in-progress state. Fail-fast cancellation uses
// golang.org/x/sync/errgroup so that the first error stops new chunks from
// starting while every chunk already running still joins before returning.
package coordinate

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"roseh.moe/pkg/jsonkit/parser"
	"roseh.moe/pkg/jsonkit/partition"
	"roseh.moe/pkg/jsonkit/validate"
	"roseh.moe/pkg/jsonkit/value"
)

// Config configures a Coordinator.
type Config struct {
	// Workers is the size of the fixed worker pool. Zero or negative
	// selects max(1, logical_cores-1).
	Workers int
	// ChunksPerWorker oversubscribes the partitioner: the array is split
	// into Workers*ChunksPerWorker ranges instead of one per worker, so
	// progress reporting is finer-grained at the cost of more synthetic
	// wrapping. Zero or negative is treated as 1 (one chunk per worker,
	// every worker runs concurrently immediately).
	ChunksPerWorker int
	// FailFast stops launching new chunks after the first fatal error,
	// but still joins every chunk already running before returning.
	FailFast bool
	// OnProgress, if set, is invoked after each chunk completes. It must
	// be safe to call concurrently from any worker goroutine.
	OnProgress func(Progress)
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}

func (c Config) chunksPerWorker() int {
	if c.ChunksPerWorker > 0 {
		return c.ChunksPerWorker
	}
	return 1
}

// Progress is a snapshot of a coordinated run's shared counters.
type Progress struct {
	ProcessedChunks int64
	TotalChunks     int64
	ProcessedBytes  int64
	TotalBytes      int64
	ErrorsFound     int64
	IsComplete      bool
}

// counters holds the atomic, increment-only progress state shared by every
// goroutine in a run. It is the only state a worker touches outside of its
// own chunk's output.
type counters struct {
	processedChunks atomic.Int64
	processedBytes  atomic.Int64
	errorsFound     atomic.Int64
	totalChunks     int64
	totalBytes      int64
}

// Snapshot reads the current counters. Safe to call concurrently with the
// run that owns them; an in-progress Snapshot may observe any point between
// two chunk completions.
func (c *counters) Snapshot(complete bool) Progress {
	return Progress{
		ProcessedChunks: c.processedChunks.Load(),
		TotalChunks:     c.totalChunks,
		ProcessedBytes:  c.processedBytes.Load(),
		TotalBytes:      c.totalBytes,
		ErrorsFound:     c.errorsFound.Load(),
		IsComplete:      complete,
	}
}

// Coordinator runs a fixed-size pool of chunk workers over one input buffer.
type Coordinator struct {
	cfg Config
}

// NewCoordinator returns a Coordinator configured by cfg.
func NewCoordinator(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg}
}

// ParseParallel partitions data's top-level array and parses each chunk
// concurrently, returning an Array value whose elements are the
// concatenation of every chunk's elements in file order. For any worker
// count >= 1, the result equals parser.Parse(data) for syntactically valid
// array-rooted input.
func (c *Coordinator) ParseParallel(data []byte) (value.Value, error) {
	ranges := partition.Split(data, c.cfg.workers()*c.cfg.chunksPerWorker())
	if len(ranges) == 0 {
		return value.NewArray(), nil
	}
	if isWholeBufferFallback(data, ranges) {
		v, err := parser.Parse(data)
		cs := &counters{totalChunks: 1, totalBytes: int64(len(data))}
		cs.processedChunks.Store(1)
		cs.processedBytes.Store(int64(len(data)))
		if err != nil {
			cs.errorsFound.Store(1)
		}
		c.reportProgress(cs)
		if err != nil {
			return value.Value{}, err
		}
		return v, nil
	}

	cs := &counters{totalChunks: int64(len(ranges)), totalBytes: int64(len(data))}
	results := make([][]value.Value, len(ranges))

	err := c.assign(context.Background(), len(ranges), func(ctx context.Context, i int) error {
		r := ranges[i]
		chunk := wrapArray(data[r.ByteStart:r.ByteEnd])

		v, err := parser.Parse(chunk)
		if err == nil {
			elems, elemErr := v.Elements()
			if elemErr != nil {
				err = elemErr
			} else {
				results[i] = elems
			}
		}
		if err != nil {
			cs.errorsFound.Add(1)
		}

		cs.processedChunks.Add(1)
		cs.processedBytes.Add(int64(r.ByteEnd - r.ByteStart))
		c.reportProgress(cs)

		return err
	})
	if err != nil {
		return value.Value{}, err
	}

	var merged []value.Value
	for _, elems := range results {
		merged = append(merged, elems...)
	}
	return value.NewArray(merged...), nil
}

// ValidateParallel partitions data's top-level array and validates each
// chunk concurrently in the given mode, adjusting each diagnostic's line
// number by its chunk's offset in the original buffer so the merged
// diagnostics read as if produced by a single sequential validation.
//
// Column numbers are not adjusted: a diagnostic anchored to the synthetic
// '[' or ']' wrapper byte keeps the column it was given inside the
// synthetic chunk, a known coarseness rather than an oversight.
func (c *Coordinator) ValidateParallel(data []byte, mode validate.Mode) (validate.Result, error) {
	ranges := partition.Split(data, c.cfg.workers()*c.cfg.chunksPerWorker())
	if len(ranges) == 0 {
		return validate.Result{Valid: true}, nil
	}
	if isWholeBufferFallback(data, ranges) {
		res := validate.Validate(data, mode)
		cs := &counters{totalChunks: 1, totalBytes: int64(len(data))}
		cs.processedChunks.Store(1)
		cs.processedBytes.Store(int64(len(data)))
		if !res.Valid {
			cs.errorsFound.Store(int64(len(res.Diagnostics)))
		}
		c.reportProgress(cs)
		return res, nil
	}

	cs := &counters{totalChunks: int64(len(ranges)), totalBytes: int64(len(data))}
	results := make([]validate.Result, len(ranges))

	err := c.assign(context.Background(), len(ranges), func(ctx context.Context, i int) error {
		r := ranges[i]
		chunk := wrapArray(data[r.ByteStart:r.ByteEnd])

		res := validate.Validate(chunk, mode)
		for j := range res.Diagnostics {
			res.Diagnostics[j].Pos.Line += r.LineOffset
		}
		results[i] = res

		if !res.Valid {
			cs.errorsFound.Add(int64(len(res.Diagnostics)))
		}
		cs.processedChunks.Add(1)
		cs.processedBytes.Add(int64(r.ByteEnd - r.ByteStart))
		c.reportProgress(cs)

		return nil
	})
	if err != nil {
		return validate.Result{}, err
	}

	merged := validate.Result{Valid: true}
	for _, res := range results {
		merged.Diagnostics = append(merged.Diagnostics, res.Diagnostics...)
		merged.TokenCount += res.TokenCount
		merged.LineCount += res.LineCount
		if !res.Valid {
			merged.Valid = false
		}
	}
	return merged, nil
}

func (c *Coordinator) reportProgress(cs *counters) {
	if c.cfg.OnProgress == nil {
		return
	}
	complete := cs.processedChunks.Load() >= cs.totalChunks
	c.cfg.OnProgress(cs.Snapshot(complete))
}

// isWholeBufferFallback reports whether ranges is partition.Split's
// whole-buffer fallback (returned for non-array input, or for an array
// whose interior could not be tracked) rather than a genuine set of
// array-element ranges. The fallback range spans all of data, including
// its own brackets if it has any, so it must be parsed or validated as-is
// instead of being re-wrapped as an array interior.
func isWholeBufferFallback(data []byte, ranges []partition.ChunkRange) bool {
	return len(ranges) == 1 && ranges[0].ByteStart == 0 && ranges[0].ByteEnd == len(data)
}

func wrapArray(interior []byte) []byte {
	out := make([]byte, 0, len(interior)+2)
	out = append(out, '[')
	out = append(out, interior...)
	out = append(out, ']')
	return out
}

// assign launches one goroutine per chunk, gated by a semaphore.Weighted
// holding at most Workers permits, so that at most Workers chunks ever run
// at once: with one chunk per worker (the default) every goroutine acquires
// its permit immediately and all run concurrently, which is the same
// outcome as statically assigning chunk i to worker i for equal-cost
// chunks; with ChunksPerWorker > 1, later chunks simply queue on the
// semaphore as earlier ones finish, giving finer progress granularity
// without changing the concurrency ceiling.
func (c *Coordinator) assign(ctx context.Context, n int, fn func(context.Context, int) error) error {
	sem := semaphore.NewWeighted(int64(c.cfg.workers()))

	if !c.cfg.FailFast {
		var wg sync.WaitGroup
		var mu sync.Mutex
		var firstErr error

		for i := 0; i < n; i++ {
			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				break
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer sem.Release(1)
				if err := fn(ctx, i); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()
		return firstErr
	}

	grp, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i := i
		grp.Go(func() error {
			defer sem.Release(1)
			return fn(gctx, i)
		})
	}
	return grp.Wait()
}
