package predict

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/inodb/winvep/internal/window"
)

// Options controls how a batch is fed to a predictor.
type Options struct {
	BatchSize int // rows per Predict call; 0 means 512
	Workers   int // concurrent Predict calls; 0 means runtime.NumCPU()
}

// chunk is a contiguous row range of a batch.
type chunk struct {
	Seq   int
	Start int
	End   int
}

// chunkResult holds the predictions for one chunk.
type chunkResult struct {
	Seq   int
	Start int
	Rows  [][]float64
	Err   error
}

// Run predicts every row of batch and returns the predictions in row order.
// Rows are split into chunks of opts.BatchSize and predicted on a pool of
// workers; results are reassembled by chunk sequence number.
func Run(ctx context.Context, batch *window.Batch, p Predictor, opts Options) ([][]float64, error) {
	size := opts.BatchSize
	if size <= 0 {
		size = 512
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	total := batch.Len()
	out := make([][]float64, total)
	if total == 0 {
		return out, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan chunk)
	go func() {
		defer close(items)
		seq := 0
		for start := 0; start < total; start += size {
			c := chunk{Seq: seq, Start: start, End: min(start+size, total)}
			select {
			case items <- c:
			case <-ctx.Done():
				return
			}
			seq++
		}
	}()

	results := predictChunks(ctx, batch, p, items, workers)

	err := collectOrdered(results, func(r chunkResult) error {
		if r.Err != nil {
			cancel()
			return r.Err
		}
		copy(out[r.Start:], r.Rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// predictChunks runs a worker pool over items. Results are sent in arrival
// order; use collectOrdered to consume them in sequence order.
func predictChunks(ctx context.Context, batch *window.Batch, p Predictor, items <-chan chunk, workers int) <-chan chunkResult {
	results := make(chan chunkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for c := range items {
				rows, err := predictChunk(ctx, batch, p, c)
				results <- chunkResult{Seq: c.Seq, Start: c.Start, Rows: rows, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func predictChunk(ctx context.Context, batch *window.Batch, p Predictor, c chunk) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seqs, err := batch.Sequences(c.Start, c.End)
	if err != nil {
		return nil, err
	}
	rows, err := p.Predict(ctx, seqs)
	if err != nil {
		return nil, fmt.Errorf("predict rows [%d, %d): %w", c.Start, c.End, err)
	}
	if len(rows) != len(seqs) {
		return nil, fmt.Errorf("predictor returned %d rows for rows [%d, %d)", len(rows), c.Start, c.End)
	}
	return rows, nil
}

// collectOrdered calls fn for each result in sequence-number order,
// buffering out-of-order results until the next expected one arrives.
// Blocks until results is closed.
func collectOrdered(results <-chan chunkResult, fn func(chunkResult) error) error {
	pending := make(map[int]chunkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
