// Package writer commits prepared documents to a store.Store in batches, retrying
// transient failures and recording a checkpoint after every committed batch.
package writer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allspots/go-poi-import/checkpoint"
	"github.com/allspots/go-poi-import/retry"
	"github.com/allspots/go-poi-import/store"
	"github.com/sfomuseum/go-timings"
)

const DefaultBatchSize = 250

const DefaultBatchSleep = 200 * time.Millisecond

type Options struct {
	// BatchSize is clamped to [1, store.MaxBatchSize()].
	BatchSize int
	// Sleep is the pause between two committed batches.
	Sleep  time.Duration
	Policy *retry.Policy
	// Checkpointer is optional. When set, progress is saved after every batch under the
	// key passed to Write.
	Checkpointer checkpoint.Checkpointer
	// Monitor is optional and is signalled once per committed document.
	Monitor timings.Monitor
	Logger  *slog.Logger
}

type Result struct {
	Total   int
	Resumed int
	Written int
	Batches int
}

// Committed is the offset reached at the end of the run, including documents committed
// by a previous run.
func (r *Result) Committed() int {
	return r.Resumed + r.Written
}

type Writer struct {
	store   store.Store
	options *Options
}

func NewWriter(s store.Store, opts *Options) *Writer {

	if opts == nil {
		opts = &Options{}
	}

	w := &Writer{
		store:   s,
		options: opts,
	}

	return w
}

func (w *Writer) BatchSize() int {

	sz := w.options.BatchSize

	if sz <= 0 {
		sz = DefaultBatchSize
	}

	max := w.store.MaxBatchSize()

	if max > 0 && sz > max {
		sz = max
	}

	return sz
}

// Write commits 'mutations' in order. 'key' identifies the input for checkpointing; a
// previous checkpoint for 'key' skips the documents it covers and a completed run clears it.
func (w *Writer) Write(ctx context.Context, key string, mutations []*store.Mutation) (*Result, error) {

	logger := w.options.Logger

	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With("key", key)

	policy := w.options.Policy

	if policy == nil {
		policy = retry.DefaultPolicy()
	}

	policy = policy.WithClassifier(w.store.IsTransient)

	result := &Result{
		Total: len(mutations),
	}

	cp := w.options.Checkpointer

	if cp != nil {

		offset, err := cp.Load(ctx, key)

		if err != nil {
			return nil, fmt.Errorf("Failed to load checkpoint, %w", err)
		}

		if offset > 0 {

			if offset >= len(mutations) {
				logger.Info("Input already committed", "offset", offset, "total", len(mutations))
				result.Resumed = len(mutations)
				return result, nil
			}

			logger.Info("Resume from checkpoint", "offset", offset, "total", len(mutations))
			result.Resumed = offset
		}
	}

	batch_size := w.BatchSize()
	pending := mutations[result.Resumed:]

	for len(pending) > 0 {

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
			// pass
		}

		n := batch_size

		if n > len(pending) {
			n = len(pending)
		}

		batch := pending[:n]
		pending = pending[n:]

		commit := func(ctx context.Context) error {
			return w.store.Commit(ctx, batch)
		}

		err := policy.Do(ctx, commit)

		if err != nil {
			return result, fmt.Errorf("Failed to commit batch at offset %d, %w", result.Committed(), err)
		}

		result.Written += n
		result.Batches += 1

		if cp != nil {

			err := cp.Save(ctx, key, result.Committed())

			if err != nil {
				return result, fmt.Errorf("Failed to save checkpoint, %w", err)
			}
		}

		if w.options.Monitor != nil {

			for i := 0; i < n; i++ {
				go w.options.Monitor.Signal(ctx)
			}
		}

		logger.Debug("Batch committed", "committed", result.Committed(), "total", result.Total)

		if len(pending) > 0 && w.options.Sleep > 0 {

			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(w.options.Sleep):
				// pass
			}
		}
	}

	if cp != nil {

		err := cp.Clear(ctx, key)

		if err != nil {
			return result, fmt.Errorf("Failed to clear checkpoint, %w", err)
		}
	}

	return result, nil
}
