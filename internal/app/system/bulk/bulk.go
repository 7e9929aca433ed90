// Package bulk applies independent create operations across a batch and
// partitions the outcome into created records and per-item errors.
//
// A domain failure (validation, conflict, not found) on one item is
// recorded and the batch continues; earlier successes are never rolled
// back. An internal failure (storage unavailable and the like) aborts the
// batch and is returned to the caller.
package bulk

import (
	"context"
	"sync"

	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"golang.org/x/sync/errgroup"
)

// ItemError describes one failed item. Index is the item's position in
// the request so callers can correlate errors with their input.
type ItemError struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Result is the partitioned outcome. Created and Errors each preserve
// input order.
type Result[T any] struct {
	Created []T         `json:"created"`
	Errors  []ItemError `json:"errors"`
}

// CreateFunc attempts to persist one item.
type CreateFunc[In, Out any] func(ctx context.Context, item In) (Out, error)

// NameFunc names an item for error reporting.
type NameFunc[In any] func(item In) string

// Run processes items sequentially in input order.
func Run[In, Out any](ctx context.Context, items []In, name NameFunc[In], create CreateFunc[In, Out]) (Result[Out], error) {
	res := Result[Out]{Created: make([]Out, 0, len(items)), Errors: []ItemError{}}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return res, apierr.Internal(err)
		}
		out, err := create(ctx, item)
		if err != nil {
			if !apierr.IsDomain(err) {
				return res, err
			}
			res.Errors = append(res.Errors, ItemError{Index: i, Name: name(item), Error: apierr.From(err).Message})
			continue
		}
		res.Created = append(res.Created, out)
	}
	return res, nil
}

// outcome is the result slot for one input index.
type outcome[Out any] struct {
	done bool
	out  Out
	err  error
}

// RunConcurrent processes up to limit items at a time. Each item writes
// only its own slot; slots are merged in input order once every item has
// finished, so the result is ordered exactly as Run would order it. The
// storage layer's unique indexes remain the arbiter for ids submitted
// twice in one batch. limit <= 1 falls back to Run.
func RunConcurrent[In, Out any](ctx context.Context, limit int, items []In, name NameFunc[In], create CreateFunc[In, Out]) (Result[Out], error) {
	if limit <= 1 {
		return Run(ctx, items, name, create)
	}

	slots := make([]outcome[Out], len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	var fatal error

	for i, item := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := create(gctx, item)
			if err != nil && !apierr.IsDomain(err) {
				mu.Lock()
				if fatal == nil {
					fatal = err
				}
				mu.Unlock()
				return err
			}
			slots[i] = outcome[Out]{done: true, out: out, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := Result[Out]{Created: make([]Out, 0, len(items)), Errors: []ItemError{}}
	for i, s := range slots {
		if !s.done {
			continue
		}
		if s.err != nil {
			res.Errors = append(res.Errors, ItemError{Index: i, Name: name(items[i]), Error: apierr.From(s.err).Message})
			continue
		}
		res.Created = append(res.Created, s.out)
	}
	if fatal != nil {
		return res, fatal
	}
	if err := ctx.Err(); err != nil {
		return res, apierr.Internal(err)
	}
	return res, nil
}
