// Package batch fans a slice of cards out across a worker pool and runs
// each one through the inference engine, preserving input order in the
// returned results regardless of completion order.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/guarzo/variantctl/internal/model"
)

// Inferrer is the subset of *engine.Engine the driver depends on. Tests
// substitute a stub so batch behavior can be verified without the full
// rule stack.
type Inferrer interface {
	Infer(card model.CardRecord, channels []model.Channel) (model.VariantResult, error)
}

// Item is one unit of batch work: a card record paired with the product
// channels it should be evaluated against.
type Item struct {
	Card     model.CardRecord
	Channels []model.Channel
}

// Outcome pairs a batch Item's result with any error Infer returned for
// it. A per-card error never aborts the rest of the batch.
type Outcome struct {
	CardID string
	Result model.VariantResult
	Err    error
}

// Driver runs a fixed-size worker pool over batches of cards.
type Driver struct {
	engine  Inferrer
	workers int
}

// Config configures a Driver. Workers defaults to runtime.NumCPU(),
// capped at 10 the same way the teacher's ConcurrentFetcher caps itself
// to be respectful of downstream resources (the engine is pure CPU work
// here, but the cap also bounds how many cards race on the log writer
// inside Infer's invariant check).
type Config struct {
	Workers int
}

// NewDriver builds a Driver around engine using cfg's worker count.
func NewDriver(engine Inferrer, cfg Config) *Driver {
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
		if workers > 10 {
			workers = 10
		}
	}
	return &Driver{engine: engine, workers: workers}
}

// Run infers every item in items and returns one Outcome per item, in
// the same order items were given. ctx cancellation stops dispatch of
// new work and causes in-flight slots to shut down; already-completed
// outcomes are still returned.
func (d *Driver) Run(ctx context.Context, items []Item) []Outcome {
	if len(items) == 0 {
		return nil
	}

	outcomes := make([]Outcome, len(items))

	type job struct {
		index int
		item  Item
	}
	jobs := make(chan job, len(items))

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					outcomes[j.index] = Outcome{CardID: j.item.Card.ID, Err: ctx.Err()}
					continue
				default:
				}
				result, err := d.engine.Infer(j.item.Card, j.item.Channels)
				outcomes[j.index] = Outcome{CardID: j.item.Card.ID, Result: result, Err: err}
			}
		}()
	}

	for i, item := range items {
		jobs <- job{index: i, item: item}
	}
	close(jobs)

	wg.Wait()
	return outcomes
}

// BatchError pairs a failing card's identifier with its failure message,
// the shape spec.md §6's batch entry point surfaces errors in.
type BatchError struct {
	CardID  string
	Message string
}

// RunBatch is the spec.md §6 batch entry point: card-id-keyed results plus
// a parallel error list, never a thrown error. Run already guarantees
// input-order iteration for callers that need it (a Go map cannot express
// that guarantee); RunBatch re-shapes Run's ordered outcomes into the
// map+errors pair the serialised interface describes.
func (d *Driver) RunBatch(ctx context.Context, items []Item) (map[string]model.VariantResult, []BatchError) {
	outcomes := d.Run(ctx, items)
	results := make(map[string]model.VariantResult, len(outcomes))
	var errs []BatchError
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, BatchError{CardID: o.CardID, Message: o.Err.Error()})
			continue
		}
		results[o.CardID] = o.Result
	}
	return results, errs
}
