package query

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/logger"
	"github.com/forbearing/tstore/resolve"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/store"
	"github.com/forbearing/tstore/types"
)

// DefaultBatchSize is the suggested Stage A batch size.
const DefaultBatchSize = 1000

// Planner runs the two-stage pipeline against one polymorphic family's Store.
type Planner struct {
	st        store.Store
	rt        *router.Router
	batchSize int
}

// New builds a Planner. batchSize <= 0 falls back to DefaultBatchSize.
func New(st store.Store, rt *router.Router, batchSize int) *Planner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Planner{st: st, rt: rt, batchSize: batchSize}
}

// Result streams the records a query yields, in the caller's declared sort
// order within each Stage A batch.
type Result interface {
	Next(ctx context.Context) bool
	Record() types.Record
	Err() error
	Close(ctx context.Context) error
}

// Run evaluates q against lookupList/cutoff, resolving every matched key to
// its winner and applying the Stage B skip rules: tombstone,
// superseded-beyond-the-filter, and subtype-not-assignable all drop the key
// silently.
func (p *Planner) Run(ctx context.Context, q *Query, requestedType any, lookupList []types.ID, cutoff types.ID, freezeImports bool) (Result, error) {
	if q.err != nil {
		return nil, q.err
	}
	chain, ok := p.rt.TypeChain(requestedType)
	if !ok {
		return nil, errors.Newf("query: type %T is not registered with the router", requestedType)
	}

	probe, err := p.st.Probe(ctx, store.ProbeQuery{
		Filter:    q.filter,
		Chain:     chain,
		Sort:      q.sorts,
		BatchSize: p.batchSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "query: probe")
	}
	return &planResult{
		planner:       p,
		probe:         probe,
		requestedType: requestedType,
		lookupList:    lookupList,
		cutoff:        cutoff,
		freezeImports: freezeImports,
	}, nil
}

type planResult struct {
	planner       *Planner
	probe         store.ProbeIterator
	requestedType any
	lookupList    []types.ID
	cutoff        types.ID
	freezeImports bool

	queue []types.Record
	pos   int
	done  bool
	err   error
	rec   types.Record
}

func (r *planResult) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	for {
		if r.pos < len(r.queue) {
			r.rec = r.queue[r.pos]
			r.pos++
			return true
		}
		if r.done {
			return false
		}
		if err := r.fillBatch(ctx); err != nil {
			r.err = err
			return false
		}
		if len(r.queue) == 0 && r.done {
			return false
		}
	}
}

func (r *planResult) fillBatch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	order, ids, err := collectBatch(ctx, r.probe, r.planner.batchSize)
	if err != nil {
		return err
	}
	if len(order) < r.planner.batchSize {
		r.done = true
	}
	if len(order) == 0 {
		r.queue, r.pos = nil, 0
		return nil
	}

	winners, err := resolve.PickWinners(ctx, r.planner.st, order, r.lookupList, r.cutoff, r.freezeImports)
	if err != nil {
		return err
	}

	results := make([]types.Record, 0, len(order))
	for _, key := range order {
		winner, ok := winners[key]
		if !ok {
			continue
		}
		if resolve.IsTombstone(winner) {
			continue
		}
		if _, matched := ids[key][winner.RecordID()]; !matched {
			continue
		}
		if !r.planner.rt.AssignableFrom(r.requestedType, winner.TypeChain()) {
			continue
		}
		results = append(results, winner)
	}
	logger.Query.Debugw("resolved batch", "probed_keys", len(order), "yielded", len(results))
	r.queue, r.pos = results, 0
	return nil
}

func (r *planResult) Record() types.Record { return r.rec }

func (r *planResult) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.probe.Err()
}

func (r *planResult) Close(ctx context.Context) error { return r.probe.Close(ctx) }

// collectBatch pulls probe hits until size unique keys have been seen (or
// the probe is exhausted), returning the keys in first-seen order and, per
// key, the set of ids Stage A matched for it.
func collectBatch(ctx context.Context, probe store.ProbeIterator, size int) ([]string, map[string]map[types.ID]struct{}, error) {
	order := make([]string, 0, size)
	ids := make(map[string]map[types.ID]struct{}, size)
	for len(order) < size {
		if !probe.Next(ctx) {
			break
		}
		hit := probe.Hit()
		set, ok := ids[hit.Key]
		if !ok {
			set = make(map[types.ID]struct{}, 1)
			ids[hit.Key] = set
			order = append(order, hit.Key)
		}
		set[hit.ID] = struct{}{}
	}
	return order, ids, probe.Err()
}
