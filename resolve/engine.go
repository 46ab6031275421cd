// Package resolve implements single-record temporal resolution by key and
// by identifier. query.Planner reuses PickWinners, the batched
// winner-selection walk, for Stage B of its two-stage pipeline, so the two
// components share one implementation of "what wins for this key" instead
// of diverging.
package resolve

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/logger"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/store"
	"github.com/forbearing/tstore/types"
)

// Engine resolves records against one polymorphic family's Store.
type Engine struct {
	st store.Store
	rt *router.Router
}

// New builds an Engine reading through st, decoding/assignability-checking
// through rt.
func New(st store.Store, rt *router.Router) *Engine {
	return &Engine{st: st, rt: rt}
}

// Resolve returns the winner for key under lookupList/cutoff, or nil if
// there is none or the winner is a tombstone.
func (e *Engine) Resolve(ctx context.Context, key string, lookupList []types.ID, cutoff types.ID, freezeImports bool) (types.Record, error) {
	winners, err := PickWinners(ctx, e.st, []string{key}, lookupList, cutoff, freezeImports)
	if err != nil {
		return nil, err
	}
	rec, ok := winners[key]
	if !ok {
		return nil, nil
	}
	if IsTombstone(rec) {
		return nil, nil
	}
	return rec, nil
}

// ResolveMany is the batched form of Resolve: the raw winner per key,
// tombstones included, so the caller can apply its own skip rules instead of
// Resolve's. query.Planner's Stage B calls PickWinners, which this wraps,
// directly.
func (e *Engine) ResolveMany(ctx context.Context, keys []string, lookupList []types.ID, cutoff types.ID, freezeImports bool) (map[string]types.Record, error) {
	return PickWinners(ctx, e.st, keys, lookupList, cutoff, freezeImports)
}

// LoadOrNull loads a record by its own Identifier: unlike the query
// planner's Stage B, which skips it silently, a subtype not assignable to
// requestedType is a reported TypeMismatch, never a silent nil.
func (e *Engine) LoadOrNull(ctx context.Context, id types.ID, requestedType any, cutoff types.ID) (types.Record, error) {
	if cutoff != types.Empty && types.CompareID(id, cutoff) > 0 {
		return nil, nil
	}
	rec, err := e.st.LoadByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve: load %s", id.Hex())
	}
	if rec == nil || IsTombstone(rec) {
		return nil, nil
	}
	if !e.rt.AssignableFrom(requestedType, rec.TypeChain()) {
		return nil, errors.Wrapf(types.ErrTypeMismatch, "stored type %q is not assignable to requested type", rec.TypeName())
	}
	return rec, nil
}

// PickWinners walks the base view for every version of every key in keys,
// ordered (key ASC, dataset DESC, id DESC), and keeps the first (highest
// dataset/id) version seen per key — the winner. With freezeImports, a
// version whose dataset is "frozen" against the record's own id is skipped
// in favor of the next version of that key.
func PickWinners(ctx context.Context, st store.Store, keys []string, lookupList []types.ID, cutoff types.ID, freezeImports bool) (map[string]types.Record, error) {
	winners := make(map[string]types.Record, len(keys))
	if len(keys) == 0 {
		return winners, nil
	}

	cur, err := st.QueryByKeys(ctx, keys, lookupList, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, "resolve: query by keys")
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		rec := cur.Record()
		if _, have := winners[rec.RecordKey()]; have {
			continue
		}
		if freezeImports && !visibleUnderFreeze(rec, lookupList) {
			continue
		}
		winners[rec.RecordKey()] = rec
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "resolve: cursor")
	}
	logger.Resolve.Debugw("resolved batch", "keys", len(keys), "winners", len(winners), "freeze_imports", freezeImports)
	return winners, nil
}

// visibleUnderFreeze applies the freeze-imports visibility rule: walking
// lookupList sorted by dataset Identifier descending, the first entry equal
// to rec's dataset validates it; any earlier entry (an entry encountered
// first in this descending walk) strictly less than rec's own id
// invalidates it.
func visibleUnderFreeze(rec types.Record, lookupList []types.ID) bool {
	sorted := append([]types.ID(nil), lookupList...)
	sort.Slice(sorted, func(i, j int) bool { return types.CompareID(sorted[i], sorted[j]) > 0 })
	for _, ds := range sorted {
		if ds == rec.DatasetID() {
			return true
		}
		if types.CompareID(ds, rec.RecordID()) < 0 {
			return false
		}
	}
	return false
}

// IsTombstone reports whether rec is a tombstone, shared by Resolve and by
// query.Planner's Stage B skip rule.
func IsTombstone(rec types.Record) bool {
	t, ok := rec.(types.Tombstoner)
	return ok && t.IsTombstone()
}
