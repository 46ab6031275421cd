package datasource

import (
	"context"

	"github.com/forbearing/tstore/query"
	"github.com/forbearing/tstore/types"
)

// BoundQuery builds a filtered, sorted read against one dataset/type pair,
// then drives it through that type's QueryPlanner on Run.
type BoundQuery struct {
	ds            *DataSource
	q             *query.Query
	dataset       types.ID
	requestedType any
}

// Where adds an equality filter term.
func (b *BoundQuery) Where(field string, value any) *BoundQuery {
	b.q.Where(field, value)
	return b
}

// SortBy appends a sort term.
func (b *BoundQuery) SortBy(field string, descending bool) *BoundQuery {
	b.q.SortBy(field, descending)
	return b
}

// Run resolves the dataset's import-graph lookup list and executes the query
// through requestedType's QueryPlanner.
func (b *BoundQuery) Run(ctx context.Context) (query.Result, error) {
	if err := b.ds.checkDisposed(); err != nil {
		return nil, err
	}
	fam, err := b.ds.familyForType(b.requestedType)
	if err != nil {
		return nil, err
	}
	cutoff, freeze := b.ds.snapshot()
	lookupList, err := b.ds.cat.LookupList(ctx, b.dataset, cutoff)
	if err != nil {
		return nil, err
	}
	return fam.planner.Run(ctx, b.q, b.requestedType, lookupList, cutoff, freeze)
}
