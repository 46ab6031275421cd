// Package query implements the two-stage batched pipeline that evaluates a
// filtered, sorted read under temporal rules without returning stale-type
// or superseded results.
package query

import (
	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/store"
)

// Query accumulates Where/SortBy terms. Where must precede every SortBy
// call; calling Where after SortBy poisons the builder, surfaced when
// Planner.Run is called.
type Query struct {
	filter      map[string]any
	sorts       []store.SortTerm
	sortStarted bool
	err         error
}

// NewQuery returns an empty Query.
func NewQuery() *Query {
	return &Query{filter: make(map[string]any)}
}

// Where adds an equality filter term. Returns q for chaining.
func (q *Query) Where(field string, value any) *Query {
	if q.err != nil {
		return q
	}
	if q.sortStarted {
		q.err = errors.Newf("query: Where(%q) called after SortBy", field)
		return q
	}
	q.filter[field] = value
	return q
}

// SortBy appends a sort term. Multiple calls compose primary -> secondary ->
// ... in declaration order; the planner appends the implicit
// (key ASC, dataset DESC, id DESC) suffix itself.
func (q *Query) SortBy(field string, descending bool) *Query {
	if q.err != nil {
		return q
	}
	q.sortStarted = true
	q.sorts = append(q.sorts, store.SortTerm{Field: field, Descending: descending})
	return q
}
