// Package store implements low-level insert/load against one backing
// collection, polymorphic decode, and index management. It defines the
// Store interface resolve and query program against, and a MongoStore
// implementation backed by go.mongodb.org/mongo-driver/v2.
//
// resolve and query never import go.mongodb.org/mongo-driver directly; they
// only see the Store interface.
package store

import (
	"context"

	"github.com/forbearing/tstore/types"
)

// SortTerm is one component of a caller-declared sort (query.Query.SortBy).
type SortTerm struct {
	Field      string
	Descending bool
}

// ProbeQuery is Stage A of the two-stage query pipeline: a caller filter
// plus sort, scoped to one requested discriminator chain, evaluated
// against the typed view.
type ProbeQuery struct {
	// Filter holds field/value equality terms from the caller's Where(...)
	// call. Keyed by BSON field name.
	Filter map[string]any
	// Chain is the requested type's discriminator chain; only documents
	// whose own chain starts with Chain are matched (the "typed view").
	Chain []string
	// Sort is the caller-declared sort terms, in declaration order. The
	// planner appends the implicit (key ASC, dataset DESC, id DESC) terms;
	// ProbeQuery.Sort must NOT include them.
	Sort []SortTerm
	// BatchSize bounds how many hits ProbeIterator buffers per round trip.
	BatchSize int
}

// ProbeHit is one Stage-A result: just enough to drive Stage B.
type ProbeHit struct {
	ID  types.ID
	Key string
}

// ProbeIterator streams ProbeQuery results in batches.
type ProbeIterator interface {
	// Next advances to the next hit, fetching a new batch transparently when
	// the current one is exhausted. Returns false at end of stream or error.
	Next(ctx context.Context) bool
	Hit() ProbeHit
	Err() error
	Close(ctx context.Context) error
}

// RecordIterator streams fully decoded records ordered (key ASC, dataset
// DESC, id DESC) — the order ResolutionEngine and Stage B both require.
type RecordIterator interface {
	Next(ctx context.Context) bool
	Record() types.Record
	Err() error
	Close(ctx context.Context) error
}

// IndexField is one field of a CreateUserIndex call.
type IndexField struct {
	Name       string
	Descending bool
}

// Store is the low-level storage contract. One Store wraps one collection,
// i.e. one polymorphic root family.
type Store interface {
	// InsertUnique inserts rec, failing with types.ErrDuplicateID if its ID
	// already exists in the collection.
	InsertUnique(ctx context.Context, rec types.Record) error

	// LoadByID returns the raw base-typed record for id, or (nil, nil) if
	// absent. It never filters by subtype — the caller does the
	// assignability check.
	LoadByID(ctx context.Context, id types.ID) (types.Record, error)

	// QueryByKeys streams every version of every key in keys whose dataset is
	// in datasets and whose id is <= cutoff (if cutoff is non-empty), ordered
	// (key ASC, dataset DESC, id DESC). This is the shared base-view scan
	// that both ResolutionEngine.Resolve and Stage B of the query planner
	// walk to find each key's winner.
	QueryByKeys(ctx context.Context, keys []string, datasets []types.ID, cutoff types.ID) (RecordIterator, error)

	// Probe runs Stage A of the two-stage pipeline against the typed view.
	Probe(ctx context.Context, q ProbeQuery) (ProbeIterator, error)

	// CreateDefaultIndex creates the (key ASC, dataset DESC, id DESC) index
	// RecordStore requires before first use.
	CreateDefaultIndex(ctx context.Context) error

	// CreateUserIndex creates a named index whose trailing fields are always
	// (key ASC, dataset DESC, id DESC). Fails with types.ErrReservedIndexName
	// for the names "Key"/"Default", and types.ErrIndexOrderConflict if the
	// same name was previously declared with different field order.
	CreateUserIndex(ctx context.Context, name string, fields []IndexField) error
}
