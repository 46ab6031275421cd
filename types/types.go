// Package types holds the interfaces and error sentinels shared by every
// layer of the store: identifier, router, store, catalog, resolve, query and
// datasource all import this package instead of each other, keeping it a
// leaf dependency.
package types

import (
	"bytes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ID is the 12-byte totally-ordered value that identifies a record or a
// dataset. It is a plain alias of bson.ObjectID: 4 bytes of second-resolution
// timestamp followed by 8 bytes of per-process uniqueness, giving a
// monotonic-enough spine without a bespoke wire codec.
type ID = bson.ObjectID

// Empty is the reserved zero Identifier. It precedes every other ID and is
// the Identifier of the root dataset.
var Empty = bson.NilObjectID

// CompareID returns -1, 0 or 1 as a < b, a == b, a > b under the ID's total
// (byte-lexicographic) order. bson.ObjectID has no Compare method of its
// own, so this compares the underlying bytes directly.
func CompareID(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// Discriminator selects how the polymorphic type tag is stored on the wire.
type Discriminator int

const (
	// DiscriminatorScalar stores a single type name in the "_t" field.
	DiscriminatorScalar Discriminator = iota
	// DiscriminatorHierarchical stores an array of type names, root to leaf,
	// in the "_t" field.
	DiscriminatorHierarchical
)

// Record is implemented by every stored row: ordinary records, tombstones and
// dataset descriptors alike. Concrete types satisfy it by embedding
// model.Base.
type Record interface {
	// RecordID returns the record's own Identifier.
	RecordID() ID
	// SetRecordID assigns the record's own Identifier. Called once, by Save.
	SetRecordID(ID)
	// DatasetID returns the Identifier of the dataset this record belongs to.
	DatasetID() ID
	// SetDatasetID assigns the dataset Identifier. Called once, by Save.
	SetDatasetID(ID)
	// RecordKey returns the canonical semicolon-delimited key string.
	RecordKey() string
	// TypeName returns this record's own discriminator leaf name, e.g. "Quote".
	TypeName() string
	// TypeChain returns the discriminator chain from root to leaf, e.g.
	// ["Quote", "TickQuote"]. Used under DiscriminatorHierarchical.
	TypeChain() []string
}

// Tombstoner is implemented only by the tombstone record type, so
// resolve/query can test for it with a type assertion instead of comparing
// discriminator strings.
type Tombstoner interface {
	IsTombstone() bool
}
