// Package model holds the record types every dataset stores: the common
// Base every concrete record embeds, the Tombstone subtype, and the
// DatasetDescriptor subtype the catalog persists. Base is the one embeddable
// struct that satisfies types.Record for every concrete row type.
package model

import "github.com/forbearing/tstore/types"

// Base carries the three attributes every stored record has: its own
// Identifier, the Identifier of its dataset, and its canonical key.
// Concrete record types embed Base to satisfy types.Record.
//
// typeName/typeChain are populated by the store's decode path (from the
// wire discriminator) and by datasource.DataSource.Save and
// catalog.Catalog.Create before insert (from the router's chain for the Go
// type); they are never set by application code directly.
type Base struct {
	ID        types.ID `bson:"_id"`
	Dataset   types.ID `bson:"_dataset"`
	Key       string   `bson:"_key"`
	typeName  string
	typeChain []string
}

func (b *Base) RecordID() types.ID        { return b.ID }
func (b *Base) SetRecordID(id types.ID)   { b.ID = id }
func (b *Base) DatasetID() types.ID       { return b.Dataset }
func (b *Base) SetDatasetID(id types.ID)  { b.Dataset = id }
func (b *Base) RecordKey() string         { return b.Key }
func (b *Base) TypeName() string          { return b.typeName }
func (b *Base) TypeChain() []string       { return b.typeChain }

// SetDiscriminator stamps the discriminator onto the record. Called by the
// store package on decode, and by DataSource.Save and Catalog.Create before
// insert.
func (b *Base) SetDiscriminator(name string, chain []string) {
	b.typeName = name
	b.typeChain = chain
}

// Tombstone signals logical deletion of a key within a dataset. It carries
// no fields beyond Base.
type Tombstone struct {
	Base `bson:",inline"`
}

// IsTombstone satisfies types.Tombstoner.
func (t *Tombstone) IsTombstone() bool { return true }

// DatasetDescriptor is the record type backing a named dataset. Descriptors
// are stored in the catalog's own collection, keyed by Name within their
// parent Dataset.
type DatasetDescriptor struct {
	Base        `bson:",inline"`
	Name        string     `bson:"name"`
	Imports     []types.ID `bson:"imports"`
	NonTemporal bool       `bson:"non_temporal"`
}
