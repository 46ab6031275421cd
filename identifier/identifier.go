// Package identifier implements a monotonic Identifier generator, one per
// DataSource.
package identifier

import (
	"sync"

	"github.com/forbearing/tstore/logger"
	"github.com/forbearing/tstore/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Generator mints strictly increasing types.ID values. It is safe for
// concurrent use; the "previous" counter is serialized with a mutex.
type Generator struct {
	mu       sync.Mutex
	previous types.ID
	readOnly func() bool
}

// New returns a Generator. readOnly is consulted on every call to Next and
// should report the owning DataSource's current read-only state.
func New(readOnly func() bool) *Generator {
	if readOnly == nil {
		readOnly = func() bool { return false }
	}
	return &Generator{readOnly: readOnly}
}

// Next returns a types.ID strictly greater than every ID this Generator has
// previously returned. Fails with types.ErrReadOnlyViolation if the owning
// DataSource is read-only.
func (g *Generator) Next() (types.ID, error) {
	if g.readOnly() {
		return types.Empty, types.ErrReadOnlyViolation
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := bson.NewObjectID()
	retried := false
	for types.CompareID(candidate, g.previous) <= 0 {
		if !retried {
			logger.Identifier.Warnw("monotonicity violation, regenerating", "previous", g.previous.Hex())
			retried = true
		}
		candidate = bson.NewObjectID()
	}
	if retried {
		logger.Identifier.Warnw("monotonicity resolved", "id", candidate.Hex())
	}
	g.previous = candidate
	return candidate, nil
}
