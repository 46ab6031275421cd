package types

import "github.com/cockroachdb/errors"

// Each of these is a sentinel; call sites wrap it with errors.Wrapf for
// context and callers match it with errors.Is.
var (
	// ErrNotFound is never actually returned to callers (NotFound resolves to
	// a nil record), but is kept as a sentinel for internal plumbing and for
	// store-level "no document" outcomes that don't carry temporal meaning.
	ErrNotFound = errors.New("tstore: not found")

	// ErrTypeMismatch is raised by LoadOrNull-by-identifier when the stored
	// record's discriminator is not assignable to the requested type.
	ErrTypeMismatch = errors.New("tstore: stored type is not assignable to requested type")

	// ErrDuplicateID is raised by InsertUnique when the identifier already
	// exists in the collection.
	ErrDuplicateID = errors.New("tstore: duplicate id")

	// ErrReadOnlyViolation is raised by any write attempted on a DataSource
	// that has a cutoff set, and by Identifier.Next on such a DataSource.
	ErrReadOnlyViolation = errors.New("tstore: write attempted on read-only data source")

	// ErrInvalidDataset is raised when a dataset violates its invariants:
	// self-import, non-increasing descriptor id, or a name that cannot be
	// composed into a database name.
	ErrInvalidDataset = errors.New("tstore: invalid dataset")

	// ErrReservedIndexName is raised by CreateUserIndex for the names "Key"
	// or "Default".
	ErrReservedIndexName = errors.New("tstore: index name is reserved")

	// ErrIndexOrderConflict is raised when two indices declared under the
	// same name disagree on field order.
	ErrIndexOrderConflict = errors.New("tstore: conflicting field order for index name")

	// ErrUnsafeDrop is raised by DropDatabase outside DEV/USER/TEST instances.
	ErrUnsafeDrop = errors.New("tstore: DropDatabase is not permitted for this instance type")

	// ErrTimeout names the Timeout error kind. No operation in this module
	// returns it: an elapsed context deadline surfaces as the error returned
	// by the context or by the driver.
	ErrTimeout = errors.New("tstore: operation timed out")

	// ErrDisposed is raised by any operation on a disposed DataSource.
	ErrDisposed = errors.New("tstore: data source is disposed")

	// ErrDiscriminatorMismatch names a mismatch between the discriminator
	// convention of documents already in the backing store and the configured
	// one. datasource.Open does not inspect stored documents, and no
	// operation in this module returns it.
	ErrDiscriminatorMismatch = errors.New("tstore: backing store discriminator convention does not match configuration")
)
