// Package catalog implements dataset name resolution and import-graph
// expansion into an ordered lookup list.
package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/ds/mapset"
	"github.com/forbearing/tstore/identifier"
	"github.com/forbearing/tstore/logger"
	"github.com/forbearing/tstore/model"
	"github.com/forbearing/tstore/resolve"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/store"
	"github.com/forbearing/tstore/types"
)

// forbiddenNameChars are the characters forbidden in any component of the
// assembled database name, dataset names included.
const forbiddenNameChars = "/\\.\" $*<>:|?"

const maxNameLength = 64

// Catalog resolves dataset descriptors and expands the import graph. One
// Catalog is owned by exactly one DataSource, sharing its Identifier
// generator so Create fails ReadOnlyViolation the same way any other write
// does.
type Catalog struct {
	st  store.Store
	rt  *router.Router
	gen *identifier.Generator
	eng *resolve.Engine
}

// New builds a Catalog over st, the collection router.Register(&model.DatasetDescriptor{})
// maps to. gen is the DataSource's shared identifier generator.
func New(st store.Store, rt *router.Router, gen *identifier.Generator) *Catalog {
	return &Catalog{st: st, rt: rt, gen: gen, eng: resolve.New(st, rt)}
}

// Resolve loads the descriptor named name whose dataset equals parent
// exactly (no import fallback). Returns (types.Empty, false, nil) if no such
// descriptor exists.
func (c *Catalog) Resolve(ctx context.Context, name string, parent types.ID, cutoff types.ID) (types.ID, bool, error) {
	rec, err := c.eng.Resolve(ctx, name, []types.ID{parent}, cutoff, false)
	if err != nil {
		return types.Empty, false, errors.Wrapf(err, "catalog: resolve %q", name)
	}
	if rec == nil {
		return types.Empty, false, nil
	}
	desc, ok := rec.(*model.DatasetDescriptor)
	if !ok {
		return types.Empty, false, errors.Newf("catalog: record for %q is not a dataset descriptor", name)
	}
	return desc.RecordID(), true, nil
}

// Create writes a new dataset descriptor under parent, enforcing that the
// new id exceeds parent and every imported id, and that name composes into
// a valid database name component.
func (c *Catalog) Create(ctx context.Context, name string, parent types.ID, imports []types.ID) (types.ID, error) {
	if err := validateName(name); err != nil {
		return types.Empty, err
	}

	id, err := c.gen.Next()
	if err != nil {
		return types.Empty, err
	}
	if types.CompareID(id, parent) <= 0 {
		return types.Empty, errors.Wrapf(types.ErrInvalidDataset, "dataset %q: descriptor id must exceed parent id", name)
	}
	for _, imp := range imports {
		if types.CompareID(id, imp) <= 0 {
			return types.Empty, errors.Wrapf(types.ErrInvalidDataset, "dataset %q: descriptor id must exceed every imported id", name)
		}
	}

	desc := &model.DatasetDescriptor{Name: name, Imports: imports}
	desc.SetRecordID(id)
	desc.SetDatasetID(parent)
	desc.Key = name
	if chain, ok := c.rt.TypeChain(desc); ok {
		desc.SetDiscriminator(chain[len(chain)-1], chain)
	}

	if err := c.st.InsertUnique(ctx, desc); err != nil {
		return types.Empty, errors.Wrapf(err, "catalog: create dataset %q", name)
	}
	logger.Catalog.Infow("created dataset", "name", name, "id", id.Hex(), "parent", parent.Hex())
	return id, nil
}

// LookupList expands start's import graph into an ordered, deduplicated,
// cycle-free lookup list. With a cutoff set, descriptors whose id exceeds
// it are invisible and their imports are not followed.
func (c *Catalog) LookupList(ctx context.Context, start types.ID, cutoff types.ID) ([]types.ID, error) {
	if start == types.Empty {
		return []types.ID{types.Empty}, nil
	}

	visited, err := mapset.New[types.ID]()
	if err != nil {
		return nil, errors.Wrap(err, "catalog: lookup list")
	}
	var result []types.ID

	var walk func(id types.ID) error
	walk = func(id types.ID) error {
		if visited.Contains(id) {
			return nil
		}
		visited.Add(id)
		result = append(result, id)
		if id == types.Empty {
			return nil
		}
		desc, err := c.descriptorFor(ctx, id)
		if err != nil {
			return err
		}
		if desc == nil {
			return nil
		}
		if cutoff != types.Empty && types.CompareID(desc.RecordID(), cutoff) > 0 {
			return nil
		}
		for _, imp := range desc.Imports {
			if cutoff != types.Empty {
				impDesc, err := c.descriptorFor(ctx, imp)
				if err != nil {
					return err
				}
				if impDesc != nil && types.CompareID(impDesc.RecordID(), cutoff) > 0 {
					continue
				}
			}
			if err := walk(imp); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(start); err != nil {
		return nil, errors.Wrap(err, "catalog: lookup list")
	}
	return result, nil
}

// descriptorFor loads id's own descriptor. The root dataset (types.Empty)
// has no descriptor record and always returns (nil, nil).
func (c *Catalog) descriptorFor(ctx context.Context, id types.ID) (*model.DatasetDescriptor, error) {
	if id == types.Empty {
		return nil, nil
	}
	rec, err := c.st.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	desc, ok := rec.(*model.DatasetDescriptor)
	if !ok {
		return nil, errors.Newf("catalog: record %s is not a dataset descriptor", id.Hex())
	}
	return desc, nil
}

func validateName(name string) error {
	if len(name) == 0 || len(name) > maxNameLength {
		return errors.Wrapf(types.ErrInvalidDataset, "name %q: length must be 1-%d bytes", name, maxNameLength)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return errors.Wrapf(types.ErrInvalidDataset, "name %q contains a forbidden character", name)
	}
	return nil
}
