package store

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/model"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// discriminatorField is the wire field name holding the polymorphic type
// tag ("_t", scalar or hierarchical convention).
const discriminatorField = "_t"

// tombstoneDiscriminator is the reserved leaf name for tombstones. A
// tombstone shares its collection with whichever polymorphic family it
// shadows, so it is never registered with the router under that family's
// root type; encode/decode special-case it instead.
const tombstoneDiscriminator = "Tombstone"

// encodeRecord marshals rec to a BSON document and stamps its discriminator
// field according to disc.
func encodeRecord(rt *router.Router, disc types.Discriminator, rec types.Record) (bson.D, error) {
	if _, ok := rec.(*model.Tombstone); ok {
		raw, err := bson.Marshal(rec)
		if err != nil {
			return nil, errors.Wrap(err, "store: encode tombstone")
		}
		var doc bson.D
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Wrap(err, "store: re-decode tombstone as document")
		}
		return append(doc, bson.E{Key: discriminatorField, Value: tombstoneValue(disc)}), nil
	}

	chain, ok := rt.TypeChain(rec)
	if !ok {
		return nil, errors.Newf("store: type %T is not registered with the router", rec)
	}
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, errors.Wrapf(err, "store: encode %T", rec)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "store: re-decode %T as document", rec)
	}
	switch disc {
	case types.DiscriminatorHierarchical:
		doc = append(doc, bson.E{Key: discriminatorField, Value: chain})
	default:
		doc = append(doc, bson.E{Key: discriminatorField, Value: chain[len(chain)-1]})
	}
	return doc, nil
}

// decodeRecord reads raw's discriminator field, resolves it to a concrete Go
// type through rt, and unmarshals raw into a new instance of that type.
func decodeRecord(rt *router.Router, raw bson.Raw) (types.Record, error) {
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "store: decode document")
	}
	leaf, err := leafName(doc[discriminatorField])
	if err != nil {
		return nil, err
	}
	if leaf == tombstoneDiscriminator {
		ts := &model.Tombstone{}
		if err := bson.Unmarshal(raw, ts); err != nil {
			return nil, errors.Wrap(err, "store: decode tombstone")
		}
		ts.SetDiscriminator(tombstoneDiscriminator, []string{tombstoneDiscriminator})
		return ts, nil
	}
	goType, ok := rt.TypeFor(leaf)
	if !ok {
		return nil, errors.Newf("store: discriminator %q is not registered with the router", leaf)
	}
	ptr := reflect.New(goType)
	if err := bson.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, errors.Wrapf(err, "store: decode %s", leaf)
	}
	rec, ok := ptr.Interface().(types.Record)
	if !ok {
		return nil, errors.Newf("store: type %s does not implement types.Record", goType)
	}
	chain, _ := rt.TypeChain(ptr.Interface())
	if stamper, ok := ptr.Interface().(interface {
		SetDiscriminator(string, []string)
	}); ok {
		stamper.SetDiscriminator(leaf, chain)
	}
	return rec, nil
}

func leafName(disc any) (string, error) {
	switch v := disc.(type) {
	case string:
		return v, nil
	case bson.A:
		if len(v) == 0 {
			return "", errors.New("store: empty discriminator array")
		}
		leaf, ok := v[len(v)-1].(string)
		if !ok {
			return "", errors.New("store: discriminator array element is not a string")
		}
		return leaf, nil
	case nil:
		return "", errors.New("store: document has no discriminator field")
	default:
		return "", errors.Newf("store: unsupported discriminator shape %T", disc)
	}
}

// tombstoneValue returns the wire discriminator value for a tombstone under
// disc's convention.
func tombstoneValue(disc types.Discriminator) any {
	if disc == types.DiscriminatorHierarchical {
		return bson.A{tombstoneDiscriminator}
	}
	return tombstoneDiscriminator
}

// chainFilter returns the BSON filter terms that restrict a query to the
// emulated typed view for chain.
func chainFilter(rt *router.Router, disc types.Discriminator, chain []string) bson.D {
	if len(chain) == 0 {
		return nil
	}
	if disc == types.DiscriminatorHierarchical {
		filter := make(bson.D, 0, len(chain))
		for i, name := range chain {
			filter = append(filter, bson.E{Key: fmt.Sprintf("%s.%d", discriminatorField, i), Value: name})
		}
		return filter
	}
	return bson.D{{Key: discriminatorField, Value: bson.D{{Key: "$in", Value: rt.LeafNamesUnder(chain)}}}}
}
