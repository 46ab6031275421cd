package store

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/model"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type quote struct {
	model.Base `bson:",inline"`
	Symbol     string  `bson:"symbol"`
	Price      float64 `bson:"price"`
}

func newRouter(t *testing.T) *router.Router {
	t.Helper()
	rt := router.New(router.DefaultOptions())
	_, err := rt.Register((*quote)(nil))
	require.NoError(t, err)
	return rt
}

// fakeCollection is an in-memory collection, letting this package's tests
// exercise MongoStore's encode/decode and index bookkeeping without a live
// server, the same interface-substitution style resolve's, catalog's and
// datasource's own tests use in front of Store itself.
type fakeCollection struct {
	docs      []bson.D
	insertErr error
}

func (c *fakeCollection) Name() string { return "fake" }

func (c *fakeCollection) InsertOne(_ context.Context, doc any) error {
	if c.insertErr != nil {
		return c.insertErr
	}
	d, ok := doc.(bson.D)
	if !ok {
		return errors.Newf("fakeCollection: unsupported document type %T", doc)
	}
	c.docs = append(c.docs, d)
	return nil
}

func (c *fakeCollection) FindOne(_ context.Context, filter bson.D) (bson.Raw, error) {
	id, ok := filterID(filter)
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for _, d := range c.docs {
		if docID(d) == id {
			raw, err := bson.Marshal(d)
			if err != nil {
				return nil, err
			}
			return raw, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (c *fakeCollection) Find(_ context.Context, _, _, _ bson.D, _ int32) (cursor, error) {
	raws := make([]bson.Raw, 0, len(c.docs))
	for _, d := range c.docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	return &fakeCursor{docs: raws, pos: -1}, nil
}

func (c *fakeCollection) CreateIndex(context.Context, string, bson.D) error { return nil }

func filterID(filter bson.D) (types.ID, bool) {
	for _, e := range filter {
		if e.Key == "_id" {
			id, ok := e.Value.(types.ID)
			return id, ok
		}
	}
	return types.Empty, false
}

func docID(d bson.D) types.ID {
	for _, e := range d {
		if e.Key == "_id" {
			id, _ := e.Value.(types.ID)
			return id
		}
	}
	return types.Empty
}

type fakeCursor struct {
	docs []bson.Raw
	pos  int
}

func (c *fakeCursor) Next(context.Context) bool {
	if c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Current() bson.Raw            { return c.docs[c.pos] }
func (c *fakeCursor) Decode(v any) error            { return bson.Unmarshal(c.docs[c.pos], v) }
func (c *fakeCursor) Err() error                    { return nil }
func (c *fakeCursor) Close(context.Context) error   { return nil }

func newTestStore(t *testing.T, coll *fakeCollection) *MongoStore {
	t.Helper()
	return &MongoStore{coll: coll, rt: newRouter(t), disc: types.DiscriminatorScalar, indexes: make(map[string][]IndexField)}
}

func TestCreateUserIndexRejectsReservedNames(t *testing.T) {
	s := newTestStore(t, &fakeCollection{})
	for _, name := range []string{"Default", "Key"} {
		err := s.CreateUserIndex(context.Background(), name, []IndexField{{Name: "symbol"}})
		assert.ErrorIs(t, err, types.ErrReservedIndexName)
	}
}

func TestInsertUniqueAndLoadByID(t *testing.T) {
	coll := &fakeCollection{}
	s := newTestStore(t, coll)

	q := &quote{Symbol: "EURUSD", Price: 1.1}
	q.Key = "EURUSD"
	q.SetRecordID(bson.NewObjectID())
	q.SetDatasetID(types.Empty)
	require.NoError(t, s.InsertUnique(context.Background(), q))
	require.Len(t, coll.docs, 1)

	rec, err := s.LoadByID(context.Background(), q.RecordID())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "EURUSD", rec.RecordKey())
	assert.Equal(t, "quote", rec.TypeName())
}

func TestLoadByIDNotFound(t *testing.T) {
	s := newTestStore(t, &fakeCollection{})
	rec, err := s.LoadByID(context.Background(), bson.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestInsertUniqueDuplicate(t *testing.T) {
	coll := &fakeCollection{insertErr: mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}}
	s := newTestStore(t, coll)

	q := &quote{Symbol: "EURUSD", Price: 1.1}
	q.SetRecordID(bson.NewObjectID())
	err := s.InsertUnique(context.Background(), q)
	assert.ErrorIs(t, err, types.ErrDuplicateID)
}

func TestCreateDefaultIndex(t *testing.T) {
	s := newTestStore(t, &fakeCollection{})
	require.NoError(t, s.CreateDefaultIndex(context.Background()))
}

func TestCreateUserIndexOrderConflict(t *testing.T) {
	s := newTestStore(t, &fakeCollection{})
	require.NoError(t, s.CreateUserIndex(context.Background(), "BySymbol", []IndexField{{Name: "symbol"}}))
	err := s.CreateUserIndex(context.Background(), "BySymbol", []IndexField{{Name: "symbol", Descending: true}})
	assert.ErrorIs(t, err, types.ErrIndexOrderConflict)
}

func TestQueryByKeysDecodesEveryDoc(t *testing.T) {
	coll := &fakeCollection{}
	s := newTestStore(t, coll)

	for _, sym := range []string{"EURUSD", "GBPUSD"} {
		q := &quote{Symbol: sym, Price: 1.0}
		q.SetRecordID(bson.NewObjectID())
		require.NoError(t, s.InsertUnique(context.Background(), q))
	}

	it, err := s.QueryByKeys(context.Background(), []string{"EURUSD", "GBPUSD"}, nil, types.Empty)
	require.NoError(t, err)
	defer it.Close(context.Background())

	var count int
	for it.Next(context.Background()) {
		count++
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 2, count)
}
