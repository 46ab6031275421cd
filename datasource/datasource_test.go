package datasource

import (
	"context"
	"testing"

	"github.com/forbearing/tstore/catalog"
	"github.com/forbearing/tstore/config"
	"github.com/forbearing/tstore/identifier"
	"github.com/forbearing/tstore/model"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/store"
	"github.com/forbearing/tstore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeStore is an in-memory store.Store, letting this package's tests
// exercise DataSource's state machine and id-minting rules without a live
// backing store, the same interface-substitution style used by resolve's
// and catalog's own tests.
type fakeStore struct {
	records []types.Record
}

func (s *fakeStore) InsertUnique(_ context.Context, rec types.Record) error {
	for _, r := range s.records {
		if r.RecordID() == rec.RecordID() {
			return types.ErrDuplicateID
		}
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) LoadByID(_ context.Context, id types.ID) (types.Record, error) {
	for _, r := range s.records {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) QueryByKeys(context.Context, []string, []types.ID, types.ID) (store.RecordIterator, error) {
	return &fakeRecordIterator{}, nil
}

func (s *fakeStore) Probe(context.Context, store.ProbeQuery) (store.ProbeIterator, error) {
	return &fakeProbeIterator{}, nil
}

func (s *fakeStore) CreateDefaultIndex(context.Context) error                          { return nil }
func (s *fakeStore) CreateUserIndex(context.Context, string, []store.IndexField) error { return nil }

type fakeRecordIterator struct{}

func (it *fakeRecordIterator) Next(context.Context) bool   { return false }
func (it *fakeRecordIterator) Record() types.Record        { return nil }
func (it *fakeRecordIterator) Err() error                  { return nil }
func (it *fakeRecordIterator) Close(context.Context) error { return nil }

type fakeProbeIterator struct{}

func (it *fakeProbeIterator) Next(context.Context) bool    { return false }
func (it *fakeProbeIterator) Hit() store.ProbeHit          { return store.ProbeHit{} }
func (it *fakeProbeIterator) Err() error                   { return nil }
func (it *fakeProbeIterator) Close(context.Context) error  { return nil }

// newTestDataSource builds a DataSource bypassing Open (no live backing
// store), with model.Quote/TickQuote pre-registered and backed by a
// fakeStore, and the catalog wired onto a second fakeStore instance.
func newTestDataSource(t *testing.T) (*DataSource, *fakeStore) {
	t.Helper()
	rt := router.New(router.DefaultOptions())
	_, err := rt.Register((*model.Quote)(nil))
	require.NoError(t, err)
	require.NoError(t, rt.RegisterSubtype((*model.Quote)(nil), (*model.TickQuote)(nil)))
	_, err = rt.Register((*model.DatasetDescriptor)(nil))
	require.NoError(t, err)

	cfg := &config.Config{InstanceType: config.InstanceDev}
	ds := &DataSource{
		cfg:      cfg,
		rt:       rt,
		families: make(map[string]*family),
		state:    Initialized,
	}
	ds.gen = identifier.New(ds.isReadOnly)
	ds.cs = &fakeStore{}
	ds.cat = catalog.New(ds.cs, rt, ds.gen)

	quoteStore := &fakeStore{}
	ds.families["Quote"] = &family{st: quoteStore}
	return ds, quoteStore
}

func TestSaveAssignsIDAndDataset(t *testing.T) {
	ds, quoteStore := newTestDataSource(t)
	ctx := context.Background()

	root, err := ds.CreateDataset(ctx, "Root", types.Empty, nil)
	require.NoError(t, err)

	q := &model.TickQuote{}
	q.Symbol = "AAPL"
	require.NoError(t, ds.Save(ctx, q, root))

	assert.NotEqual(t, types.Empty, q.RecordID())
	assert.Equal(t, root, q.DatasetID())
	assert.Equal(t, "TickQuote", q.TypeName())
	require.Len(t, quoteStore.records, 1)
}

func TestSaveRejectsDatasetNotOlderThanID(t *testing.T) {
	ds, _ := newTestDataSource(t)
	ctx := context.Background()

	// The largest possible ID: no id Save mints can exceed it.
	newest, err := bson.ObjectIDFromHex("ffffffffffffffffffffffff")
	require.NoError(t, err)

	q := &model.TickQuote{}
	q.Symbol = "AAPL"
	err = ds.Save(ctx, q, newest)
	assert.ErrorIs(t, err, types.ErrInvalidDataset)
}

func TestSetCutoffTransitionsToReadOnlyAndBack(t *testing.T) {
	ds, _ := newTestDataSource(t)
	ctx := context.Background()

	cutoff, err := ds.gen.Next()
	require.NoError(t, err)

	require.NoError(t, ds.SetCutoff(cutoff))
	assert.Equal(t, ReadOnly, ds.state)

	q := &model.TickQuote{}
	err = ds.Save(ctx, q, types.Empty)
	assert.ErrorIs(t, err, types.ErrReadOnlyViolation)

	require.NoError(t, ds.SetCutoff(types.Empty))
	assert.Equal(t, Initialized, ds.state)
}

func TestCloseDisposesDataSource(t *testing.T) {
	ds, _ := newTestDataSource(t)
	ctx := context.Background()
	require.NoError(t, ds.Close(ctx))

	q := &model.TickQuote{}
	err := ds.Save(ctx, q, types.Empty)
	assert.ErrorIs(t, err, types.ErrDisposed)
}

func TestDropDatabaseGatedByInstanceType(t *testing.T) {
	ds, _ := newTestDataSource(t)
	ds.cfg.InstanceType = config.InstanceProd
	err := ds.DropDatabase(context.Background())
	assert.ErrorIs(t, err, types.ErrUnsafeDrop)
}

func TestDeleteWritesTombstone(t *testing.T) {
	ds, quoteStore := newTestDataSource(t)
	ctx := context.Background()

	root, err := ds.CreateDataset(ctx, "Root", types.Empty, nil)
	require.NoError(t, err)

	require.NoError(t, ds.Delete(ctx, "AAPL;0", root, (*model.Quote)(nil)))
	require.Len(t, quoteStore.records, 1)
	ts, ok := quoteStore.records[0].(*model.Tombstone)
	require.True(t, ok)
	assert.Equal(t, "AAPL;0", ts.RecordKey())
}
