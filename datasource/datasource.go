// Package datasource implements DataSource, the public facade owning
// cutoff/readonly state and dispatching single-record operations to
// resolve.Engine and multi-record operations to query.Planner.
package datasource

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/catalog"
	"github.com/forbearing/tstore/config"
	"github.com/forbearing/tstore/identifier"
	"github.com/forbearing/tstore/logger"
	"github.com/forbearing/tstore/model"
	"github.com/forbearing/tstore/query"
	"github.com/forbearing/tstore/resolve"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/store"
	"github.com/forbearing/tstore/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// State is one point in the DataSource lifecycle: Uninitialized ->
// Initialized -> (optional) ReadOnly -> Disposed.
type State int

const (
	Uninitialized State = iota
	Initialized
	ReadOnly
	Disposed
)

// family wires one polymorphic root's Store, ResolutionEngine and
// QueryPlanner together. One family exists per collection.
type family struct {
	st      store.Store
	eng     *resolve.Engine
	planner *query.Planner
}

// DataSource is the public facade.
type DataSource struct {
	cfg *config.Config
	rt  *router.Router
	gen *identifier.Generator
	cat *catalog.Catalog
	cs  store.Store // the catalog's own backing Store

	client *mongo.Client
	db     *mongo.Database
	disc   types.Discriminator

	mu            sync.RWMutex
	state         State
	cutoff        types.ID
	freezeImports bool
	families      map[string]*family
}

// Open connects to the backing store, assembles the physical database name
// from cfg and rootName, and returns an Initialized DataSource. rt must
// already have (or will later have, via Register) every polymorphic root
// type the caller intends to use.
func Open(ctx context.Context, cfg *config.Config, rt *router.Router, rootName string) (*DataSource, error) {
	dbName, err := cfg.DatabaseName(rootName)
	if err != nil {
		return nil, err
	}

	clientOpts := options.Client().
		ApplyURI(cfg.DataStore.URI).
		SetConnectTimeout(cfg.DataStore.ConnectTimeout).
		SetServerSelectionTimeout(cfg.DataStore.ServerSelection)
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "datasource: connect")
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.DataStore.ServerSelection)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, errors.Wrap(err, "datasource: ping")
	}

	disc := types.DiscriminatorScalar
	if cfg.Temporal.Discriminator == "hierarchical" {
		disc = types.DiscriminatorHierarchical
	}

	ds := &DataSource{
		cfg:           cfg,
		rt:            rt,
		client:        client,
		db:            client.Database(dbName),
		disc:          disc,
		freezeImports: cfg.Temporal.FreezeImports,
		families:      make(map[string]*family),
		state:         Initialized,
	}
	ds.gen = identifier.New(ds.isReadOnly)

	catalogColl, err := rt.Register((*model.DatasetDescriptor)(nil))
	if err != nil {
		return nil, errors.Wrap(err, "datasource: register dataset descriptor")
	}
	ds.cs = store.NewMongoStore(ds.db.Collection(catalogColl), rt, disc)
	ds.cat = catalog.New(ds.cs, rt, ds.gen)

	logger.DataSource.Infow("opened", "database", dbName)
	return ds, nil
}

// Register associates root (and its subtypes, if any) with the router and
// lazily wires its Store/ResolutionEngine/QueryPlanner.
func (ds *DataSource) Register(root any, subtypes ...any) (collection string, err error) {
	collection, err = ds.rt.Register(root)
	if err != nil {
		return "", err
	}
	for _, sub := range subtypes {
		if err := ds.rt.RegisterSubtype(root, sub); err != nil {
			return "", err
		}
	}
	ds.familyFor(collection)
	return collection, nil
}

func (ds *DataSource) familyFor(collection string) *family {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if f, ok := ds.families[collection]; ok {
		return f
	}
	st := store.NewMongoStore(ds.db.Collection(collection), ds.rt, ds.disc)
	f := &family{
		st:      st,
		eng:     resolve.New(st, ds.rt),
		planner: query.New(st, ds.rt, ds.cfg.Temporal.BatchSize),
	}
	ds.families[collection] = f
	return f
}

func (ds *DataSource) familyForType(v any) (*family, error) {
	collection, ok := ds.rt.CollectionFor(v)
	if !ok {
		return nil, errors.Newf("datasource: type %T is not registered, call Register first", v)
	}
	return ds.familyFor(collection), nil
}

// Save mints a new Identifier, assigns it and dataset to record, and inserts
// it. Any prior value of record's dataset is ignored.
func (ds *DataSource) Save(ctx context.Context, rec types.Record, dataset types.ID) error {
	if err := ds.checkWritable(); err != nil {
		return err
	}
	fam, err := ds.familyForType(rec)
	if err != nil {
		return err
	}
	id, err := ds.gen.Next()
	if err != nil {
		return err
	}
	if types.CompareID(id, dataset) <= 0 {
		return errors.Wrap(types.ErrInvalidDataset, "datasource: record id must exceed its dataset id")
	}
	rec.SetRecordID(id)
	rec.SetDatasetID(dataset)
	if chain, ok := ds.rt.TypeChain(rec); ok {
		if stamper, ok := rec.(interface{ SetDiscriminator(string, []string) }); ok {
			stamper.SetDiscriminator(chain[len(chain)-1], chain)
		}
	}
	return fam.st.InsertUnique(ctx, rec)
}

// Delete writes a tombstone for key in dataset, even if no record currently
// exists for that key. rootType selects which collection the tombstone is
// written into.
func (ds *DataSource) Delete(ctx context.Context, key string, dataset types.ID, rootType any) error {
	if err := ds.checkWritable(); err != nil {
		return err
	}
	fam, err := ds.familyForType(rootType)
	if err != nil {
		return err
	}
	id, err := ds.gen.Next()
	if err != nil {
		return err
	}
	if types.CompareID(id, dataset) <= 0 {
		return errors.Wrap(types.ErrInvalidDataset, "datasource: tombstone id must exceed its dataset id")
	}
	ts := &model.Tombstone{}
	ts.SetRecordID(id)
	ts.SetDatasetID(dataset)
	ts.Key = key
	return fam.st.InsertUnique(ctx, ts)
}

// LoadOrNull loads a record by its own Identifier, failing TypeMismatch if
// the stored subtype is not assignable to requestedType.
func (ds *DataSource) LoadOrNull(ctx context.Context, id types.ID, requestedType any) (types.Record, error) {
	if err := ds.checkDisposed(); err != nil {
		return nil, err
	}
	fam, err := ds.familyForType(requestedType)
	if err != nil {
		return nil, err
	}
	return fam.eng.LoadOrNull(ctx, id, requestedType, ds.cutoffSnapshot())
}

// LoadOrNullByKey resolves key through dataset's lookup list.
func (ds *DataSource) LoadOrNullByKey(ctx context.Context, key string, dataset types.ID, requestedType any) (types.Record, error) {
	if err := ds.checkDisposed(); err != nil {
		return nil, err
	}
	fam, err := ds.familyForType(requestedType)
	if err != nil {
		return nil, err
	}
	cutoff, freeze := ds.snapshot()
	lookupList, err := ds.cat.LookupList(ctx, dataset, cutoff)
	if err != nil {
		return nil, err
	}
	return fam.eng.Resolve(ctx, key, lookupList, cutoff, freeze)
}

// GetQuery returns a query builder bound to dataset/requestedType; call
// Where/SortBy then Run to execute it through the QueryPlanner.
func (ds *DataSource) GetQuery(dataset types.ID, requestedType any) *BoundQuery {
	return &BoundQuery{ds: ds, q: query.NewQuery(), dataset: dataset, requestedType: requestedType}
}

// CreateDataset writes a new dataset descriptor.
func (ds *DataSource) CreateDataset(ctx context.Context, name string, parent types.ID, imports []types.ID) (types.ID, error) {
	if err := ds.checkWritable(); err != nil {
		return types.Empty, err
	}
	return ds.cat.Create(ctx, name, parent, imports)
}

// ResolveDataset looks up a dataset's Identifier by name within parent.
func (ds *DataSource) ResolveDataset(ctx context.Context, name string, parent types.ID) (types.ID, bool, error) {
	if err := ds.checkDisposed(); err != nil {
		return types.Empty, false, err
	}
	return ds.cat.Resolve(ctx, name, parent, ds.cutoffSnapshot())
}

// SetCutoff sets (or clears, with types.Empty) the read-as-of Identifier.
// Setting a non-empty cutoff transitions Initialized -> ReadOnly; clearing
// it transitions back.
func (ds *DataSource) SetCutoff(cutoff types.ID) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.state == Disposed {
		return types.ErrDisposed
	}
	ds.cutoff = cutoff
	if cutoff == types.Empty {
		if ds.state == ReadOnly {
			ds.state = Initialized
		}
	} else {
		ds.state = ReadOnly
	}
	return nil
}

// SetFreezeImports toggles the freeze-imports visibility rule for every
// subsequent read.
func (ds *DataSource) SetFreezeImports(on bool) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.state == Disposed {
		return types.ErrDisposed
	}
	ds.freezeImports = on
	return nil
}

// DropDatabase drops the entire backing database. Gated by instance type:
// fails UnsafeDrop outside DEV/USER/TEST.
func (ds *DataSource) DropDatabase(ctx context.Context) error {
	if err := ds.checkDisposed(); err != nil {
		return err
	}
	if !ds.cfg.InstanceType.DropPermitted() {
		return errors.Wrapf(types.ErrUnsafeDrop, "instance type %s", ds.cfg.InstanceType)
	}
	logger.DataSource.Warnw("dropping database", "instance_type", ds.cfg.InstanceType)
	return ds.db.Drop(ctx)
}

// Close disconnects the underlying client and disposes the DataSource.
func (ds *DataSource) Close(ctx context.Context) error {
	ds.mu.Lock()
	ds.state = Disposed
	ds.mu.Unlock()
	if ds.client == nil {
		return nil
	}
	return ds.client.Disconnect(ctx)
}

func (ds *DataSource) isReadOnly() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.state == ReadOnly
}

func (ds *DataSource) cutoffSnapshot() types.ID {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.cutoff
}

func (ds *DataSource) snapshot() (cutoff types.ID, freezeImports bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.cutoff, ds.freezeImports
}

func (ds *DataSource) checkDisposed() error {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.state == Disposed {
		return types.ErrDisposed
	}
	if ds.state == Uninitialized {
		return errors.New("datasource: not initialized")
	}
	return nil
}

func (ds *DataSource) checkWritable() error {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	switch ds.state {
	case Disposed:
		return types.ErrDisposed
	case ReadOnly:
		return types.ErrReadOnlyViolation
	case Uninitialized:
		return errors.New("datasource: not initialized")
	default:
		return nil
	}
}
