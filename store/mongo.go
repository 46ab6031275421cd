package store

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/tstore/logger"
	"github.com/forbearing/tstore/router"
	"github.com/forbearing/tstore/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	defaultIndexName     = "Default"
	reservedKeyIndexName = "Key"
)

// collection is the subset of a live collection's behavior MongoStore
// depends on, narrowed to plain BSON documents in and out so the package can
// be tested against an in-memory fake instead of a live server — the same
// interface-substitution style resolve, catalog and datasource use in front
// of Store itself.
type collection interface {
	Name() string
	InsertOne(ctx context.Context, doc any) error
	FindOne(ctx context.Context, filter bson.D) (bson.Raw, error)
	Find(ctx context.Context, filter, sort, projection bson.D, batchSize int32) (cursor, error)
	CreateIndex(ctx context.Context, name string, keys bson.D) error
}

// cursor streams raw BSON documents. liveCollection's Find wraps a live
// *mongo.Cursor; a test fake can implement it directly over an in-memory
// slice.
type cursor interface {
	Next(ctx context.Context) bool
	Current() bson.Raw
	Decode(v any) error
	Err() error
	Close(ctx context.Context) error
}

// liveCollection adapts a live *mongo.Collection to collection.
type liveCollection struct {
	coll *mongo.Collection
}

func (c *liveCollection) Name() string { return c.coll.Name() }

func (c *liveCollection) InsertOne(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return err
}

func (c *liveCollection) FindOne(ctx context.Context, filter bson.D) (bson.Raw, error) {
	return c.coll.FindOne(ctx, filter).Raw()
}

func (c *liveCollection) Find(ctx context.Context, filter, sort, projection bson.D, batchSize int32) (cursor, error) {
	opts := options.Find().SetSort(sort)
	if projection != nil {
		opts.SetProjection(projection)
	}
	if batchSize > 0 {
		opts.SetBatchSize(batchSize)
	}
	cur, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return &liveCursor{cur: cur}, nil
}

func (c *liveCollection) CreateIndex(ctx context.Context, name string, keys bson.D) error {
	model := mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
	_, err := c.coll.Indexes().CreateOne(ctx, model)
	return err
}

type liveCursor struct {
	cur *mongo.Cursor
}

func (c *liveCursor) Next(ctx context.Context) bool  { return c.cur.Next(ctx) }
func (c *liveCursor) Current() bson.Raw              { return c.cur.Current }
func (c *liveCursor) Decode(v any) error              { return c.cur.Decode(v) }
func (c *liveCursor) Err() error                      { return c.cur.Err() }
func (c *liveCursor) Close(ctx context.Context) error { return c.cur.Close(ctx) }

// MongoStore is the Store implementation backed by a live collection. One
// MongoStore wraps one polymorphic root family's collection.
type MongoStore struct {
	coll collection
	rt   *router.Router
	disc types.Discriminator

	mu      sync.Mutex
	indexes map[string][]IndexField
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore wraps coll as a Store. rt is the shared router used to
// encode/decode the polymorphic family's discriminator; disc selects the
// wire discriminator convention.
func NewMongoStore(coll *mongo.Collection, rt *router.Router, disc types.Discriminator) *MongoStore {
	return &MongoStore{coll: &liveCollection{coll: coll}, rt: rt, disc: disc, indexes: make(map[string][]IndexField)}
}

func (s *MongoStore) InsertUnique(ctx context.Context, rec types.Record) error {
	doc, err := encodeRecord(s.rt, s.disc, rec)
	if err != nil {
		return err
	}
	if err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(types.ErrDuplicateID, "id %s", rec.RecordID().Hex())
		}
		return errors.Wrapf(err, "store: insert %s", rec.RecordKey())
	}
	logger.Store.Debugw("inserted", "collection", s.coll.Name(), "key", rec.RecordKey(), "id", rec.RecordID().Hex())
	return nil
}

func (s *MongoStore) LoadByID(ctx context.Context, id types.ID) (types.Record, error) {
	raw, err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "store: load %s", id.Hex())
	}
	return decodeRecord(s.rt, raw)
}

func (s *MongoStore) QueryByKeys(ctx context.Context, keys []string, datasets []types.ID, cutoff types.ID) (RecordIterator, error) {
	filter := bson.D{{Key: "_key", Value: bson.D{{Key: "$in", Value: keys}}}}
	if len(datasets) > 0 {
		filter = append(filter, bson.E{Key: "_dataset", Value: bson.D{{Key: "$in", Value: datasets}}})
	}
	if cutoff != types.Empty {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$lte", Value: cutoff}}})
	}
	sort := bson.D{{Key: "_key", Value: 1}, {Key: "_dataset", Value: -1}, {Key: "_id", Value: -1}}
	cur, err := s.coll.Find(ctx, filter, sort, nil, 0)
	if err != nil {
		return nil, errors.Wrap(err, "store: query by keys")
	}
	return &mongoRecordIterator{cur: cur, rt: s.rt}, nil
}

func (s *MongoStore) Probe(ctx context.Context, q ProbeQuery) (ProbeIterator, error) {
	filter := bson.D{}
	for field, val := range q.Filter {
		filter = append(filter, bson.E{Key: field, Value: val})
	}
	filter = append(filter, chainFilter(s.rt, s.disc, q.Chain)...)

	sort := bson.D{}
	for _, term := range q.Sort {
		dir := 1
		if term.Descending {
			dir = -1
		}
		sort = append(sort, bson.E{Key: term.Field, Value: dir})
	}
	sort = append(sort, bson.E{Key: "_key", Value: 1}, bson.E{Key: "_dataset", Value: -1}, bson.E{Key: "_id", Value: -1})

	projection := bson.D{{Key: "_id", Value: 1}, {Key: "_key", Value: 1}}
	cur, err := s.coll.Find(ctx, filter, sort, projection, int32(q.BatchSize))
	if err != nil {
		return nil, errors.Wrap(err, "store: probe")
	}
	return &mongoProbeIterator{cur: cur}, nil
}

func (s *MongoStore) CreateDefaultIndex(ctx context.Context) error {
	keys := bson.D{{Key: "_key", Value: 1}, {Key: "_dataset", Value: -1}, {Key: "_id", Value: -1}}
	if err := s.coll.CreateIndex(ctx, defaultIndexName, keys); err != nil {
		return errors.Wrap(err, "store: create default index")
	}
	logger.Store.Infow("created default index", "collection", s.coll.Name())
	return nil
}

func (s *MongoStore) CreateUserIndex(ctx context.Context, name string, fields []IndexField) error {
	if name == defaultIndexName || name == reservedKeyIndexName {
		return errors.Wrapf(types.ErrReservedIndexName, "name %q", name)
	}

	s.mu.Lock()
	if existing, ok := s.indexes[name]; ok {
		conflict := !sameFieldOrder(existing, fields)
		s.mu.Unlock()
		if conflict {
			return errors.Wrapf(types.ErrIndexOrderConflict, "index %q", name)
		}
		return nil
	}
	s.indexes[name] = fields
	s.mu.Unlock()

	keys := make(bson.D, 0, len(fields)+3)
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		keys = append(keys, bson.E{Key: f.Name, Value: dir})
	}
	keys = append(keys, bson.E{Key: "_key", Value: 1}, bson.E{Key: "_dataset", Value: -1}, bson.E{Key: "_id", Value: -1})
	if err := s.coll.CreateIndex(ctx, name, keys); err != nil {
		return errors.Wrapf(err, "store: create index %q", name)
	}
	logger.Store.Infow("created user index", "collection", s.coll.Name(), "name", name)
	return nil
}

func sameFieldOrder(a, b []IndexField) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type mongoRecordIterator struct {
	cur cursor
	rt  *router.Router
	rec types.Record
	err error
}

func (it *mongoRecordIterator) Next(ctx context.Context) bool {
	if it.err != nil || !it.cur.Next(ctx) {
		return false
	}
	rec, err := decodeRecord(it.rt, it.cur.Current())
	if err != nil {
		it.err = err
		return false
	}
	it.rec = rec
	return true
}

func (it *mongoRecordIterator) Record() types.Record { return it.rec }

func (it *mongoRecordIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.cur.Err()
}

func (it *mongoRecordIterator) Close(ctx context.Context) error { return it.cur.Close(ctx) }

type probeDoc struct {
	ID  types.ID `bson:"_id"`
	Key string   `bson:"_key"`
}

type mongoProbeIterator struct {
	cur cursor
	hit ProbeHit
	err error
}

func (it *mongoProbeIterator) Next(ctx context.Context) bool {
	if it.err != nil || !it.cur.Next(ctx) {
		return false
	}
	var doc probeDoc
	if err := it.cur.Decode(&doc); err != nil {
		it.err = err
		return false
	}
	it.hit = ProbeHit{ID: doc.ID, Key: doc.Key}
	return true
}

func (it *mongoProbeIterator) Hit() ProbeHit { return it.hit }

func (it *mongoProbeIterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.cur.Err()
}

func (it *mongoProbeIterator) Close(ctx context.Context) error { return it.cur.Close(ctx) }
