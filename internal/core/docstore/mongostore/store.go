// Package mongostore implements docstore.Store on MongoDB.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"storefront/internal/core/docstore"
	"storefront/internal/core/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	countersCollection = "counters"
	counterValueField  = "value"
	mongoIDField       = "_id"

	maxExactFloat = 1 << 53
)

// Store is a docstore.Store backed by a MongoDB database.
type Store struct {
	db *mongo.Database
}

var _ docstore.Store = (*Store)(nil)

// New wraps an already connected database.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Connect dials uri and returns a Store for database. The caller owns the
// returned store and must Close it.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return New(client.Database(database)), nil
}

// Collection returns the named collection.
func (s *Store) Collection(name string) docstore.Collection {
	return &collection{coll: s.db.Collection(name)}
}

// Counters returns the counters kept in the "counters" collection.
func (s *Store) Counters() docstore.Counters {
	return &counters{coll: s.db.Collection(countersCollection)}
}

// Ping runs the ping command against the database.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

type collection struct {
	coll *mongo.Collection
}

func (c *collection) List(ctx context.Context) ([]docstore.Document, error) {
	return c.find(ctx, bson.M{})
}

func (c *collection) Get(ctx context.Context, id string) (docstore.Document, error) {
	raw, err := c.coll.FindOne(ctx, bson.M{mongoIDField: id}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", docstore.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", c.coll.Name(), id, err)
	}
	return fromRaw(raw)
}

func (c *collection) Create(ctx context.Context, doc docstore.Document) (string, error) {
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	stored := toMongo(doc)
	stored[mongoIDField] = id

	if _, err := c.coll.InsertOne(ctx, stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: document %s already exists", docstore.ErrConflict, id)
		}
		return "", fmt.Errorf("failed to insert into %s: %w", c.coll.Name(), err)
	}
	return id, nil
}

func (c *collection) Update(ctx context.Context, id string, patch docstore.Document) error {
	set := toMongo(patch)
	delete(set, mongoIDField)
	if len(set) == 0 {
		return nil
	}
	res, err := c.coll.UpdateOne(ctx, bson.M{mongoIDField: id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", c.coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, id)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{mongoIDField: id})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", c.coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, id)
	}
	return nil
}

func (c *collection) FindByField(ctx context.Context, field string, value any) ([]docstore.Document, error) {
	return c.find(ctx, bson.M{fieldName(field): bsonValue(value)})
}

func (c *collection) ExistsByField(ctx context.Context, field string, value any) (bool, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M{fieldName(field): bsonValue(value)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count %s: %w", c.coll.Name(), err)
	}
	return n > 0, nil
}

// Subscribe opens a change stream, which requires a replica set. Every event
// triggers a fresh snapshot.
func (c *collection) Subscribe(ctx context.Context, onChange docstore.ChangeFunc) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := c.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch %s: %w", c.coll.Name(), err)
	}

	docs, err := c.List(ctx)
	if err != nil {
		cancel()
		_ = stream.Close(context.Background())
		return nil, err
	}

	go func() {
		defer stream.Close(context.Background())
		onChange(docs)
		for stream.Next(ctx) {
			docs, err := c.List(ctx)
			if err != nil {
				logger.Get().Warn("Failed to refresh snapshot", zap.String("collection", c.coll.Name()), zap.Error(err))
				continue
			}
			onChange(docs)
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logger.Get().Error("Change stream stopped", zap.String("collection", c.coll.Name()), zap.Error(err))
		}
	}()

	return cancel, nil
}

func (c *collection) find(ctx context.Context, filter bson.M) ([]docstore.Document, error) {
	cursor, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]docstore.Document, 0)
	for cursor.Next(ctx) {
		doc, err := fromRaw(cursor.Current)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

type counters struct {
	coll *mongo.Collection
}

// UpdateCounter is a compare-and-swap on the counter document: insert when
// absent, otherwise update filtered on the value that was read.
func (c *counters) UpdateCounter(ctx context.Context, name string, next func(int64, bool) int64) (int64, error) {
	var current struct {
		Value int64 `bson:"value"`
	}
	err := c.coll.FindOne(ctx, bson.M{mongoIDField: name}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		value := next(0, false)
		_, err := c.coll.InsertOne(ctx, bson.M{mongoIDField: name, counterValueField: value})
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: counter %s created concurrently", docstore.ErrConflict, name)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to create counter %s: %w", name, err)
		}
		return value, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", name, err)
	}

	value := next(current.Value, true)
	res, err := c.coll.UpdateOne(ctx,
		bson.M{mongoIDField: name, counterValueField: current.Value},
		bson.M{"$set": bson.M{counterValueField: value}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update counter %s: %w", name, err)
	}
	if res.MatchedCount == 0 {
		return 0, fmt.Errorf("%w: counter %s moved past %d", docstore.ErrConflict, name, current.Value)
	}
	return value, nil
}

func fieldName(field string) string {
	if field == docstore.IDField {
		return mongoIDField
	}
	return field
}

func toMongo(doc docstore.Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		if k == docstore.IDField {
			continue
		}
		out[k] = bsonValue(v)
	}
	return out
}

// bsonValue stores integral float64 values as int64. Documents arrive as
// decoded JSON, and a BSON double reads back as "100.0", which does not
// decode into integer fields.
func bsonValue(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) <= maxExactFloat {
			return int64(t)
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = bsonValue(e)
		}
		return out
	case docstore.Document:
		return bsonValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = bsonValue(e)
		}
		return out
	default:
		return v
	}
}

// fromRaw goes through relaxed extended JSON so nested documents come back
// as plain maps rather than primitive.D.
func fromRaw(raw bson.Raw) (docstore.Document, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if id, ok := doc[mongoIDField]; ok {
		doc[docstore.IDField] = fmt.Sprint(id)
		delete(doc, mongoIDField)
	}
	return doc, nil
}
