package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Store = (*MongoStore)(nil)

// MongoStore is a MongoDB-backed Store for deployments without Redis. Expiry
// relies on a TTL index over expires_at; the TTL monitor only sweeps
// periodically, so reads check the deadline themselves as well.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a new store backed by the given DB.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("ephemeral_kv")}
}

// EnsureIndexes creates the TTL index. Call once at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	doc := bson.M{
		"_id":   key,
		"value": value,
	}
	if ttl > 0 {
		doc["expires_at"] = time.Now().UTC().Add(ttl)
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	return err
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc struct {
		Value []byte `bson:"value"`
	}
	err := s.coll.FindOne(ctx, s.liveFilter(key)).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.Value, nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Take removes the entry in the same operation that reads it.
func (s *MongoStore) Take(ctx context.Context, key string) ([]byte, error) {
	var doc struct {
		Value []byte `bson:"value"`
	}
	err := s.coll.FindOneAndDelete(ctx, s.liveFilter(key)).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.Value, nil
}

func (s *MongoStore) liveFilter(key string) bson.M {
	return bson.M{
		"_id": key,
		"$or": []bson.M{
			{"expires_at": bson.M{"$exists": false}},
			{"expires_at": bson.M{"$gt": time.Now().UTC()}},
		},
	}
}
