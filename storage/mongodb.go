package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pastebin-lite/pastebin-lite/models"
)

var _ PasteStore = (*MongoStore)(nil)

// MongoStore implements PasteStore using MongoDB.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the pastes collection.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection("pastes"),
	}
	if err := store.createIndexes(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// createIndexes sets up the TTL index used for storage reclamation and the
// created_at index for diagnostics queries.
func (m *MongoStore) createIndexes(ctx context.Context) error {
	ttlIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	createdAtIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{ttlIndex, createdAtIndex})
	return err
}

// Create inserts a new paste document.
func (m *MongoStore) Create(ctx context.Context, paste *models.Paste) error {
	_, err := m.collection.InsertOne(ctx, paste)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateID
	}
	return err
}

// Get retrieves a paste by its id.
func (m *MongoStore) Get(ctx context.Context, id string) (*models.Paste, error) {
	var paste models.Paste
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&paste)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &paste, nil
}

// availableFilter matches the paste only while it may still be served at now.
// A missing expires_at or max_views field means the respective limit is not
// set; {"field": nil} matches both null and absent fields.
func availableFilter(id string, now time.Time) bson.M {
	return bson.M{
		"_id": id,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"expires_at": nil},
				bson.M{"expires_at": bson.M{"$gt": now}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"max_views": nil},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$view_count", "$max_views"}}},
			}},
		},
	}
}

// ConsumeView increments the view count with a single FindOneAndUpdate whose
// filter encodes the availability condition, so the check and the increment
// are one atomic document operation.
func (m *MongoStore) ConsumeView(ctx context.Context, id string, now time.Time) (*models.Paste, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$inc": bson.M{"view_count": 1}}

	var paste models.Paste
	err := m.collection.FindOneAndUpdate(ctx, availableFilter(id, now), update, opts).Decode(&paste)
	if err == nil {
		return &paste, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// The filter did not match: fetch the document once more to tell a
	// missing paste from an exhausted one.
	existing, getErr := m.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if avail := models.CheckAvailability(existing, now); !avail.Available {
		switch avail.Reason {
		case models.ReasonExpired:
			return nil, ErrExpired
		default:
			return nil, ErrViewLimit
		}
	}
	// Evaluated as available after the update missed; only a concurrent
	// delete-and-recreate can cause this. Report not found.
	return nil, ErrNotFound
}

// Delete removes a paste document; unknown ids are ignored.
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// PurgeExpired removes documents whose expiry has passed. The TTL index
// already reclaims these; this makes reclamation immediate when the janitor
// is enabled.
func (m *MongoStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := m.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{
		"$ne":  nil,
		"$lte": now,
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Ping verifies the MongoDB connection.
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
