package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/workpad/pkg/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Defaults used when the configuration leaves them empty.
const (
	DefaultDatabase   = "workpad"
	DefaultCollection = "workpads"
)

// document is the stored shape. The workpad is kept as its JSON encoding so
// element extras survive unchanged.
type document struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store implements ports.WorkpadStore on a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// Open connects to uri and selects database/collection.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
		now:    time.Now,
	}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Save replaces (or inserts) the workpad document.
func (s *Store) Save(ctx context.Context, wp *domain.Workpad) error {
	body, err := json.Marshal(wp)
	if err != nil {
		return fmt.Errorf("failed to marshal workpad: %w", err)
	}

	doc := document{ID: wp.ID, Name: wp.Name, Body: string(body), UpdatedAt: s.now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": wp.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save workpad %s: %w", wp.ID, err)
	}
	return nil
}

// Load reads the workpad document.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	var doc document
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkpadNotFound
		}
		return nil, fmt.Errorf("load workpad %s: %w", id, err)
	}

	var wp domain.Workpad
	if err := json.Unmarshal([]byte(doc.Body), &wp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workpad %s: %w", id, err)
	}
	return &wp, nil
}

// Delete removes the workpad document.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete workpad %s: %w", id, err)
	}
	return nil
}

// List returns all workpad IDs ordered by ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list workpads: %w", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list workpads: %w", err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
