package suspend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/session"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "parked_sales"

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{collection: db.Collection(collectionName)}
}

func (m *mongoStore) Park(ctx context.Context, snap *session.Snapshot) (string, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	if _, err := m.collection.InsertOne(ctx, snap); err != nil {
		return "", fmt.Errorf("failed to park sale: %w", err)
	}
	return snap.ID, nil
}

func (m *mongoStore) Resume(ctx context.Context, id string) (*session.Snapshot, error) {
	var snap session.Snapshot

	filter := bson.M{"_id": id}
	err := m.collection.FindOneAndDelete(ctx, filter).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrParkedSaleNotFound
		}
		return nil, fmt.Errorf("failed to resume sale: %w", err)
	}

	return &snap, nil
}

func (m *mongoStore) List(ctx context.Context, stationID string) ([]*session.Snapshot, error) {
	filter := bson.M{}
	if stationID != "" {
		filter["station_id"] = stationID
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list parked sales: %w", err)
	}
	defer cursor.Close(ctx)

	var snaps []*session.Snapshot
	if err := cursor.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("failed to decode parked sales: %w", err)
	}

	return snaps, nil
}
