package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"speakcoach/models"
)

// HistoryCapacity is the maximum number of discussion history entries kept
// per user. The oldest entries are evicted first (FIFO).
const HistoryCapacity = 20

// MongoHistoryStore persists discussion history entries in MongoDB with
// append-then-trim semantics.
type MongoHistoryStore struct {
	collection *mongo.Collection
}

func NewMongoHistoryStore() *MongoHistoryStore {
	return &MongoHistoryStore{collection: DiscussionHistoryCollection}
}

// Save inserts the entry, then trims the user's history back to capacity
// by deleting the oldest entries beyond it.
func (s *MongoHistoryStore) Save(ctx context.Context, entry models.DiscussionHistoryEntry) error {
	if s.collection == nil {
		return fmt.Errorf("database not initialized")
	}

	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	// Find everything past the newest HistoryCapacity entries and drop it.
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64(HistoryCapacity)).
		SetProjection(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, bson.M{"userId": entry.UserID}, opts)
	if err != nil {
		return fmt.Errorf("failed to check history capacity: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err == nil {
			stale = append(stale, doc.ID)
		}
	}
	if len(stale) > 0 {
		if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": stale}}); err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}
	return nil
}

// List returns the user's history entries, newest first.
func (s *MongoHistoryStore) List(ctx context.Context, userID string) ([]models.DiscussionHistoryEntry, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.DiscussionHistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return entries, nil
}

func (s *MongoHistoryStore) Get(ctx context.Context, userID, id string) (models.DiscussionHistoryEntry, error) {
	var entry models.DiscussionHistoryEntry
	if s.collection == nil {
		return entry, fmt.Errorf("database not initialized")
	}

	err := s.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return entry, fmt.Errorf("history entry not found: %s", id)
	}
	if err != nil {
		return entry, fmt.Errorf("failed to load history entry: %w", err)
	}
	return entry, nil
}

func (s *MongoHistoryStore) Delete(ctx context.Context, userID, id string) error {
	if s.collection == nil {
		return fmt.Errorf("database not initialized")
	}
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	return err
}

func (s *MongoHistoryStore) Clear(ctx context.Context, userID string) error {
	if s.collection == nil {
		return fmt.Errorf("database not initialized")
	}
	_, err := s.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
