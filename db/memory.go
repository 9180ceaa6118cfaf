package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"speakcoach/models"
)

// MemoryHistoryStore keeps discussion history in memory with the same
// capacity and eviction semantics as the Mongo store. Entries go through a
// JSON round trip on write, mirroring serialized storage, so anything that
// would not survive serialization fails here too. Used for tests and for
// running without a database.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	entries map[string][]models.DiscussionHistoryEntry // userID -> oldest..newest
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{entries: map[string][]models.DiscussionHistoryEntry{}}
}

func (s *MemoryHistoryStore) Save(ctx context.Context, entry models.DiscussionHistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize history entry: %w", err)
	}
	var stored models.DiscussionHistoryEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to deserialize history entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.entries[entry.UserID], stored)
	if len(list) > HistoryCapacity {
		list = list[len(list)-HistoryCapacity:]
	}
	s.entries[entry.UserID] = list
	return nil
}

// List returns the user's entries, newest first.
func (s *MemoryHistoryStore) List(ctx context.Context, userID string) ([]models.DiscussionHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[userID]
	out := make([]models.DiscussionHistoryEntry, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (s *MemoryHistoryStore) Get(ctx context.Context, userID, id string) (models.DiscussionHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries[userID] {
		if e.ID == id {
			return e, nil
		}
	}
	return models.DiscussionHistoryEntry{}, fmt.Errorf("history entry not found: %s", id)
}

func (s *MemoryHistoryStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[userID]
	for i, e := range list {
		if e.ID == id {
			s.entries[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("history entry not found: %s", id)
}

func (s *MemoryHistoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
