package storage

import (
	"context"
	"sort"
	"sync"

	"rrstudy/internal/models"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.SavedSession
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.SavedSession)}
}

func (s *MemoryStore) SaveProgress(ctx context.Context, saved models.SavedSession) error {
	saved.Completed = models.CloneRecords(saved.Completed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[saved.SessionID] = saved
	return nil
}

func (s *MemoryStore) LoadProgress(ctx context.Context, sessionID string) (models.SavedSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved, ok := s.sessions[sessionID]
	if !ok {
		return models.SavedSession{}, false, nil
	}
	saved.Completed = models.CloneRecords(saved.Completed)
	return saved, true, nil
}

func (s *MemoryStore) ClearProgress(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) ListSessions(ctx context.Context) ([]models.StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]models.StoredSession, 0, len(s.sessions))
	for _, saved := range s.sessions {
		sessions = append(sessions, saved.Summary())
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}
