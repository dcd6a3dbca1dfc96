package storage

import (
	"context"

	"rrstudy/internal/models"
	"rrstudy/internal/repository"
)

// SQLStore adapts the progress repository to Store
type SQLStore struct {
	repo *repository.ProgressRepository
}

// NewSQLStore wraps a progress repository
func NewSQLStore(repo *repository.ProgressRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) SaveProgress(ctx context.Context, saved models.SavedSession) error {
	if err := s.repo.SaveSession(ctx, saved); err != nil {
		return unavailable("save session", err)
	}
	return nil
}

func (s *SQLStore) LoadProgress(ctx context.Context, sessionID string) (models.SavedSession, bool, error) {
	saved, found, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return models.SavedSession{}, false, unavailable("load session", err)
	}
	return saved, found, nil
}

func (s *SQLStore) ClearProgress(ctx context.Context, sessionID string) error {
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return unavailable("clear session", err)
	}
	return nil
}

func (s *SQLStore) ListSessions(ctx context.Context) ([]models.StoredSession, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	return sessions, nil
}
