// Package storage persists the completed-problem log of study sessions so a
// participant can resume and researchers can export the data later.
package storage

import (
	"context"
	"errors"
	"fmt"

	"rrstudy/internal/models"
)

// ErrUnavailable marks a failure to reach the backing store. Callers treat
// it as non-fatal and continue in memory.
var ErrUnavailable = errors.New("storage unavailable")

// Store saves and loads session progress
type Store interface {
	// SaveProgress replaces the stored copy of a session
	SaveProgress(ctx context.Context, saved models.SavedSession) error
	// LoadProgress returns a stored session; found is false when there is none
	LoadProgress(ctx context.Context, sessionID string) (saved models.SavedSession, found bool, err error)
	// ClearProgress removes a stored session
	ClearProgress(ctx context.Context, sessionID string) error
	// ListSessions describes every stored session, most recently updated first
	ListSessions(ctx context.Context) ([]models.StoredSession, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
