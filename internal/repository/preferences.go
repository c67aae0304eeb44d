package repository

import (
	"context"
	"errors"

	"prefs-service/internal/domain"
)

// ErrNotFound is returned when no preferences record exists for a user.
var ErrNotFound = errors.New("preferences not found")

// PreferencesRepository defines persistence operations for Preferences
// records. Save is an upsert keyed by UserID and must be atomic per key.
type PreferencesRepository interface {
	Init(ctx context.Context) error
	FindByID(ctx context.Context, userID string) (*domain.Preferences, error)
	Save(ctx context.Context, prefs *domain.Preferences) error
}
