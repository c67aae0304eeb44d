package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prefs-service/internal/domain"
	"prefs-service/internal/repository"
)

const createPreferencesTable = `
CREATE TABLE IF NOT EXISTS preferences (
	user_id TEXT PRIMARY KEY,
	properties TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) repository.PreferencesRepository {
	return &PreferencesRepository{db: db}
}

func (r *PreferencesRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPreferencesTable); err != nil {
		return fmt.Errorf("create preferences table: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) FindByID(ctx context.Context, userID string) (*domain.Preferences, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, properties, created_at, updated_at
FROM preferences
WHERE user_id = ?`,
		userID,
	)

	var prefs domain.Preferences
	var properties sql.NullString
	if err := row.Scan(&prefs.UserID, &properties, &prefs.CreatedAt, &prefs.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan preferences: %w", err)
	}
	if properties.Valid {
		prefs.Properties = []byte(properties.String)
	}
	return &prefs, nil
}

func (r *PreferencesRepository) Save(ctx context.Context, prefs *domain.Preferences) error {
	now := time.Now().UTC()
	prefs.CreatedAt = now
	prefs.UpdatedAt = now

	var properties any
	if prefs.Properties != nil {
		properties = string(prefs.Properties)
	}

	// single-statement upsert keeps the per-key write atomic
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO preferences (user_id, properties, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	properties = excluded.properties,
	updated_at = excluded.updated_at`,
		prefs.UserID,
		properties,
		prefs.CreatedAt,
		prefs.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
