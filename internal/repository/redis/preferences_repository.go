package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"prefs-service/internal/domain"
	"prefs-service/internal/repository"
)

// Options configures the redis backed preferences repository.
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// PreferencesRepository stores one JSON value per user under a key prefix.
type PreferencesRepository struct {
	client    *redis.Client
	keyPrefix string
}

func NewPreferencesRepository(opts Options) repository.PreferencesRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := strings.TrimSuffix(opts.KeyPrefix, ":")
	if prefix == "" {
		prefix = "preferences"
	}

	return &PreferencesRepository{
		client:    client,
		keyPrefix: prefix,
	}
}

func (r *PreferencesRepository) Init(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) FindByID(ctx context.Context, userID string) (*domain.Preferences, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("stored preferences for %s are not valid JSON", userID)
	}

	return &domain.Preferences{
		UserID:     userID,
		Properties: data,
	}, nil
}

func (r *PreferencesRepository) Save(ctx context.Context, prefs *domain.Preferences) error {
	value := prefs.Properties
	if value == nil {
		value = []byte("null")
	}

	// single SET keeps the per-key write atomic; no TTL, preferences are durable
	if err := r.client.Set(ctx, r.key(prefs.UserID), []byte(value), 0).Err(); err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) key(userID string) string {
	return r.keyPrefix + ":" + userID
}
