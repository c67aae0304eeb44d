package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"prefs-service/internal/domain"
	"prefs-service/internal/problem"
	"prefs-service/internal/repository"
)

// PreferencesService is the business logic between the HTTP boundary and
// the repository.
type PreferencesService interface {
	// Get returns the stored document for userID, or a default document
	// with null properties when none exists. It never fails with not-found.
	Get(ctx context.Context, userID string) (*domain.Preferences, error)
	// Save replaces the whole document for userID and returns the persisted
	// state. Saves are idempotent; concurrent writers race and the last
	// commit wins.
	Save(ctx context.Context, userID string, properties json.RawMessage) (*domain.Preferences, error)
}

type preferencesService struct {
	prefs  repository.PreferencesRepository
	logger *logrus.Logger
}

func NewPreferencesService(prefs repository.PreferencesRepository, logger *logrus.Logger) PreferencesService {
	if logger == nil {
		logger = logrus.New()
	}
	return &preferencesService{
		prefs:  prefs,
		logger: logger,
	}
}

func (s *preferencesService) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	prefs, err := s.prefs.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// the empty default spares callers a 404 special case and does
			// not reveal whether the user ever saved anything
			return &domain.Preferences{UserID: userID}, nil
		}
		return nil, s.persistenceFailure("get", userID, err)
	}
	return prefs, nil
}

func (s *preferencesService) Save(ctx context.Context, userID string, properties json.RawMessage) (*domain.Preferences, error) {
	prefs := &domain.Preferences{
		UserID:     userID,
		Properties: properties,
	}

	if err := s.prefs.Save(ctx, prefs); err != nil {
		return nil, s.persistenceFailure("save", userID, err)
	}
	return prefs, nil
}

// persistenceFailure logs the repository error once with identifying context
// and converts it into the uniform problem surfaced to the boundary.
func (s *preferencesService) persistenceFailure(operation, userID string, err error) error {
	s.logger.WithFields(logrus.Fields{
		"operation": operation,
		"userId":    userID,
		"resource":  "preferences",
	}).Errorf("preferences %s failed: %v", operation, err)

	return problem.Persistence("could not " + operation + " user preferences")
}
