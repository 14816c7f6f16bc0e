package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/luminalib/lumina-server/internal/domain"
)

const preferencePrefix = "pref:"

var ErrPreferenceNotFound = errors.New("preference not found")

// SetUserPreference upserts a user's preference profile. One record
// per user, keyed by user ID.
func (s *Store) SetUserPreference(_ context.Context, pref *domain.UserPreference) error {
	key := []byte(preferencePrefix + pref.UserID)
	pref.UpdatedAt = time.Now()

	data, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("marshal preference: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user preference updated", "user_id", pref.UserID)
	}
	return nil
}

// GetUserPreference retrieves a user's preference profile.
func (s *Store) GetUserPreference(_ context.Context, userID string) (*domain.UserPreference, error) {
	key := []byte(preferencePrefix + userID)

	var pref domain.UserPreference
	if err := s.get(key, &pref); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return &pref, nil
}
