package local

import (
	"context"
	"database/sql"
	"errors"

	"todowork/internal/service"
)

// GetProfile implements service.ProfileStore.
func (s *Store) GetProfile(ctx context.Context, userID string) (service.Profile, bool, error) {
	var p service.Profile
	err := s.DB.QueryRowContext(ctx,
		`SELECT display_name, secondary_id FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.DisplayName, &p.SecondaryID)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Profile{}, false, nil
	}
	if err != nil {
		return service.Profile{}, false, err
	}
	return p, true, nil
}

// SetProfile implements service.ProfileStore.
func (s *Store) SetProfile(ctx context.Context, userID string, p service.Profile) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, secondary_id) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET display_name = excluded.display_name, secondary_id = excluded.secondary_id`,
		userID, p.DisplayName, p.SecondaryID)
	return err
}
