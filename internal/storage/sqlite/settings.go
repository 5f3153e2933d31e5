package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/moves/internal/models"
)

// GetSettings returns the group's stored settings, or the defaults when none exist.
func (s queries) GetSettings(ctx context.Context, groupID string) (*models.GroupSettings, error) {
	settings := &models.GroupSettings{GroupID: groupID}
	err := s.q.QueryRowContext(ctx,
		`SELECT min_votes_required, vote_deadline_hours, updated_at
		 FROM group_settings WHERE group_id = ?`,
		groupID,
	).Scan(&settings.MinVotesRequired, &settings.VoteDeadlineHours, &settings.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultGroupSettings(groupID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// PutSettings upserts the group's settings.
func (s queries) PutSettings(ctx context.Context, settings *models.GroupSettings) error {
	if settings.UpdatedAt == 0 {
		settings.UpdatedAt = time.Now().Unix()
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO group_settings (group_id, min_votes_required, vote_deadline_hours, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (group_id) DO UPDATE SET
		     min_votes_required = excluded.min_votes_required,
		     vote_deadline_hours = excluded.vote_deadline_hours,
		     updated_at = excluded.updated_at`,
		settings.GroupID, settings.MinVotesRequired, settings.VoteDeadlineHours, settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put settings: %w", err)
	}
	return nil
}
