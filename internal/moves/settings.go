package moves

import (
	"context"
	"fmt"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/notify"
	"github.com/mmynk/moves/internal/storage"
	"github.com/mmynk/moves/internal/voting"
)

// GetSettings returns the group's settings, or the defaults if the owner never set any.
func (s *Service) GetSettings(ctx context.Context, groupID string) (*models.GroupSettings, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings replaces the group's threshold and vote window. Only the
// owner may do this. Existing moves keep their deadlines.
func (s *Service) UpdateSettings(ctx context.Context, groupID, requesterID string, minVotesRequired, voteDeadlineHours int) (*models.GroupSettings, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != requesterID {
		return nil, apperr.Permission("only the group owner can update settings")
	}

	settings := &models.GroupSettings{
		GroupID:           groupID,
		MinVotesRequired:  minVotesRequired,
		VoteDeadlineHours: voteDeadlineHours,
	}
	err = s.store.RunInTx(ctx, func(tx storage.Tx) error {
		members, err := tx.CountMembers(ctx, groupID)
		if err != nil {
			return err
		}
		if err := voting.ValidateSettings(minVotesRequired, voteDeadlineHours, members); err != nil {
			return err
		}
		settings.UpdatedAt = s.clock().Unix()
		return tx.PutSettings(ctx, settings)
	})
	if err != nil {
		return nil, domainOr(err, "update settings")
	}

	s.publish(notify.Event{Type: notify.EventSettingsUpdated, GroupID: groupID, UserID: requesterID})
	s.logger.Info("Settings updated",
		"group_id", groupID,
		"min_votes_required", minVotesRequired,
		"vote_deadline_hours", voteDeadlineHours,
	)
	return settings, nil
}
