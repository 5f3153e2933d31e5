package moves

import (
	"context"
	"fmt"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/metrics"
	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/notify"
	"github.com/mmynk/moves/internal/storage"
	"github.com/mmynk/moves/internal/voting"
)

// VoteResult is the state of a move after a vote.
type VoteResult struct {
	Tally    models.Tally
	Status   models.Status
	Approved bool

	// Inserted is false when the user had already voted.
	Inserted bool
}

// CastVote records userID's vote on a move and returns the updated tally.
// Voting twice is a no-op that returns the current tally. Votes on an expired
// move are rejected, so a vote can never revive it.
func (s *Service) CastVote(ctx context.Context, moveID, userID string) (*VoteResult, error) {
	move, err := s.getMove(ctx, moveID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, move.GroupID, userID); err != nil {
		return nil, err
	}

	var result VoteResult
	crossed := false
	err = s.store.RunInTx(ctx, func(tx storage.Tx) error {
		// Re-read inside the transaction: a sweep may have removed the move.
		move, err := tx.GetMove(ctx, moveID)
		if err != nil {
			return notFoundOr(err, "move %s not found", moveID)
		}
		settings, err := tx.GetSettings(ctx, move.GroupID)
		if err != nil {
			return err
		}
		before, err := tx.MoveTally(ctx, moveID)
		if err != nil {
			return err
		}

		now := s.clock()
		if voting.Expired(before.VoteCount, settings.MinVotesRequired, now, move.Deadline) {
			return apperr.Expired("move %s expired without reaching %d votes",
				moveID, settings.MinVotesRequired)
		}

		after := before
		if !before.HasVoted(userID) {
			inserted, err := tx.InsertVote(ctx, &models.Vote{MoveID: moveID, UserID: userID, CreatedAt: now.Unix()})
			if err != nil {
				return err
			}
			after, err = tx.MoveTally(ctx, moveID)
			if err != nil {
				return err
			}
			result.Inserted = inserted
		}

		result.Tally = after
		result.Status = voting.StatusOf(after.VoteCount, settings.MinVotesRequired, now, move.Deadline)
		result.Approved = result.Status == models.StatusApproved
		crossed = voting.CrossedThreshold(before.VoteCount, after.VoteCount, settings.MinVotesRequired)
		return nil
	})
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeExpired {
			s.metrics.VotesCast.WithLabelValues(metrics.VoteRejected).Inc()
		}
		return nil, domainOr(err, "cast vote")
	}

	if !result.Inserted {
		s.metrics.VotesCast.WithLabelValues(metrics.VoteDuplicate).Inc()
		return &result, nil
	}

	s.metrics.VotesCast.WithLabelValues(metrics.VoteInserted).Inc()
	s.publish(notify.Event{
		Type: notify.EventVoteCast, GroupID: move.GroupID, MoveID: moveID,
		UserID: userID, Count: result.Tally.VoteCount,
	})
	if crossed {
		s.metrics.MovesApproved.Inc()
		s.publish(notify.Event{
			Type: notify.EventMoveApproved, GroupID: move.GroupID, MoveID: moveID,
			UserID: userID, Count: result.Tally.VoteCount,
		})
		s.logger.Info("Move approved", "move_id", moveID, "group_id", move.GroupID, "votes", result.Tally.VoteCount)
	}
	return &result, nil
}

// Tally returns the live tally of every move in the group, keyed by move ID.
func (s *Service) Tally(ctx context.Context, groupID string) (map[string]models.Tally, error) {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.tallies(ctx, groupID)
}

func (s *Service) tallies(ctx context.Context, groupID string) (map[string]models.Tally, error) {
	list, err := s.store.GroupTally(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	tallies := make(map[string]models.Tally, len(list))
	for _, t := range list {
		tallies[t.MoveID] = t
	}
	return tallies, nil
}
