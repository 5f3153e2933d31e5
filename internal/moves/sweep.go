package moves

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/notify"
	"github.com/mmynk/moves/internal/storage"
	"github.com/mmynk/moves/internal/voting"
)

// Sweep deletes the group's moves that passed their deadline without reaching
// the threshold, up to the configured limit, and returns how many it removed.
//
// Each candidate is re-checked and deleted in its own transaction, so a vote
// that committed first is counted and an approved move is never removed. A
// move that fails to delete is logged and skipped; only a failure to find
// candidates is returned as an error.
func (s *Service) Sweep(ctx context.Context, groupID string) (int, error) {
	start := time.Now()
	defer func() { s.metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	if _, err := s.getGroup(ctx, groupID); err != nil {
		return 0, err
	}
	settings, err := s.store.GetSettings(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to get settings: %w", err)
	}

	candidates, err := s.store.ListSweepCandidates(ctx, groupID, s.clock(), settings.MinVotesRequired, s.sweepLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list sweep candidates: %w", err)
	}

	removed := 0
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		deleted, err := s.sweepMove(ctx, candidate.ID)
		if err != nil {
			s.metrics.SweepErrors.Inc()
			s.logger.Warn("Failed to sweep move", "group_id", groupID, "move_id", candidate.ID, "error", err)
			continue
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		s.metrics.MovesSwept.Add(float64(removed))
		s.publish(notify.Event{Type: notify.EventMovesSwept, GroupID: groupID, Count: removed})
		s.logger.Info("Swept expired moves", "group_id", groupID, "removed", removed, "candidates", len(candidates))
	}
	return removed, nil
}

// sweepMove deletes one move if, inside the transaction, it is still expired.
func (s *Service) sweepMove(ctx context.Context, moveID string) (bool, error) {
	deleted := false
	err := s.store.RunInTx(ctx, func(tx storage.Tx) error {
		move, err := tx.GetMove(ctx, moveID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		settings, err := tx.GetSettings(ctx, move.GroupID)
		if err != nil {
			return err
		}
		tally, err := tx.MoveTally(ctx, moveID)
		if err != nil {
			return err
		}
		if !voting.Expired(tally.VoteCount, settings.MinVotesRequired, s.clock(), move.Deadline) {
			return nil
		}
		if err := tx.DeleteMove(ctx, moveID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// notFoundOr maps storage.ErrNotFound to a NotFoundError and passes other errors through.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(err, format, args...)
	}
	return err
}

// domainOr returns domain errors unchanged and wraps infrastructure errors.
func domainOr(err error, action string) error {
	if apperr.CodeOf(err) != apperr.CodeUnknown {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
