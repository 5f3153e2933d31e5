// Package voting derives the read-time state of moves from their tallies.
//
// Nothing here touches storage. Every function is a pure function of the vote
// count, the group's threshold, the current time and the move's deadline, so
// approval and expiry can never drift from the vote ledger.
package voting

import (
	"time"

	"github.com/mmynk/moves/internal/apperr"
	"github.com/mmynk/moves/internal/models"
)

// Approved reports whether a move with voteCount distinct voters meets the threshold.
func Approved(voteCount, minVotesRequired int) bool {
	return voteCount >= minVotesRequired
}

// Expired reports whether the deadline has passed without the move being approved.
// A move is still open at exactly its deadline.
func Expired(voteCount, minVotesRequired int, now time.Time, deadline int64) bool {
	return now.Unix() > deadline && !Approved(voteCount, minVotesRequired)
}

// StatusOf returns the derived status of a move.
func StatusOf(voteCount, minVotesRequired int, now time.Time, deadline int64) models.Status {
	switch {
	case Approved(voteCount, minVotesRequired):
		return models.StatusApproved
	case Expired(voteCount, minVotesRequired, now, deadline):
		return models.StatusExpired
	default:
		return models.StatusActive
	}
}

// CrossedThreshold reports whether going from before to after votes approved the move.
func CrossedThreshold(before, after, minVotesRequired int) bool {
	return !Approved(before, minVotesRequired) && Approved(after, minVotesRequired)
}

// Deadline computes a new move's deadline from the settings in effect at creation.
func Deadline(createdAt time.Time, settings *models.GroupSettings) int64 {
	return createdAt.Add(settings.VoteWindow()).Unix()
}

// View combines a move, its tally and the group's settings into the move's read-time state.
func View(move *models.Move, tally models.Tally, settings *models.GroupSettings, now time.Time) models.MoveView {
	status := StatusOf(tally.VoteCount, settings.MinVotesRequired, now, move.Deadline)
	return models.MoveView{
		Move:     move,
		Tally:    tally,
		Status:   status,
		Approved: status == models.StatusApproved,
		Expired:  status == models.StatusExpired,
	}
}

// ValidateSettings checks proposed settings against a group of memberCount members.
func ValidateSettings(minVotesRequired, voteDeadlineHours, memberCount int) error {
	if memberCount < 1 {
		memberCount = 1
	}
	if minVotesRequired < 1 || minVotesRequired > memberCount {
		return apperr.Validation("min_votes_required must be between 1 and %d, got %d",
			memberCount, minVotesRequired)
	}
	if voteDeadlineHours < 1 || voteDeadlineHours > models.MaxVoteDeadlineHours {
		return apperr.Validation("vote_deadline_hours must be between 1 and %d, got %d",
			models.MaxVoteDeadlineHours, voteDeadlineHours)
	}
	return nil
}
