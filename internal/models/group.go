package models

import "time"

const (
	// DefaultMinVotesRequired applies when a group has no stored settings.
	DefaultMinVotesRequired = 3

	// DefaultVoteDeadlineHours applies when a group has no stored settings.
	DefaultVoteDeadlineHours = 24

	// MaxVoteDeadlineHours is one week.
	MaxVoteDeadlineHours = 168
)

// Group represents a set of members proposing and voting on moves.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Weekend Warriors").
	Name string

	// OwnerID is the user who created the group. It never changes.
	OwnerID string

	// JoinKey lets other users join the group without an invitation.
	JoinKey string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupSettings holds the owner-controlled voting rules for a group.
type GroupSettings struct {
	GroupID string

	// MinVotesRequired is the number of distinct voters needed to approve a move.
	MinVotesRequired int

	// VoteDeadlineHours is how long a new move stays open for votes.
	VoteDeadlineHours int

	// UpdatedAt is the Unix timestamp of the last change, zero for defaults.
	UpdatedAt int64
}

// DefaultGroupSettings returns the settings a group has before its owner changes them.
func DefaultGroupSettings(groupID string) *GroupSettings {
	return &GroupSettings{
		GroupID:           groupID,
		MinVotesRequired:  DefaultMinVotesRequired,
		VoteDeadlineHours: DefaultVoteDeadlineHours,
	}
}

// VoteWindow returns VoteDeadlineHours as a duration.
func (s *GroupSettings) VoteWindow() time.Duration {
	return time.Duration(s.VoteDeadlineHours) * time.Hour
}
