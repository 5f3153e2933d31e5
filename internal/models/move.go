package models

// Move is a proposed group activity awaiting approval via member votes.
type Move struct {
	// ID is the unique identifier for the move (UUID format).
	ID string

	// GroupID is the group this move was proposed in.
	GroupID string

	// Name is the short title of the move (e.g., "Pizza Night"). Never empty.
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the proposer.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the move was created.
	CreatedAt int64

	// Deadline is the Unix timestamp after which an unapproved move expires.
	// It is computed once at creation and never recomputed.
	Deadline int64

	// RequestID is an optional client-supplied key that makes creation retry-safe.
	RequestID string
}

// Vote is one entry in the vote ledger. (MoveID, UserID) is unique.
type Vote struct {
	MoveID    string
	UserID    string
	CreatedAt int64
}

// Tally is the live vote count for a move.
type Tally struct {
	MoveID    string
	VoteCount int
	VoterIDs  []string
}

// HasVoted reports whether userID is among the voters.
func (t Tally) HasVoted(userID string) bool {
	for _, id := range t.VoterIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Status is the derived state of a move. It is never persisted.
type Status string

const (
	StatusActive   Status = "active"
	StatusApproved Status = "approved"
	StatusExpired  Status = "expired"
)

// MoveView is a move together with its state at read time.
type MoveView struct {
	Move     *Move
	Tally    Tally
	Status   Status
	Approved bool
	Expired  bool
}
