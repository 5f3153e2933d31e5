// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/moves/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserStore persists accounts for the identity collaborator.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GroupStore persists groups and their membership facts.
type GroupStore interface {
	// CreateGroup persists a new group and adds its owner as the first member.
	// The group.ID, JoinKey and CreatedAt fields are populated when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByJoinKey(ctx context.Context, joinKey string) (*models.Group, error)

	// AddMember adds userID to the group. It reports false if already a member.
	AddMember(ctx context.Context, groupID, userID string) (bool, error)

	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	CountMembers(ctx context.Context, groupID string) (int, error)
}

// SettingsStore persists per-group voting settings.
type SettingsStore interface {
	// GetSettings returns the stored settings, or the defaults when none exist.
	GetSettings(ctx context.Context, groupID string) (*models.GroupSettings, error)

	// PutSettings stores settings, replacing any previous values.
	PutSettings(ctx context.Context, settings *models.GroupSettings) error
}

// MoveStore persists moves.
type MoveStore interface {
	// CreateMove persists a new move. The move.ID field is populated when empty.
	CreateMove(ctx context.Context, move *models.Move) error

	GetMove(ctx context.Context, moveID string) (*models.Move, error)

	// FindMoveByRequestID returns the creator's move carrying requestID in the group.
	FindMoveByRequestID(ctx context.Context, groupID, createdBy, requestID string) (*models.Move, error)

	// UpdateMove overwrites the name and description of an existing move.
	UpdateMove(ctx context.Context, move *models.Move) error

	// DeleteMove removes a move and, by cascade, its votes.
	DeleteMove(ctx context.Context, moveID string) error

	// ListMoves returns the moves of a group, oldest first.
	ListMoves(ctx context.Context, groupID string) ([]*models.Move, error)

	// ListSweepCandidates returns up to limit moves of the group whose deadline is
	// before now and whose vote count is below minVotes, earliest deadline first.
	ListSweepCandidates(ctx context.Context, groupID string, now time.Time, minVotes, limit int) ([]*models.Move, error)

	// ListGroupsPastDeadline returns the IDs of groups holding at least one move
	// whose deadline is before now.
	ListGroupsPastDeadline(ctx context.Context, now time.Time) ([]string, error)
}

// VoteLedger persists (move, voter) pairs. It is the only source of vote counts.
type VoteLedger interface {
	// InsertVote records a vote. It reports false if the pair already exists.
	InsertVote(ctx context.Context, vote *models.Vote) (bool, error)

	// MoveTally returns the tally of a single move.
	MoveTally(ctx context.Context, moveID string) (models.Tally, error)

	// GroupTally returns one tally per move in the group, read in one statement.
	GroupTally(ctx context.Context, groupID string) ([]models.Tally, error)
}

// Tx is the set of operations available inside an atomic scope.
type Tx interface {
	GroupStore
	SettingsStore
	MoveStore
	VoteLedger
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	Tx

	// RunInTx runs fn inside one write transaction. If fn returns an error the
	// transaction is rolled back and the error is returned unchanged.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}
