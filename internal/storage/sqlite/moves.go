package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/storage"
)

const moveColumns = `id, group_id, name, description, created_by, created_at, deadline, request_id`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateMove persists a new move to the database.
func (s queries) CreateMove(ctx context.Context, move *models.Move) error {
	if move.ID == "" {
		move.ID = uuid.New().String()
	}
	if move.CreatedAt == 0 {
		move.CreatedAt = time.Now().Unix()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO moves (`+moveColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		move.ID, move.GroupID, move.Name, move.Description, move.CreatedBy,
		move.CreatedAt, move.Deadline, nullable(move.RequestID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert move: %w", err)
	}
	return nil
}

// GetMove retrieves a move by ID.
func (s queries) GetMove(ctx context.Context, moveID string) (*models.Move, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+moveColumns+` FROM moves WHERE id = ?`, moveID)
	move, err := scanMove(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("move %s: %w", moveID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get move: %w", err)
	}
	return move, nil
}

// FindMoveByRequestID looks up a move created with the given idempotency key.
func (s queries) FindMoveByRequestID(ctx context.Context, groupID, createdBy, requestID string) (*models.Move, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+moveColumns+` FROM moves
		 WHERE group_id = ? AND created_by = ? AND request_id = ?`,
		groupID, createdBy, requestID,
	)
	move, err := scanMove(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("move with request %s: %w", requestID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find move by request ID: %w", err)
	}
	return move, nil
}

// UpdateMove overwrites a move's name and description.
// Deadline and creation time are never written after insert.
func (s queries) UpdateMove(ctx context.Context, move *models.Move) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE moves SET name = ?, description = ? WHERE id = ?",
		move.Name, move.Description, move.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update move: %w", err)
	}
	return expectAffected(res, "move "+move.ID)
}

// DeleteMove removes a move; its votes follow via ON DELETE CASCADE.
func (s queries) DeleteMove(ctx context.Context, moveID string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM moves WHERE id = ?", moveID)
	if err != nil {
		return fmt.Errorf("failed to delete move: %w", err)
	}
	return expectAffected(res, "move "+moveID)
}

// ListMoves retrieves all moves in a group, oldest first.
func (s queries) ListMoves(ctx context.Context, groupID string) ([]*models.Move, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+moveColumns+` FROM moves WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	return collectMoves(rows)
}

// ListSweepCandidates retrieves past-deadline moves still under the vote threshold.
func (s queries) ListSweepCandidates(ctx context.Context, groupID string, now time.Time, minVotes, limit int) ([]*models.Move, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+moveColumns+` FROM moves m
		 WHERE m.group_id = ? AND m.deadline < ?
		   AND (SELECT COUNT(*) FROM votes v WHERE v.move_id = m.id) < ?
		 ORDER BY m.deadline, m.id
		 LIMIT ?`,
		groupID, now.Unix(), minVotes, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep candidates: %w", err)
	}
	return collectMoves(rows)
}

// ListGroupsPastDeadline retrieves the groups that have at least one expired move.
func (s queries) ListGroupsPastDeadline(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT DISTINCT m.group_id FROM moves m
		 WHERE m.deadline < ?
		   AND (SELECT COUNT(*) FROM votes v WHERE v.move_id = m.id) <
		       COALESCE((SELECT gs.min_votes_required FROM group_settings gs WHERE gs.group_id = m.group_id), ?)
		 ORDER BY m.group_id`,
		now.Unix(), models.DefaultMinVotesRequired,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups past deadline: %w", err)
	}
	defer rows.Close()

	var groupIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group ID: %w", err)
		}
		groupIDs = append(groupIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groupIDs, nil
}

func scanMove(row rowScanner) (*models.Move, error) {
	move := &models.Move{}
	var requestID sql.NullString
	if err := row.Scan(&move.ID, &move.GroupID, &move.Name, &move.Description,
		&move.CreatedBy, &move.CreatedAt, &move.Deadline, &requestID); err != nil {
		return nil, err
	}
	if requestID.Valid {
		move.RequestID = requestID.String
	}
	return move, nil
}

func collectMoves(rows *sql.Rows) ([]*models.Move, error) {
	defer rows.Close()

	var moves []*models.Move
	for rows.Next() {
		move, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, move)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate moves: %w", err)
	}
	return moves, nil
}

func expectAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
