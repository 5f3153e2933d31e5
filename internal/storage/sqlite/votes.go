package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/moves/internal/models"
)

// InsertVote records a vote. A repeated (move, user) pair is a no-op reported as false.
func (s queries) InsertVote(ctx context.Context, vote *models.Vote) (bool, error) {
	if vote.CreatedAt == 0 {
		vote.CreatedAt = time.Now().Unix()
	}
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO votes (move_id, user_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (move_id, user_id) DO NOTHING`,
		vote.MoveID, vote.UserID, vote.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check vote insert: %w", err)
	}
	return n > 0, nil
}

// MoveTally returns the voters of one move in vote order.
func (s queries) MoveTally(ctx context.Context, moveID string) (models.Tally, error) {
	tally := models.Tally{MoveID: moveID, VoterIDs: []string{}}

	rows, err := s.q.QueryContext(ctx,
		"SELECT user_id FROM votes WHERE move_id = ? ORDER BY created_at, user_id",
		moveID,
	)
	if err != nil {
		return tally, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return tally, fmt.Errorf("failed to scan vote: %w", err)
		}
		tally.VoterIDs = append(tally.VoterIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return tally, fmt.Errorf("failed to iterate votes: %w", err)
	}

	tally.VoteCount = len(tally.VoterIDs)
	return tally, nil
}

// GroupTally returns a tally for every move in the group, including moves
// without votes. It is one SELECT, so it reads a single committed snapshot.
func (s queries) GroupTally(ctx context.Context, groupID string) ([]models.Tally, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT m.id, v.user_id
		 FROM moves m LEFT JOIN votes v ON v.move_id = m.id
		 WHERE m.group_id = ?
		 ORDER BY m.created_at, m.id, v.created_at, v.user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group votes: %w", err)
	}
	defer rows.Close()

	var tallies []models.Tally
	for rows.Next() {
		var moveID string
		var userID sql.NullString
		if err := rows.Scan(&moveID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan group vote: %w", err)
		}

		if len(tallies) == 0 || tallies[len(tallies)-1].MoveID != moveID {
			tallies = append(tallies, models.Tally{MoveID: moveID, VoterIDs: []string{}})
		}
		if userID.Valid {
			t := &tallies[len(tallies)-1]
			t.VoterIDs = append(t.VoterIDs, userID.String)
			t.VoteCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group votes: %w", err)
	}
	return tallies, nil
}
