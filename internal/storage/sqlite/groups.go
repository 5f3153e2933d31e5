package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/moves/internal/models"
	"github.com/mmynk/moves/internal/storage"
)

// CreateGroup persists a group and its owner's membership atomically.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.RunInTx(ctx, func(tx storage.Tx) error {
		return tx.CreateGroup(ctx, group)
	})
}

// CreateGroup inserts the group row and the owner's membership row.
func (s queries) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.JoinKey == "" {
		key, err := newJoinKey()
		if err != nil {
			return err
		}
		group.JoinKey = key
	}

	_, err := s.q.ExecContext(ctx,
		"INSERT INTO groups (id, name, owner_id, join_key, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, group.OwnerID, group.JoinKey, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = s.q.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		group.ID, group.OwnerID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner membership: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (s queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, name, owner_id, join_key, created_at FROM groups WHERE id = ?", groupID)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GetGroupByJoinKey retrieves a group by its join key.
func (s queries) GetGroupByJoinKey(ctx context.Context, joinKey string) (*models.Group, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT id, name, owner_id, join_key, created_at FROM groups WHERE join_key = ?", joinKey)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("join key: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by join key: %w", err)
	}
	return group, nil
}

// AddMember adds a user to a group, reporting false if they were already a member.
func (s queries) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to add member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check member insert: %w", err)
	}
	return n > 0, nil
}

// IsMember reports whether the user belongs to the group.
func (s queries) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists int
	err := s.q.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// CountMembers returns the number of members in a group.
func (s queries) CountMembers(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ?", groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func scanGroup(row *sql.Row) (*models.Group, error) {
	group := &models.Group{}
	if err := row.Scan(&group.ID, &group.Name, &group.OwnerID, &group.JoinKey, &group.CreatedAt); err != nil {
		return nil, err
	}
	return group, nil
}

// newJoinKey returns a short URL-safe random key.
func newJoinKey() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate join key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
