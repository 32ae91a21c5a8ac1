package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateGroup inserts a new group and returns the auto-assigned identifier.
func (s *SQLiteStore) CreateGroup(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO groups (name, created_at) VALUES (?, ?)",
		name, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create group: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read group ID: %w", err)
	}
	return id, nil
}

// GroupExists reports whether a group with the given identifier exists.
func (s *SQLiteStore) GroupExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check group existence: %w", err)
	}
	return true, nil
}

// GroupIDByName returns the identifier for the given group name.
func (s *SQLiteStore) GroupIDByName(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM groups WHERE name = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get group ID by name: %w", err)
	}
	return id, true, nil
}
