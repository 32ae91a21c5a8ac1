package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// IsMember reports whether the user belongs to the group.
func (s *SQLiteStore) IsMember(ctx context.Context, userID string, groupID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM memberships WHERE user_id = ? AND group_id = ?",
		userID, groupID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// AddMembership links the user to the group.
func (s *SQLiteStore) AddMembership(ctx context.Context, userID string, groupID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO memberships (user_id, group_id) VALUES (?, ?)",
		userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}
	return nil
}

// RemoveMembership unlinks the user from the group.
func (s *SQLiteStore) RemoveMembership(ctx context.Context, userID string, groupID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM memberships WHERE user_id = ? AND group_id = ?",
		userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	return nil
}

// ListGroupsForUser returns the names of the groups the user belongs to via a
// three-way join across users, memberships, and groups.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.name
		FROM users u
		JOIN memberships m ON m.user_id = u.id
		JOIN groups g ON g.id = m.group_id
		WHERE u.id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan group name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group names: %w", err)
	}

	return names, nil
}
