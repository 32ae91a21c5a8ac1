// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/groupcast/groupcast/internal/models"
)

// Store defines the interface for user, group, and membership persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the handler layer.
//
// All operations are single statements and rely on the driver's autocommit
// behavior; no method spans a multi-statement transaction. Existence and
// lookup probes report absence through their return values, never through an
// error.
type Store interface {
	// CreateUser inserts a new user with the given lowercase login and bcrypt
	// hash. The identifier is assigned by the store; callers read it back with
	// UserIDByLogin.
	CreateUser(ctx context.Context, login, passwordHash string) error

	// UserExists reports whether a user with the given identifier exists.
	UserExists(ctx context.Context, id string) (bool, error)

	// UserIDByLogin returns the identifier for the given login.
	// ok is false when no such login exists.
	UserIDByLogin(ctx context.Context, login string) (id string, ok bool, err error)

	// GetUserByLogin retrieves the stored user for the given login.
	// Returns nil (and no error) when no such user exists.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// CreateGroup inserts a new group and returns its auto-assigned identifier.
	CreateGroup(ctx context.Context, name string) (int64, error)

	// GroupExists reports whether a group with the given identifier exists.
	GroupExists(ctx context.Context, id int64) (bool, error)

	// GroupIDByName returns the identifier for the given group name.
	// ok is false when no such group exists.
	GroupIDByName(ctx context.Context, name string) (id int64, ok bool, err error)

	// IsMember reports whether the user belongs to the group.
	IsMember(ctx context.Context, userID string, groupID int64) (bool, error)

	// AddMembership links the user to the group. Callers are expected to
	// check IsMember first; inserting a duplicate pair violates the unique
	// constraint.
	AddMembership(ctx context.Context, userID string, groupID int64) error

	// RemoveMembership unlinks the user from the group.
	RemoveMembership(ctx context.Context, userID string, groupID int64) error

	// ListGroupsForUser returns the names of the groups the user belongs to,
	// in no particular order. The slice is empty (not nil) for a user with no
	// memberships.
	ListGroupsForUser(ctx context.Context, userID string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
