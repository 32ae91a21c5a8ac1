// Package auth implements password-based credential handling using bcrypt.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/groupcast/groupcast/internal/storage"
)

// dummyHash is a valid bcrypt hash compared against when the login does not
// exist, so a failed login costs the same whether the login or the password
// was wrong. The hashed value is irrelevant; no password ever verifies twice
// against a random salt.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// PasswordAuthenticator implements signup and credential verification against
// a storage.Store using bcrypt.
type PasswordAuthenticator struct {
	store storage.Store
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(store storage.Store) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store}
}

// Register creates a new user account with a hashed password and returns the
// identifier assigned by the store. The store generates the identifier on
// insert, so it is read back by login afterwards.
func (a *PasswordAuthenticator) Register(ctx context.Context, login, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.store.CreateUser(ctx, login, string(hash)); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	id, ok, err := a.store.UserIDByLogin(ctx, login)
	if err != nil {
		return "", fmt.Errorf("failed to read back user ID: %w", err)
	}
	if !ok {
		return "", errors.New("created user not found")
	}
	return id, nil
}

// Verify checks the login and password, returning the user identifier on
// success. A missing login and a wrong password are indistinguishable: both
// return ok=false, and the bcrypt comparison runs in either case.
func (a *PasswordAuthenticator) Verify(ctx context.Context, login, password string) (string, bool, error) {
	user, err := a.store.GetUserByLogin(ctx, login)
	if err != nil {
		return "", false, err
	}

	hash := dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil || user == nil {
		return "", false, nil
	}

	return user.ID, true, nil
}
