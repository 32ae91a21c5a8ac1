package models

// User represents a registered account.
//
// Logins are stored and compared in lowercase. The password is never kept in
// plaintext; only the bcrypt hash is persisted.
type User struct {
	// ID is the unique identifier for the user (UUID format, assigned by the store).
	ID string

	// Login is the lowercase login name.
	Login string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}
