package models

// Group represents a named collection of users.
//
// Group names are stored in lowercase and are globally unique. Identifiers
// are small sequential integers assigned by the store.
type Group struct {
	// ID is the unique identifier for the group.
	ID int64

	// Name is the lowercase, unique group name.
	Name string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
