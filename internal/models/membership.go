package models

// Membership links a user to a group they belong to.
//
// The (UserID, GroupID) pair is unique: a user cannot be added to the same
// group twice. Membership rows are removed automatically when either side is
// deleted (ON DELETE CASCADE on both foreign keys).
type Membership struct {
	// UserID is the identifier of the member user.
	UserID string

	// GroupID is the identifier of the group.
	GroupID int64
}
