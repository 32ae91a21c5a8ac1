// Package models defines the core domain models for groupcast.
//
// The service tracks three relations:
//   - User: a registered account with a lowercase login and a bcrypt
//     password hash
//   - Group: a named, unique collection of users
//   - Membership: the many-to-many link between users and groups
//
// Models use plain ID values instead of pointers for relationships to avoid
// circular references; the storage layer enforces referential integrity with
// foreign keys.
package models
