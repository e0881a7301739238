// Package models contains plain data records persisted by the server.
// No ORM behavior lives here; persistence is explicit in the repositories.
package models

import "time"

// Role of an authenticated principal.
type Role string

const (
	RoleOrdinary      Role = "ordinary"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOrdinary || r == RoleAdministrator
}

// Principal is a user capable of authenticating. ID and Login are immutable
// once created. PasswordHash holds the full encoded argon2id string
// (algorithm, parameters, salt and digest); the raw password is never stored.
// Version guards concurrent password changes.
type Principal struct {
	ID           string
	Login        string
	Email        string
	PasswordHash string
	Role         Role
	Version      int64
	CreatedAt    time.Time
}
