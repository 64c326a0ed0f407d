package user

import (
	"time"

	"github.com/google/uuid"
)

// AccessLevel is a user's fixed role, set by the authority or an admin.
type AccessLevel string

const (
	AccessLevelBasic    AccessLevel = "BASIC"
	AccessLevelAdmin    AccessLevel = "ADMIN"
	AccessLevelSysAdmin AccessLevel = "SYS_ADMIN"
)

// Valid reports whether the access level is one of the known roles.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessLevelBasic, AccessLevelAdmin, AccessLevelSysAdmin:
		return true
	}
	return false
}

// IsElevated reports whether the access level carries admin rights.
func (a AccessLevel) IsElevated() bool {
	return a == AccessLevelAdmin || a == AccessLevelSysAdmin
}

type User struct {
	ID             uuid.UUID   `json:"_id"`
	GoogleID       *string     `json:"google_id"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          string      `json:"email"`
	EmailConfirmed bool        `json:"email_confirmed"`
	PasswordHash   string      `json:"-"`
	Active         bool        `json:"active"`
	AccessLevel    AccessLevel `json:"access_level"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type CreateUserInput struct {
	GoogleID       *string
	FirstName      string
	LastName       string
	Email          string
	PasswordHash   string
	EmailConfirmed bool
	Active         bool
	AccessLevel    AccessLevel
}

type UpdateUserInput struct {
	GoogleID       *string
	FirstName      *string
	LastName       *string
	Email          *string
	PasswordHash   *string
	EmailConfirmed *bool
	Active         *bool
	AccessLevel    *AccessLevel
}

// IsZero reports whether no field is being updated.
func (in UpdateUserInput) IsZero() bool {
	return in.GoogleID == nil && in.FirstName == nil && in.LastName == nil &&
		in.Email == nil && in.PasswordHash == nil && in.EmailConfirmed == nil &&
		in.Active == nil && in.AccessLevel == nil
}
