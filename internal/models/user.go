package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleType is the authorization role attached to a signed-in principal.
// It is stored here, not in the identity provider's token, so that a
// privileged action (agreement acceptance, member removal) takes effect
// on the next request without re-issuing tokens.
type RoleType string

const (
	RoleUser   RoleType = "user"
	RoleMember RoleType = "member"
	RoleAdmin  RoleType = "admin"
)

// ParseRole converts a stored string to a RoleType, defaulting to RoleUser.
func ParseRole(s string) RoleType {
	switch RoleType(s) {
	case RoleMember:
		return RoleMember
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// User is the persisted mirror of an identity-provider principal.
type User struct {
	Versioned
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Role      RoleType  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) GetID() string { return u.ID.String() }
