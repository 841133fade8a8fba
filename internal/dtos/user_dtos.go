package dtos

import (
	"github.com/nivash/building-service/internal/models"
)

// Profile is the principal + role pair the client's role gate branches on.
type Profile struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	AvatarURL string          `json:"avatar_url,omitempty"`
	Role      models.RoleType `json:"role"`
}

func NewProfileFromModel(u models.User) Profile {
	return Profile{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}

// RegisterUserRequest mirrors the identity provider's principal into the
// users table on first sign-in.
type RegisterUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"required"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}
