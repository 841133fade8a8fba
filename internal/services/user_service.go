package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

type UserService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register mirrors an identity-provider principal into the users table.
// Called on first sign-in; repeated calls refresh name/avatar and leave
// the role untouched.
func (s *UserService) Register(ctx context.Context, req dtos.RegisterUserRequest) (*dtos.Profile, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up user", Err: err}
	}

	if existing != nil {
		err = s.repo.UpdateWithRetry(ctx, existing.ID, func(u *models.User) error {
			u.Name = req.Name
			if req.AvatarURL != "" {
				u.AvatarURL = req.AvatarURL
			}
			return nil
		})
		if err != nil {
			return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to refresh user", Err: err}
		}
		refreshed, err := s.repo.GetByEmail(ctx, req.Email)
		if err != nil || refreshed == nil {
			return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to reload user", Err: err}
		}
		profile := dtos.NewProfileFromModel(*refreshed)
		return &profile, nil
	}

	user := &models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Role:      models.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create user", Err: err}
	}
	profile := dtos.NewProfileFromModel(*user)
	return &profile, nil
}

// Profile is the role-gate source of truth for the signed-in principal.
func (s *UserService) Profile(ctx context.Context, email string) (*dtos.Profile, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up user", Err: err}
	}
	if user == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "No account record for this principal"}
	}
	profile := dtos.NewProfileFromModel(*user)
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, email string, req dtos.UpdateProfileRequest) (*dtos.Profile, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up user", Err: err}
	}
	if user == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "No account record for this principal"}
	}

	err = s.repo.UpdateWithRetry(ctx, user.ID, func(u *models.User) error {
		u.Name = req.Name
		u.AvatarURL = req.AvatarURL
		return nil
	})
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update profile", Err: err}
	}
	return s.Profile(ctx, email)
}

func (s *UserService) ListMembers(ctx context.Context) ([]dtos.Profile, error) {
	members, err := s.repo.ListByRole(ctx, models.RoleMember)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list members", Err: err}
	}
	out := make([]dtos.Profile, 0, len(members))
	for _, m := range members {
		out = append(out, dtos.NewProfileFromModel(*m))
	}
	return out, nil
}

// MakeAdmin promotes an existing account to the admin role.
func (s *UserService) MakeAdmin(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up user", Err: err}
	}
	if user == nil {
		return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "User not found"}
	}
	if user.Role == models.RoleAdmin {
		return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "User is already an admin"}
	}

	err = s.repo.UpdateWithRetry(ctx, user.ID, func(u *models.User) error {
		u.Role = models.RoleAdmin
		return nil
	})
	if err != nil {
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to promote user", Err: err}
	}
	return nil
}

// RemoveMember demotes a member back to a plain user. Their agreements
// and payment history are left intact.
func (s *UserService) RemoveMember(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up member", Err: err}
	}
	if user == nil {
		return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Member not found"}
	}
	if user.Role != models.RoleMember {
		return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "User is not a member"}
	}

	err = s.repo.UpdateWithRetry(ctx, user.ID, func(u *models.User) error {
		u.Role = models.RoleUser
		return nil
	})
	if err != nil {
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to demote member", Err: err}
	}
	return nil
}
