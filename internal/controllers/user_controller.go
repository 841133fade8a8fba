package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/middleware"
	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

type UserController struct {
	userService *services.UserService
	validate    *validator.Validate
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{
		userService: userService,
		validate:    validator.New(),
	}
}

// principal pulls the authenticated email (and display name) out of the
// request context. The email is the identity key everywhere else.
func principal(r *http.Request) (email, name string, err error) {
	ctxEmail := r.Context().Value(middleware.ContextKeyUserEmail)
	if ctxEmail == nil {
		return "", "", &utils.AppError{
			StatusCode: http.StatusUnauthorized,
			Code:       utils.ErrCodeUnauthorized,
			Message:    "Missing principal in context",
		}
	}
	if ctxName := r.Context().Value(middleware.ContextKeyUserName); ctxName != nil {
		name = ctxName.(string)
	}
	return ctxEmail.(string), name, nil
}

// POST /api/v1/users/me
// Upserts the signed-in principal. Safe to call on every sign-in; the
// role is never touched on refresh.
func (c *UserController) SyncProfileHandler(w http.ResponseWriter, r *http.Request) {
	email, name, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var body struct {
		AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
			return
		}
		if err := c.validate.Struct(body); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
			return
		}
	}

	profile, err := c.userService.Register(r.Context(), dtos.RegisterUserRequest{
		Email:     email,
		Name:      name,
		AvatarURL: body.AvatarURL,
	})
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// GET /api/v1/users/me
func (c *UserController) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	email, _, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	profile, err := c.userService.Profile(r.Context(), email)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// PATCH /api/v1/users/me
func (c *UserController) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	email, _, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	profile, err := c.userService.UpdateProfile(r.Context(), email, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}
