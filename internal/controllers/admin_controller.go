package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

type AdminController struct {
	agreementService    *services.AgreementService
	couponService       *services.CouponService
	announcementService *services.AnnouncementService
	userService         *services.UserService
	statsService        *services.StatsService
	validate            *validator.Validate
}

func NewAdminController(
	agreementService *services.AgreementService,
	couponService *services.CouponService,
	announcementService *services.AnnouncementService,
	userService *services.UserService,
	statsService *services.StatsService,
) *AdminController {
	return &AdminController{
		agreementService:    agreementService,
		couponService:       couponService,
		announcementService: announcementService,
		userService:         userService,
		statsService:        statsService,
		validate:            validator.New(),
	}
}

/* ---------- agreements ---------- */

// GET /api/v1/admin/agreements
func (c *AdminController) ListPendingAgreementsHandler(w http.ResponseWriter, r *http.Request) {
	agreements, err := c.agreementService.ListPending(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, agreements)
}

// PATCH /api/v1/admin/agreements/{id}
func (c *AdminController) ReviewAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid agreement id", nil, err)
		return
	}

	var req dtos.ReviewAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	agreement, err := c.agreementService.Review(r.Context(), id, req.Accept)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, agreement)
}

/* ---------- coupons ---------- */

// GET /api/v1/admin/coupons
func (c *AdminController) ListCouponsHandler(w http.ResponseWriter, r *http.Request) {
	coupons, err := c.couponService.List(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, coupons)
}

// POST /api/v1/admin/coupons
func (c *AdminController) CreateCouponHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	coupon, err := c.couponService.Create(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, coupon)
}

// PATCH /api/v1/admin/coupons
func (c *AdminController) UpdateCouponHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	coupon, err := c.couponService.Update(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, coupon)
}

// DELETE /api/v1/admin/coupons
func (c *AdminController) DeleteCouponHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.DeleteCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	if err := c.couponService.Delete(r.Context(), req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/* ---------- announcements ---------- */

// POST /api/v1/admin/announcements
func (c *AdminController) CreateAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	email, name, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	announcement, err := c.announcementService.Create(r.Context(), email, name, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, announcement)
}

// PATCH /api/v1/admin/announcements/{id}
func (c *AdminController) UpdateAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid announcement id", nil, err)
		return
	}

	var req dtos.UpdateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	announcement, err := c.announcementService.Update(r.Context(), id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, announcement)
}

// DELETE /api/v1/admin/announcements/{id}
func (c *AdminController) DeleteAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid announcement id", nil, err)
		return
	}

	if err := c.announcementService.Delete(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/* ---------- members & stats ---------- */

// GET /api/v1/admin/members
func (c *AdminController) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	members, err := c.userService.ListMembers(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, members)
}

// PATCH /api/v1/admin/members/{email}
func (c *AdminController) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	if err := c.userService.RemoveMember(r.Context(), email); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// PATCH /api/v1/admin/admins/{email}
func (c *AdminController) MakeAdminHandler(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	if err := c.userService.MakeAdmin(r.Context(), email); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

// GET /api/v1/admin/stats
func (c *AdminController) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := c.statsService.Dashboard(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
