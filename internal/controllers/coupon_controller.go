package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

type CouponController struct {
	couponService *services.CouponService
}

func NewCouponController(s *services.CouponService) *CouponController {
	return &CouponController{couponService: s}
}

// GET /api/v1/coupons
func (c *CouponController) ListAvailableCouponsHandler(w http.ResponseWriter, r *http.Request) {
	coupons, err := c.couponService.ListAvailable(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, coupons)
}

// GET /api/v1/coupons/validate/{code}
// Always responds 200 with a {valid, coupon?, message?} result; an
// unusable code is a result, not an error.
func (c *CouponController) ValidateCouponHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	result, err := c.couponService.Validate(r.Context(), code)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, result)
}
