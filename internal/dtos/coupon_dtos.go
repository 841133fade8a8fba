package dtos

import (
	"time"

	"github.com/nivash/building-service/internal/models"
)

type Coupon struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	Description     string     `json:"description"`
	Available       bool       `json:"available"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

func NewCouponFromModel(c models.Coupon) Coupon {
	return Coupon{
		ID:              c.ID.String(),
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		Description:     c.Description,
		Available:       c.Available,
		ExpiresAt:       c.ExpiresAt,
	}
}

// CouponValidationResult is the `{valid, coupon?, message?}` shape the
// payment form consumes. A failed validation never carries a coupon.
type CouponValidationResult struct {
	Valid   bool    `json:"valid"`
	Coupon  *Coupon `json:"coupon,omitempty"`
	Message string  `json:"message,omitempty"`
}

type CreateCouponRequest struct {
	Code            string     `json:"code" validate:"required,min=3,max=32"`
	DiscountPercent int        `json:"discount_percent" validate:"required,min=1,max=100"`
	Description     string     `json:"description" validate:"required"`
	Available       bool       `json:"available"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

type UpdateCouponRequest struct {
	ID              string     `json:"id" validate:"required,uuid4"`
	DiscountPercent int        `json:"discount_percent" validate:"required,min=1,max=100"`
	Description     string     `json:"description" validate:"required"`
	Available       bool       `json:"available"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

type DeleteCouponRequest struct {
	ID string `json:"id" validate:"required,uuid4"`
}
