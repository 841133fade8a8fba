package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is an admin-managed percentage discount code, redeemable by
// members at payment time. Codes are stored uppercase.
type Coupon struct {
	Versioned
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	Description     string     `json:"description"`
	Available       bool       `json:"available"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (c *Coupon) GetID() string { return c.ID.String() }

// Expired reports whether the coupon has an expiry in the past.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
