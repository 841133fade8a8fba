package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is an append-only ledger entry for one completed rent charge.
// Rows are created exactly once, after Stripe confirms the charge, and
// are never updated or deleted.
type Payment struct {
	ID                    uuid.UUID `json:"id"`
	TenantEmail           string    `json:"tenant_email"`
	TenantName            string    `json:"tenant_name"`
	ApartmentNo           string    `json:"apartment_no"`
	Floor                 int16     `json:"floor"`
	Block                 string    `json:"block"`
	Month                 string    `json:"month"`
	Year                  int       `json:"year"`
	OriginalRentCents     int64     `json:"original_rent_cents"`
	CouponCode            *string   `json:"coupon_code,omitempty"`
	DiscountPercent       int       `json:"discount_percent"`
	DiscountCents         int64     `json:"discount_cents"`
	FinalCents            int64     `json:"final_cents"`
	StripePaymentIntentID string    `json:"stripe_payment_intent_id"`
	PaymentMethod         string    `json:"payment_method"`
	IdempotencyKey        string    `json:"idempotency_key"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
}

func (p *Payment) GetID() string { return p.ID.String() }
