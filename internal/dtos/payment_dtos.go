package dtos

import (
	"time"

	"github.com/nivash/building-service/internal/models"
)

// CreatePaymentIntentRequest asks the server to authorize a charge for
// one billing period. The amount is never taken from the client; it is
// recomputed from the active agreement and the (optional) coupon.
type CreatePaymentIntentRequest struct {
	Month          string `json:"month" validate:"required"`
	Year           int    `json:"year" validate:"required,min=2020,max=2100"`
	CouponCode     string `json:"coupon_code"`
	IdempotencyKey string `json:"idempotency_key" validate:"required,min=16,max=64"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	AmountCents     int64  `json:"amount_cents"`
	OriginalCents   int64  `json:"original_cents"`
	DiscountCents   int64  `json:"discount_cents"`
	DiscountPercent int    `json:"discount_percent"`
	CouponCode      string `json:"coupon_code,omitempty"`
}

// RecordPaymentRequest writes the ledger entry after the client has
// confirmed the charge. The server re-verifies the intent with Stripe
// before any row is written.
type RecordPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	IdempotencyKey  string `json:"idempotency_key" validate:"required,min=16,max=64"`
	Month           string `json:"month" validate:"required"`
	Year            int    `json:"year" validate:"required,min=2020,max=2100"`
	CouponCode      string `json:"coupon_code"`
}

type Payment struct {
	ID              string    `json:"id"`
	TenantEmail     string    `json:"tenant_email"`
	TenantName      string    `json:"tenant_name"`
	ApartmentNo     string    `json:"apartment_no"`
	Floor           int16     `json:"floor"`
	Block           string    `json:"block"`
	Month           string    `json:"month"`
	Year            int       `json:"year"`
	OriginalCents   int64     `json:"original_cents"`
	CouponCode      *string   `json:"coupon_code,omitempty"`
	DiscountPercent int       `json:"discount_percent"`
	DiscountCents   int64     `json:"discount_cents"`
	FinalCents      int64     `json:"final_cents"`
	TransactionID   string    `json:"transaction_id"`
	PaymentMethod   string    `json:"payment_method"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewPaymentFromModel(p models.Payment) Payment {
	return Payment{
		ID:              p.ID.String(),
		TenantEmail:     p.TenantEmail,
		TenantName:      p.TenantName,
		ApartmentNo:     p.ApartmentNo,
		Floor:           p.Floor,
		Block:           p.Block,
		Month:           p.Month,
		Year:            p.Year,
		OriginalCents:   p.OriginalRentCents,
		CouponCode:      p.CouponCode,
		DiscountPercent: p.DiscountPercent,
		DiscountCents:   p.DiscountCents,
		FinalCents:      p.FinalCents,
		TransactionID:   p.StripePaymentIntentID,
		PaymentMethod:   p.PaymentMethod,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
	}
}
