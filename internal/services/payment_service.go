package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/nivash/building-service/internal/billing"
	"github.com/nivash/building-service/internal/config"
	"github.com/nivash/building-service/internal/constants"
	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

// Intent metadata keys. The server writes these at intent creation and
// trusts them (not the client) when the ledger entry is recorded.
const (
	metaTenantEmail     = "tenant_email"
	metaMonth           = "month"
	metaYear            = "year"
	metaCouponCode      = "coupon_code"
	metaDiscountPercent = "discount_percent"
)

const pgUniqueViolation = "23505"

// PaymentService drives the server half of the rent charge: it
// authorizes the amount from the stored agreement, creates the Stripe
// intent, and appends the ledger entry only after Stripe reports the
// charge succeeded.
type PaymentService struct {
	cfg           *config.Config
	agreementRepo repositories.AgreementRepository
	paymentRepo   repositories.PaymentRepository
	coupons       *CouponService
	gateway       StripeGateway
	receipts      *ReceiptService
}

func NewPaymentService(
	cfg *config.Config,
	agreementRepo repositories.AgreementRepository,
	paymentRepo repositories.PaymentRepository,
	coupons *CouponService,
	gateway StripeGateway,
	receipts *ReceiptService,
) *PaymentService {
	return &PaymentService{
		cfg:           cfg,
		agreementRepo: agreementRepo,
		paymentRepo:   paymentRepo,
		coupons:       coupons,
		gateway:       gateway,
		receipts:      receipts,
	}
}

// CreateIntent authorizes a charge for one billing period. The amount
// is recomputed server-side from the active agreement plus the
// validated coupon; nothing amount-shaped is accepted from the client.
func (s *PaymentService) CreateIntent(ctx context.Context, email string, req dtos.CreatePaymentIntentRequest) (*dtos.PaymentIntentResponse, error) {
	if !constants.IsBillingMonth(req.Month) {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "Invalid billing month"}
	}

	agreement, err := s.activeAgreement(ctx, email)
	if err != nil {
		return nil, err
	}

	paid, err := s.paymentRepo.ExistsForPeriod(ctx, email, req.Month, req.Year)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to check payment history", Err: err}
	}
	if paid {
		return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Rent for this period is already paid"}
	}

	session := billing.NewSession(agreement.RentCents)
	if req.CouponCode != "" {
		if err := s.applyCoupon(ctx, session, req.CouponCode); err != nil {
			return nil, err
		}
	}
	if err := session.Begin(); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Payment already in progress", Err: err}
	}

	metadata := map[string]string{
		metaTenantEmail: email,
		metaMonth:       req.Month,
		metaYear:        strconv.Itoa(req.Year),
	}
	if c := session.Coupon(); c != nil {
		metadata[metaCouponCode] = c.Code
		metadata[metaDiscountPercent] = strconv.Itoa(c.DiscountPercent)
	}

	intent, err := s.gateway.CreateIntent(ctx, session.FinalCents(), req.IdempotencyKey, email, metadata)
	if err != nil {
		_ = session.Fail(err.Error())
		return nil, mapStripeError(err)
	}
	// Confirmation now belongs to the client-side SDK.
	_ = session.Advance()

	resp := &dtos.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		AmountCents:     session.FinalCents(),
		OriginalCents:   session.BaseRentCents(),
		DiscountCents:   session.DiscountCents(),
		DiscountPercent: session.DiscountPercent(),
	}
	if c := session.Coupon(); c != nil {
		resp.CouponCode = c.Code
	}
	return resp, nil
}

// RecordPayment verifies the confirmed intent with Stripe and appends
// the ledger entry. Returns created=false when the idempotency key or
// intent has already been recorded (replay returns the original row).
// A second charge for an already-paid period is refused with a 409.
func (s *PaymentService) RecordPayment(ctx context.Context, email, name string, req dtos.RecordPaymentRequest) (*dtos.Payment, bool, error) {
	if existing, err := s.paymentRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey); err != nil {
		return nil, false, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to check payment ledger", Err: err}
	} else if existing != nil {
		dto := dtos.NewPaymentFromModel(*existing)
		return &dto, false, nil
	}

	if !constants.IsBillingMonth(req.Month) {
		return nil, false, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeValidation, Message: "Invalid billing month"}
	}

	agreement, err := s.activeAgreement(ctx, email)
	if err != nil {
		return nil, false, err
	}

	// A client retrying with a fresh idempotency key still refers to the
	// same charge if the intent id matches an existing row.
	if existing, err := s.paymentRepo.GetByIntentID(ctx, req.PaymentIntentID); err != nil {
		return nil, false, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to check payment ledger", Err: err}
	} else if existing != nil {
		dto := dtos.NewPaymentFromModel(*existing)
		return &dto, false, nil
	}

	// One ledger row per tenant per period. A second intent confirmed for
	// an already-paid month is refused here; the refund is an admin
	// operation against the processor, not a ledger mutation.
	paid, err := s.paymentRepo.ExistsForPeriod(ctx, email, req.Month, req.Year)
	if err != nil {
		return nil, false, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to check payment history", Err: err}
	}
	if paid {
		return nil, false, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Rent for this period is already paid"}
	}

	intent, err := s.gateway.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, false, mapStripeError(err)
	}

	if intent.Metadata[metaTenantEmail] != email {
		return nil, false, &utils.AppError{StatusCode: http.StatusForbidden, Code: utils.ErrCodeForbidden, Message: "Payment intent does not belong to this tenant"}
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		msg := intent.FailureReason
		if msg == "" {
			msg = "Payment has not succeeded"
		}
		return nil, false, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeProcessorDeclined, Message: msg}
	}

	session := billing.NewSession(agreement.RentCents)
	couponCode := intent.Metadata[metaCouponCode]
	if couponCode != "" {
		if s.cfg.LDFlag_CouponStickyAcrossMonths {
			// Trust the snapshot taken at intent creation; the coupon may
			// have expired in between and the charge already happened.
			percent, convErr := strconv.Atoi(intent.Metadata[metaDiscountPercent])
			if convErr != nil {
				return nil, false, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeAmountMismatch, Message: "Corrupt discount metadata on payment intent"}
			}
			if err := session.ApplyCoupon(billing.AppliedCoupon{Code: couponCode, DiscountPercent: percent}); err != nil {
				return nil, false, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeAmountMismatch, Message: "Corrupt discount metadata on payment intent", Err: err}
			}
		} else {
			if err := s.applyCoupon(ctx, session, couponCode); err != nil {
				return nil, false, err
			}
		}
	}

	if intent.AmountCents != session.FinalCents() {
		return nil, false, &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeAmountMismatch,
			Message:    "Charged amount does not match the computed rent",
		}
	}

	payment := &models.Payment{
		ID:                    uuid.New(),
		TenantEmail:           email,
		TenantName:            name,
		ApartmentNo:           agreement.ApartmentNo,
		Floor:                 agreement.Floor,
		Block:                 agreement.Block,
		Month:                 req.Month,
		Year:                  req.Year,
		OriginalRentCents:     session.BaseRentCents(),
		DiscountPercent:       session.DiscountPercent(),
		DiscountCents:         session.DiscountCents(),
		FinalCents:            session.FinalCents(),
		StripePaymentIntentID: intent.ID,
		PaymentMethod:         paymentMethodDescriptor(intent),
		IdempotencyKey:        req.IdempotencyKey,
		Status:                constants.PaymentStatusPaid,
	}
	if c := session.Coupon(); c != nil {
		payment.CouponCode = utils.StrPtr(c.Code)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Lost a race with a concurrent writer; the first one wins. A
			// matching key or intent id means the same charge was already
			// recorded; otherwise another charge landed on this period.
			if existing, getErr := s.paymentRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey); getErr == nil && existing != nil {
				dto := dtos.NewPaymentFromModel(*existing)
				return &dto, false, nil
			}
			if existing, getErr := s.paymentRepo.GetByIntentID(ctx, req.PaymentIntentID); getErr == nil && existing != nil {
				dto := dtos.NewPaymentFromModel(*existing)
				return &dto, false, nil
			}
			return nil, false, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Rent for this period is already paid", Err: err}
		}
		return nil, false, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to record payment", Err: err}
	}

	if s.receipts != nil {
		// Receipt email is best-effort: the ledger entry exists either way.
		go func(p models.Payment) {
			if err := s.receipts.SendReceipt(context.Background(), p); err != nil {
				utils.Logger.WithError(err).Errorf("Failed to send receipt for payment %s", p.ID)
			}
		}(*payment)
	}

	dto := dtos.NewPaymentFromModel(*payment)
	return &dto, true, nil
}

func (s *PaymentService) History(ctx context.Context, email string) ([]dtos.Payment, error) {
	payments, err := s.paymentRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list payments", Err: err}
	}
	out := make([]dtos.Payment, 0, len(payments))
	for _, p := range payments {
		out = append(out, dtos.NewPaymentFromModel(*p))
	}
	return out, nil
}

/* ---------- internals ---------- */

func (s *PaymentService) activeAgreement(ctx context.Context, email string) (*models.Agreement, error) {
	agreement, err := s.agreementRepo.ActiveByEmail(ctx, email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to resolve active agreement", Err: err}
	}
	if agreement == nil {
		return nil, &utils.AppError{StatusCode: http.StatusPreconditionFailed, Code: utils.ErrCodePreconditionMissing, Message: "No active agreement for this tenant"}
	}
	return agreement, nil
}

func (s *PaymentService) applyCoupon(ctx context.Context, session *billing.Session, code string) error {
	result, err := s.coupons.Validate(ctx, code)
	if err != nil {
		return err
	}
	if !result.Valid {
		return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeCouponInvalid, Message: result.Message}
	}
	return session.ApplyCoupon(billing.AppliedCoupon{
		Code:            result.Coupon.Code,
		DiscountPercent: result.Coupon.DiscountPercent,
		Description:     result.Coupon.Description,
	})
}

func paymentMethodDescriptor(intent *PaymentIntent) string {
	if intent.CardBrand == "" || intent.CardLast4 == "" {
		return constants.UnknownPaymentMethod
	}
	return fmt.Sprintf("%s •••• %s", intent.CardBrand, intent.CardLast4)
}

// mapStripeError converts processor failures into the closed AppError
// set. Card declines carry Stripe's message verbatim; everything else
// is a gateway-level failure.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard {
			return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeProcessorDeclined, Message: stripeErr.Msg, Err: err}
		}
		return &utils.AppError{StatusCode: http.StatusBadGateway, Code: utils.ErrCodeProcessorError, Message: stripeErr.Msg, Err: err}
	}
	return &utils.AppError{StatusCode: http.StatusBadGateway, Code: utils.ErrCodeExternalServiceError, Message: "Payment processor unreachable", Err: err}
}
