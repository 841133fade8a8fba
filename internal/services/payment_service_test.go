package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/nivash/building-service/internal/config"
	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/utils"
)

const (
	testTenantEmail = "tenant@example.com"
	testTenantName  = "Test Tenant"
	testIdemKey     = "b2c3d4e5f6a7b8c9d0e1"
)

func activeAgreementFor(email string, rentCents int64) *models.Agreement {
	accepted := time.Now().Add(-24 * time.Hour)
	return &models.Agreement{
		ID:          uuid.New(),
		TenantEmail: email,
		TenantName:  testTenantName,
		Floor:       4,
		Block:       "B",
		ApartmentNo: "B-7",
		RentCents:   rentCents,
		Status:      models.AgreementStatusChecked,
		AcceptedAt:  &accepted,
	}
}

func availableCoupon(code string, percent int) *models.Coupon {
	return &models.Coupon{
		ID:              uuid.New(),
		Code:            code,
		DiscountPercent: percent,
		Description:     "seasonal discount",
		Available:       true,
	}
}

type paymentFixture struct {
	svc        *PaymentService
	agreements *fakeAgreementRepo
	payments   *fakePaymentRepo
	coupons    *fakeCouponRepo
	gateway    *fakeStripeGateway
	cfg        *config.Config
}

func newPaymentFixture(t *testing.T, coupons ...*models.Coupon) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		agreements: newFakeAgreementRepo(activeAgreementFor(testTenantEmail, 100_000)),
		payments:   newFakePaymentRepo(),
		coupons:    newFakeCouponRepo(coupons...),
		gateway:    newFakeStripeGateway(),
		cfg:        &config.Config{LDFlag_CouponStickyAcrossMonths: true},
	}
	f.svc = NewPaymentService(f.cfg, f.agreements, f.payments, NewCouponService(f.coupons), f.gateway, nil)
	return f
}

func requireAppError(t *testing.T, err error, status int, code string) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.StatusCode)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

/* ---------- CreateIntent ---------- */

func TestCreateIntent_AmountComputedFromAgreement(t *testing.T) {
	f := newPaymentFixture(t)

	resp, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: testIdemKey,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100_000), resp.AmountCents)
	assert.Equal(t, int64(100_000), resp.OriginalCents)
	assert.Zero(t, resp.DiscountCents)
	assert.Empty(t, resp.CouponCode)

	require.Len(t, f.gateway.created, 1)
	assert.Equal(t, int64(100_000), f.gateway.created[0].AmountCents)
	assert.Equal(t, testTenantEmail, f.gateway.created[0].Metadata["tenant_email"])
}

func TestCreateIntent_CouponDiscountsAmount(t *testing.T) {
	f := newPaymentFixture(t, availableCoupon("SAVE25", 25))

	resp, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, CouponCode: "save25", IdempotencyKey: testIdemKey,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(75_000), resp.AmountCents)
	assert.Equal(t, int64(25_000), resp.DiscountCents)
	assert.Equal(t, 25, resp.DiscountPercent)
	assert.Equal(t, "SAVE25", resp.CouponCode)

	require.Len(t, f.gateway.created, 1)
	assert.Equal(t, "SAVE25", f.gateway.created[0].Metadata["coupon_code"])
	assert.Equal(t, "25", f.gateway.created[0].Metadata["discount_percent"])
}

func TestCreateIntent_InvalidCouponRejected(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, CouponCode: "NOPE", IdempotencyKey: testIdemKey,
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeCouponInvalid)
	assert.Empty(t, f.gateway.created)
}

func TestCreateIntent_NoActiveAgreement(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateIntent(context.Background(), "stranger@example.com", dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: testIdemKey,
	})
	requireAppError(t, err, http.StatusPreconditionFailed, utils.ErrCodePreconditionMissing)
}

func TestCreateIntent_PeriodAlreadyPaid(t *testing.T) {
	f := newPaymentFixture(t)
	require.NoError(t, f.payments.Create(context.Background(), &models.Payment{
		ID: uuid.New(), TenantEmail: testTenantEmail, Month: "January", Year: 2026,
		IdempotencyKey: "previously-used-key-1",
	}))

	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: testIdemKey,
	})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
}

func TestCreateIntent_InvalidMonth(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "Januaryy", Year: 2026, IdempotencyKey: testIdemKey,
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeValidation)
}

func TestCreateIntent_CardErrorCarriesProcessorMessage(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.createErr = &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card was declined."}

	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: testIdemKey,
	})
	appErr := requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeProcessorDeclined)
	assert.Equal(t, "Your card was declined.", appErr.Message)
}

func TestCreateIntent_GatewayOutage(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.createErr = errIntentNotFound

	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: testIdemKey,
	})
	requireAppError(t, err, http.StatusBadGateway, utils.ErrCodeExternalServiceError)
}

/* ---------- RecordPayment ---------- */

func (f *paymentFixture) confirmIntent(t *testing.T, couponCode string) *PaymentIntent {
	t.Helper()
	req := dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, CouponCode: couponCode, IdempotencyKey: testIdemKey,
	}
	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, req)
	require.NoError(t, err)

	intent := f.gateway.created[len(f.gateway.created)-1]
	intent.Status = stripe.PaymentIntentStatusSucceeded
	intent.CardBrand = "visa"
	intent.CardLast4 = "4242"
	return intent
}

func TestRecordPayment_WritesLedgerAfterSuccess(t *testing.T) {
	f := newPaymentFixture(t, availableCoupon("SAVE10", 10))
	intent := f.confirmIntent(t, "SAVE10")

	payment, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, int64(100_000), payment.OriginalCents)
	assert.Equal(t, int64(10_000), payment.DiscountCents)
	assert.Equal(t, int64(90_000), payment.FinalCents)
	assert.Equal(t, payment.OriginalCents-payment.DiscountCents, payment.FinalCents)
	require.NotNil(t, payment.CouponCode)
	assert.Equal(t, "SAVE10", *payment.CouponCode)
	assert.Equal(t, intent.ID, payment.TransactionID)
	assert.Equal(t, "visa •••• 4242", payment.PaymentMethod)
	assert.Equal(t, "paid", payment.Status)

	count, _ := f.payments.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRecordPayment_ReplayReturnsExistingRow(t *testing.T) {
	f := newPaymentFixture(t)
	intent := f.confirmIntent(t, "")

	req := dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	}
	first, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, req)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	count, _ := f.payments.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRecordPayment_SecondIntentSamePeriodRejected(t *testing.T) {
	f := newPaymentFixture(t)
	first := f.confirmIntent(t, "")

	// Second intent for the same month, confirmed before the first is
	// recorded, so the intent-time guard never saw a ledger row.
	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: "second-intent-key",
	})
	require.NoError(t, err)
	second := f.gateway.created[1]
	second.Status = stripe.PaymentIntentStatusSucceeded

	_, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: first.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	require.NoError(t, err)
	require.True(t, created)

	_, _, err = f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: second.ID, IdempotencyKey: "second-intent-key", Month: "January", Year: 2026,
	})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	count, _ := f.payments.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRecordPayment_SameIntentNewKeyReturnsExistingRow(t *testing.T) {
	f := newPaymentFixture(t)
	intent := f.confirmIntent(t, "")

	first, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	require.NoError(t, err)
	require.True(t, created)

	// Client regenerated its idempotency key but retries the same intent.
	second, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: "regenerated-key", Month: "January", Year: 2026,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	count, _ := f.payments.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

// blindPeriodPaymentRepo hides existing rows from the period read check
// so writes fall through to the unique index.
type blindPeriodPaymentRepo struct{ *fakePaymentRepo }

func (r *blindPeriodPaymentRepo) ExistsForPeriod(context.Context, string, string, int) (bool, error) {
	return false, nil
}

func TestRecordPayment_PeriodRaceLosesToFirstWriter(t *testing.T) {
	f := newPaymentFixture(t)
	f.svc = NewPaymentService(f.cfg, f.agreements, &blindPeriodPaymentRepo{f.payments}, NewCouponService(f.coupons), f.gateway, nil)

	first := f.confirmIntent(t, "")
	_, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: first.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: "racing-intent-key",
	})
	require.NoError(t, err)
	second := f.gateway.created[1]
	second.Status = stripe.PaymentIntentStatusSucceeded

	_, _, err = f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: second.ID, IdempotencyKey: "racing-intent-key", Month: "January", Year: 2026,
	})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)

	count, _ := f.payments.Count(context.Background())
	assert.EqualValues(t, 1, count)
}

func TestRecordPayment_UnconfirmedIntentWritesNothing(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.svc.CreateIntent(context.Background(), testTenantEmail, dtos.CreatePaymentIntentRequest{
		Month: "January", Year: 2026, IdempotencyKey: testIdemKey,
	})
	require.NoError(t, err)
	intent := f.gateway.created[0] // still requires_payment_method

	_, _, err = f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeProcessorDeclined)

	count, _ := f.payments.Count(context.Background())
	assert.Zero(t, count)
}

func TestRecordPayment_AmountMismatchRejected(t *testing.T) {
	f := newPaymentFixture(t)
	intent := f.confirmIntent(t, "")
	intent.AmountCents = 1 // tampered

	_, _, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeAmountMismatch)

	count, _ := f.payments.Count(context.Background())
	assert.Zero(t, count)
}

func TestRecordPayment_ForeignIntentRejected(t *testing.T) {
	f := newPaymentFixture(t)
	intent := f.confirmIntent(t, "")

	other := activeAgreementFor("other@example.com", 50_000)
	require.NoError(t, f.agreements.Create(context.Background(), other))

	_, _, err := f.svc.RecordPayment(context.Background(), "other@example.com", "Other Tenant", dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: "another-idempotency-key", Month: "January", Year: 2026,
	})
	requireAppError(t, err, http.StatusForbidden, utils.ErrCodeForbidden)
}

func TestRecordPayment_StickyCouponSurvivesExpiry(t *testing.T) {
	coupon := availableCoupon("SAVE10", 10)
	f := newPaymentFixture(t, coupon)
	intent := f.confirmIntent(t, "SAVE10")

	// Coupon expires between confirmation and the ledger write.
	coupon.Available = false

	payment, created, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(90_000), payment.FinalCents)
}

func TestRecordPayment_NonStickyRevalidatesCoupon(t *testing.T) {
	coupon := availableCoupon("SAVE10", 10)
	f := newPaymentFixture(t, coupon)
	f.cfg.LDFlag_CouponStickyAcrossMonths = false
	intent := f.confirmIntent(t, "SAVE10")

	coupon.Available = false

	_, _, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	requireAppError(t, err, http.StatusBadRequest, utils.ErrCodeCouponInvalid)

	count, _ := f.payments.Count(context.Background())
	assert.Zero(t, count)
}

func TestHistory_ReturnsTenantLedger(t *testing.T) {
	f := newPaymentFixture(t)
	intent := f.confirmIntent(t, "")

	_, _, err := f.svc.RecordPayment(context.Background(), testTenantEmail, testTenantName, dtos.RecordPaymentRequest{
		PaymentIntentID: intent.ID, IdempotencyKey: testIdemKey, Month: "January", Year: 2026,
	})
	require.NoError(t, err)

	history, err := f.svc.History(context.Background(), testTenantEmail)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "January", history[0].Month)

	empty, err := f.svc.History(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
