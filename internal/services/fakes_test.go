package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

/* ---------- coupon repo ---------- */

type fakeCouponRepo struct {
	mu      sync.Mutex
	byCode  map[string]*models.Coupon
	listErr error
}

func newFakeCouponRepo(coupons ...*models.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{byCode: make(map[string]*models.Coupon)}
	for _, c := range coupons {
		r.byCode[c.Code] = c
	}
	return r
}

func (r *fakeCouponRepo) Create(_ context.Context, c *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[c.Code]; ok {
		return utils.ErrCouponCodeExists
	}
	r.byCode[c.Code] = c
	return nil
}

func (r *fakeCouponRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byCode {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCouponRepo) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byCode[code], nil
}

func (r *fakeCouponRepo) List(_ context.Context) ([]*models.Coupon, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Coupon, 0, len(r.byCode))
	for _, c := range r.byCode {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCouponRepo) ListAvailable(ctx context.Context) ([]*models.Coupon, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Coupon, 0, len(all))
	for _, c := range all {
		if c.Available {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCouponRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byCode)), nil
}

func (r *fakeCouponRepo) UpdateIfVersion(_ context.Context, _ *models.Coupon, _ int64) (pgconn.CommandTag, error) {
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeCouponRepo) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Coupon) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byCode {
		if c.ID == id {
			return mutate(c)
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeCouponRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, c := range r.byCode {
		if c.ID == id {
			delete(r.byCode, code)
			return nil
		}
	}
	return nil
}

func (r *fakeCouponRepo) DisableExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.byCode {
		if c.Available && c.Expired(now) {
			c.Available = false
			n++
		}
	}
	return n, nil
}

var _ repositories.CouponRepository = (*fakeCouponRepo)(nil)

/* ---------- agreement repo ---------- */

type fakeAgreementRepo struct {
	mu         sync.Mutex
	agreements []*models.Agreement
}

func newFakeAgreementRepo(agreements ...*models.Agreement) *fakeAgreementRepo {
	return &fakeAgreementRepo{agreements: agreements}
}

func (r *fakeAgreementRepo) Create(_ context.Context, a *models.Agreement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agreements = append(r.agreements, a)
	return nil
}

func (r *fakeAgreementRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Agreement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agreements {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAgreementRepo) ListByEmail(_ context.Context, email string) ([]*models.Agreement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Agreement
	for _, a := range r.agreements {
		if a.TenantEmail == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAgreementRepo) ListByStatus(_ context.Context, status models.AgreementStatusType) ([]*models.Agreement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Agreement
	for _, a := range r.agreements {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAgreementRepo) ActiveByEmail(_ context.Context, email string) (*models.Agreement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Agreement
	for _, a := range r.agreements {
		if a.TenantEmail != email || !a.Active() {
			continue
		}
		if best == nil || (a.AcceptedAt != nil && best.AcceptedAt != nil && a.AcceptedAt.After(*best.AcceptedAt)) {
			best = a
		}
	}
	return best, nil
}

func (r *fakeAgreementRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.agreements)), nil
}

func (r *fakeAgreementRepo) UpdateIfVersion(_ context.Context, _ *models.Agreement, _ int64) (pgconn.CommandTag, error) {
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeAgreementRepo) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Agreement) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agreements {
		if a.ID == id {
			return mutate(a)
		}
	}
	return pgx.ErrNoRows
}

var _ repositories.AgreementRepository = (*fakeAgreementRepo)(nil)

/* ---------- user repo ---------- */

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	return &fakeUserRepo{users: users}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.User(nil), r.users...), nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role models.RoleType) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role models.RoleType) (int64, error) {
	byRole, err := r.ListByRole(ctx, role)
	if err != nil {
		return 0, err
	}
	return int64(len(byRole)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, _ *models.User) error { return nil }

func (r *fakeUserRepo) UpdateIfVersion(_ context.Context, _ *models.User, _ int64) (pgconn.CommandTag, error) {
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeUserRepo) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return mutate(u)
		}
	}
	return pgx.ErrNoRows
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

/* ---------- apartment repo ---------- */

type fakeApartmentRepo struct {
	mu         sync.Mutex
	apartments []*models.Apartment
}

func newFakeApartmentRepo(apartments ...*models.Apartment) *fakeApartmentRepo {
	return &fakeApartmentRepo{apartments: apartments}
}

func (r *fakeApartmentRepo) Create(_ context.Context, a *models.Apartment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apartments = append(r.apartments, a)
	return nil
}

func (r *fakeApartmentRepo) CreateMany(ctx context.Context, list []models.Apartment) error {
	for i := range list {
		a := list[i]
		if err := r.Create(ctx, &a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeApartmentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Apartment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apartments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeApartmentRepo) List(_ context.Context) ([]*models.Apartment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Apartment(nil), r.apartments...), nil
}

func (r *fakeApartmentRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.apartments)), nil
}

func (r *fakeApartmentRepo) Update(_ context.Context, _ *models.Apartment) error { return nil }

func (r *fakeApartmentRepo) UpdateIfVersion(_ context.Context, _ *models.Apartment, _ int64) (pgconn.CommandTag, error) {
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakeApartmentRepo) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Apartment) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apartments {
		if a.ID == id {
			return mutate(a)
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeApartmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.apartments {
		if a.ID == id {
			r.apartments = append(r.apartments[:i], r.apartments[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ repositories.ApartmentRepository = (*fakeApartmentRepo)(nil)

/* ---------- payment repo ---------- */

type fakePaymentRepo struct {
	mu        sync.Mutex
	payments  []*models.Payment
	createErr error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.payments {
		if existing.IdempotencyKey == p.IdempotencyKey {
			return &pgconn.PgError{Code: "23505", ConstraintName: "payments_idempotency_key_key"}
		}
		if existing.StripePaymentIntentID == p.StripePaymentIntentID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "payments_stripe_payment_intent_id_key"}
		}
		if existing.TenantEmail == p.TenantEmail && existing.Month == p.Month && existing.Year == p.Year {
			return &pgconn.PgError{Code: "23505", ConstraintName: "payments_tenant_email_month_year_key"}
		}
	}
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakePaymentRepo) ListByEmail(_ context.Context, email string) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.TenantEmail == email {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) GetByIdempotencyKey(_ context.Context, key string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.IdempotencyKey == key {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) GetByIntentID(_ context.Context, intentID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.StripePaymentIntentID == intentID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) ExistsForPeriod(_ context.Context, email, month string, year int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.TenantEmail == email && p.Month == month && p.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.payments)), nil
}

var _ repositories.PaymentRepository = (*fakePaymentRepo)(nil)

/* ---------- stripe gateway ---------- */

var errIntentNotFound = errors.New("no such payment intent")

type fakeStripeGateway struct {
	mu        sync.Mutex
	intents   map[string]*PaymentIntent
	createErr error
	getErr    error
	created   []*PaymentIntent
}

func newFakeStripeGateway() *fakeStripeGateway {
	return &fakeStripeGateway{intents: make(map[string]*PaymentIntent)}
}

func (g *fakeStripeGateway) CreateIntent(_ context.Context, amountCents int64, idempotencyKey, receiptEmail string, metadata map[string]string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	intent := &PaymentIntent{
		ID:           "pi_" + idempotencyKey,
		ClientSecret: "pi_" + idempotencyKey + "_secret",
		AmountCents:  amountCents,
		Status:       "requires_payment_method",
		Metadata:     metadata,
	}
	g.intents[intent.ID] = intent
	g.created = append(g.created, intent)
	return intent, nil
}

func (g *fakeStripeGateway) GetIntent(_ context.Context, id string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	if intent, ok := g.intents[id]; ok {
		return intent, nil
	}
	return nil, errIntentNotFound
}

var _ StripeGateway = (*fakeStripeGateway)(nil)
