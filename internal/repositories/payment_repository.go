package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/nivash/building-service/internal/models"
)

/* ───────────── public interface ───────────── */

// PaymentRepository is append-only: the ledger offers no update or
// delete. Unique indexes on idempotency_key, stripe_payment_intent_id,
// and (tenant_email, month, year) each reject duplicates with 23505.
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error

	ListByEmail(ctx context.Context, email string) ([]*models.Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	ExistsForPeriod(ctx context.Context, email, month string, year int) (bool, error)
	Count(ctx context.Context) (int64, error)
}

/* ───────────── implementation ───────────── */

type paymentRepo struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

/* ---------- create ---------- */

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (
			id, tenant_email, tenant_name, apartment_no, floor, block,
			month, year, original_rent_cents, coupon_code, discount_percent,
			discount_cents, final_cents, stripe_payment_intent_id,
			payment_method, idempotency_key, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17, NOW())
	`, p.ID, p.TenantEmail, p.TenantName, p.ApartmentNo, p.Floor, p.Block,
		p.Month, p.Year, p.OriginalRentCents, p.CouponCode, p.DiscountPercent,
		p.DiscountCents, p.FinalCents, p.StripePaymentIntentID,
		p.PaymentMethod, p.IdempotencyKey, p.Status)
	return err
}

/* ---------- reads ---------- */

func (r *paymentRepo) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, baseSelectPayment()+" WHERE tenant_email=$1 ORDER BY created_at DESC", email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanPayments(rows)
}

func (r *paymentRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, baseSelectPayment()+" WHERE idempotency_key=$1", key)
	return r.scanPayment(row)
}

func (r *paymentRepo) GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, baseSelectPayment()+" WHERE stripe_payment_intent_id=$1", intentID)
	return r.scanPayment(row)
}

func (r *paymentRepo) ExistsForPeriod(ctx context.Context, email, month string, year int) (bool, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments WHERE tenant_email=$1 AND month=$2 AND year=$3`,
		email, month, year,
	).Scan(&n)
	return n > 0, err
}

func (r *paymentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&n)
	return n, err
}

/* ---------- internals ---------- */

func baseSelectPayment() string {
	return `
		SELECT id, tenant_email, tenant_name, apartment_no, floor, block,
		month, year, original_rent_cents, coupon_code, discount_percent,
		discount_cents, final_cents, stripe_payment_intent_id,
		payment_method, idempotency_key, status, created_at
		FROM payments`
}

func (r *paymentRepo) scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	if err := row.Scan(
		&p.ID, &p.TenantEmail, &p.TenantName, &p.ApartmentNo, &p.Floor, &p.Block,
		&p.Month, &p.Year, &p.OriginalRentCents, &p.CouponCode, &p.DiscountPercent,
		&p.DiscountCents, &p.FinalCents, &p.StripePaymentIntentID,
		&p.PaymentMethod, &p.IdempotencyKey, &p.Status, &p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) scanPayments(rows pgx.Rows) ([]*models.Payment, error) {
	var out []*models.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
