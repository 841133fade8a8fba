package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/utils"
)

/* ───────────── public interface ───────────── */

type CouponRepository interface {
	// Create returns utils.ErrCouponCodeExists on a duplicate code.
	Create(ctx context.Context, c *models.Coupon) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	// GetByCode expects an already-normalized (uppercase) code.
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]*models.Coupon, error)
	ListAvailable(ctx context.Context) ([]*models.Coupon, error)
	Count(ctx context.Context) (int64, error)

	UpdateIfVersion(ctx context.Context, c *models.Coupon, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Coupon) error) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DisableExpired flips availability off for coupons whose expiry has
	// passed. Returns the number of rows affected.
	DisableExpired(ctx context.Context, now time.Time) (int64, error)
}

/* ───────────── implementation ───────────── */

type couponRepo struct {
	*BaseVersionedRepo[*models.Coupon]
	db DB
}

func NewCouponRepository(db DB) CouponRepository {
	r := &couponRepo{db: db}
	selectStmt := baseSelectCoupon() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanCoupon)
	return r
}

/* ---------- create ---------- */

func (r *couponRepo) Create(ctx context.Context, c *models.Coupon) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO coupons (
			id, code, discount_percent, description, available, expires_at,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW(), 1)
	`, c.ID, c.Code, c.DiscountPercent, c.Description, c.Available, c.ExpiresAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return utils.ErrCouponCodeExists
	}
	return err
}

/* ---------- reads ---------- */

func (r *couponRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *couponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	row := r.db.QueryRow(ctx, baseSelectCoupon()+" WHERE code=$1", code)
	return r.scanCoupon(row)
}

func (r *couponRepo) List(ctx context.Context) ([]*models.Coupon, error) {
	rows, err := r.db.Query(ctx, baseSelectCoupon()+" ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanCoupons(rows)
}

func (r *couponRepo) ListAvailable(ctx context.Context) ([]*models.Coupon, error) {
	rows, err := r.db.Query(ctx, baseSelectCoupon()+" WHERE available ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanCoupons(rows)
}

func (r *couponRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&n)
	return n, err
}

/* ---------- update / delete ---------- */

func (r *couponRepo) UpdateIfVersion(ctx context.Context, c *models.Coupon, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE coupons
		SET code=$1, discount_percent=$2, description=$3, available=$4,
		    expires_at=$5, updated_at=NOW(), row_version=row_version+1
		WHERE id=$6 AND row_version=$7
	`, c.Code, c.DiscountPercent, c.Description, c.Available, c.ExpiresAt, c.ID, expected)
}

func (r *couponRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Coupon) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *couponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id=$1`, id)
	return err
}

func (r *couponRepo) DisableExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE coupons
		SET available=FALSE, updated_at=NOW(), row_version=row_version+1
		WHERE available AND expires_at IS NOT NULL AND expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

/* ---------- internals ---------- */

func baseSelectCoupon() string {
	return `
		SELECT id, code, discount_percent, description, available, expires_at,
		created_at, updated_at, row_version
		FROM coupons`
}

func (r *couponRepo) scanCoupon(row pgx.Row) (*models.Coupon, error) {
	var c models.Coupon
	if err := row.Scan(
		&c.ID, &c.Code, &c.DiscountPercent, &c.Description, &c.Available, &c.ExpiresAt,
		&c.CreatedAt, &c.UpdatedAt, &c.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *couponRepo) scanCoupons(rows pgx.Rows) ([]*models.Coupon, error) {
	var out []*models.Coupon
	for rows.Next() {
		c, err := r.scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
