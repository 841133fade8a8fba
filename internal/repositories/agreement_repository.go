package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nivash/building-service/internal/models"
)

/* ───────────── public interface ───────────── */

type AgreementRepository interface {
	Create(ctx context.Context, a *models.Agreement) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Agreement, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Agreement, error)
	ListByStatus(ctx context.Context, status models.AgreementStatusType) ([]*models.Agreement, error)
	// ActiveByEmail resolves the agreement used for payment. When a tenant
	// somehow holds more than one accepted agreement the most recently
	// accepted one wins.
	ActiveByEmail(ctx context.Context, email string) (*models.Agreement, error)
	Count(ctx context.Context) (int64, error)

	UpdateIfVersion(ctx context.Context, a *models.Agreement, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Agreement) error) error
}

/* ───────────── implementation ───────────── */

type agreementRepo struct {
	*BaseVersionedRepo[*models.Agreement]
	db DB
}

func NewAgreementRepository(db DB) AgreementRepository {
	r := &agreementRepo{db: db}
	selectStmt := baseSelectAgreement() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanAgreement)
	return r
}

/* ---------- create ---------- */

func (r *agreementRepo) Create(ctx context.Context, a *models.Agreement) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO agreements (
			id, tenant_name, tenant_email, apartment_id, floor, block,
			apartment_no, rent_cents, status, requested_at, accepted_at,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, NOW(), NOW(), 1)
	`, a.ID, a.TenantName, a.TenantEmail, a.ApartmentID, a.Floor, a.Block,
		a.ApartmentNo, a.RentCents, a.Status, a.RequestedAt, a.AcceptedAt)
	return err
}

/* ---------- reads ---------- */

func (r *agreementRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Agreement, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *agreementRepo) ListByEmail(ctx context.Context, email string) ([]*models.Agreement, error) {
	rows, err := r.db.Query(ctx, baseSelectAgreement()+" WHERE tenant_email=$1 ORDER BY requested_at DESC", email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAgreements(rows)
}

func (r *agreementRepo) ListByStatus(ctx context.Context, status models.AgreementStatusType) ([]*models.Agreement, error) {
	rows, err := r.db.Query(ctx, baseSelectAgreement()+" WHERE status=$1 ORDER BY requested_at", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAgreements(rows)
}

func (r *agreementRepo) ActiveByEmail(ctx context.Context, email string) (*models.Agreement, error) {
	row := r.db.QueryRow(ctx, baseSelectAgreement()+`
		WHERE tenant_email=$1 AND status=$2
		ORDER BY accepted_at DESC NULLS LAST
		LIMIT 1`, email, models.AgreementStatusChecked)
	return r.scanAgreement(row)
}

func (r *agreementRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM agreements`).Scan(&n)
	return n, err
}

/* ---------- update ---------- */

func (r *agreementRepo) UpdateIfVersion(ctx context.Context, a *models.Agreement, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE agreements
		SET status=$1, accepted_at=$2, updated_at=NOW(), row_version=row_version+1
		WHERE id=$3 AND row_version=$4
	`, a.Status, a.AcceptedAt, a.ID, expected)
}

func (r *agreementRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Agreement) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

/* ---------- internals ---------- */

func baseSelectAgreement() string {
	return `
		SELECT id, tenant_name, tenant_email, apartment_id, floor, block,
		apartment_no, rent_cents, status, requested_at, accepted_at,
		created_at, updated_at, row_version
		FROM agreements`
}

func (r *agreementRepo) scanAgreement(row pgx.Row) (*models.Agreement, error) {
	var a models.Agreement
	if err := row.Scan(
		&a.ID, &a.TenantName, &a.TenantEmail, &a.ApartmentID, &a.Floor, &a.Block,
		&a.ApartmentNo, &a.RentCents, &a.Status, &a.RequestedAt, &a.AcceptedAt,
		&a.CreatedAt, &a.UpdatedAt, &a.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *agreementRepo) scanAgreements(rows pgx.Rows) ([]*models.Agreement, error) {
	var out []*models.Agreement
	for rows.Next() {
		a, err := r.scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
