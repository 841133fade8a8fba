package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nivash/building-service/internal/models"
)

/* ───────────── public interface ───────────── */

type ApartmentRepository interface {
	Create(ctx context.Context, a *models.Apartment) error
	CreateMany(ctx context.Context, list []models.Apartment) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Apartment, error)
	List(ctx context.Context) ([]*models.Apartment, error)
	Count(ctx context.Context) (int64, error)

	Update(ctx context.Context, a *models.Apartment) error
	UpdateIfVersion(ctx context.Context, a *models.Apartment, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Apartment) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type apartmentRepo struct {
	*BaseVersionedRepo[*models.Apartment]
	db DB
}

func NewApartmentRepository(db DB) ApartmentRepository {
	r := &apartmentRepo{db: db}
	selectStmt := baseSelectApartment() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanApartment)
	return r
}

/* ---------- create ---------- */

func (r *apartmentRepo) Create(ctx context.Context, a *models.Apartment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO apartments (
			id, floor, block, apartment_no, rent_cents, image_url,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6, NOW(), NOW(), 1)
	`, a.ID, a.Floor, a.Block, a.ApartmentNo, a.RentCents, a.ImageURL)
	return err
}

func (r *apartmentRepo) CreateMany(ctx context.Context, list []models.Apartment) error {
	for i := range list {
		if err := r.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

/* ---------- reads ---------- */

func (r *apartmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Apartment, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *apartmentRepo) List(ctx context.Context) ([]*models.Apartment, error) {
	rows, err := r.db.Query(ctx, baseSelectApartment()+" ORDER BY block, floor, apartment_no")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanApartments(rows)
}

func (r *apartmentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM apartments`).Scan(&n)
	return n, err
}

/* ---------- update / delete ---------- */

func (r *apartmentRepo) Update(ctx context.Context, a *models.Apartment) error {
	_, err := r.update(ctx, a, false, 0)
	return err
}

func (r *apartmentRepo) UpdateIfVersion(ctx context.Context, a *models.Apartment, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, a, true, expected)
}

func (r *apartmentRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Apartment) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *apartmentRepo) update(ctx context.Context, a *models.Apartment, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE apartments
		SET floor=$1, block=$2, apartment_no=$3, rent_cents=$4, image_url=$5, updated_at=NOW()
	`
	args := []interface{}{a.Floor, a.Block, a.ApartmentNo, a.RentCents, a.ImageURL}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$6 AND row_version=$7`
		args = append(args, a.ID, expected)
	} else {
		sql += ` WHERE id=$6`
		args = append(args, a.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *apartmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM apartments WHERE id=$1`, id)
	return err
}

/* ---------- internals ---------- */

func baseSelectApartment() string {
	return `
		SELECT id, floor, block, apartment_no, rent_cents, image_url,
		created_at, updated_at, row_version
		FROM apartments`
}

func (r *apartmentRepo) scanApartment(row pgx.Row) (*models.Apartment, error) {
	var a models.Apartment
	if err := row.Scan(
		&a.ID, &a.Floor, &a.Block, &a.ApartmentNo, &a.RentCents, &a.ImageURL,
		&a.CreatedAt, &a.UpdatedAt, &a.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *apartmentRepo) scanApartments(rows pgx.Rows) ([]*models.Apartment, error) {
	var out []*models.Apartment
	for rows.Next() {
		a, err := r.scanApartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
