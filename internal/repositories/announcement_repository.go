package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nivash/building-service/internal/models"
)

/* ───────────── public interface ───────────── */

type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	List(ctx context.Context) ([]*models.Announcement, error)
	Count(ctx context.Context) (int64, error)

	UpdateIfVersion(ctx context.Context, a *models.Announcement, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Announcement) error) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ───────────── implementation ───────────── */

type announcementRepo struct {
	*BaseVersionedRepo[*models.Announcement]
	db DB
}

func NewAnnouncementRepository(db DB) AnnouncementRepository {
	r := &announcementRepo{db: db}
	selectStmt := baseSelectAnnouncement() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanAnnouncement)
	return r
}

/* ---------- create ---------- */

func (r *announcementRepo) Create(ctx context.Context, a *models.Announcement) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO announcements (
			id, title, body, author_email, author_name,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5, NOW(), NOW(), 1)
	`, a.ID, a.Title, a.Body, a.AuthorEmail, a.AuthorName)
	return err
}

/* ---------- reads ---------- */

func (r *announcementRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *announcementRepo) List(ctx context.Context) ([]*models.Announcement, error) {
	rows, err := r.db.Query(ctx, baseSelectAnnouncement()+" ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAnnouncements(rows)
}

func (r *announcementRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&n)
	return n, err
}

/* ---------- update / delete ---------- */

func (r *announcementRepo) UpdateIfVersion(ctx context.Context, a *models.Announcement, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE announcements
		SET title=$1, body=$2, updated_at=NOW(), row_version=row_version+1
		WHERE id=$3 AND row_version=$4
	`, a.Title, a.Body, a.ID, expected)
}

func (r *announcementRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Announcement) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *announcementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id=$1`, id)
	return err
}

/* ---------- internals ---------- */

func baseSelectAnnouncement() string {
	return `
		SELECT id, title, body, author_email, author_name,
		created_at, updated_at, row_version
		FROM announcements`
}

func (r *announcementRepo) scanAnnouncement(row pgx.Row) (*models.Announcement, error) {
	var a models.Announcement
	if err := row.Scan(
		&a.ID, &a.Title, &a.Body, &a.AuthorEmail, &a.AuthorName,
		&a.CreatedAt, &a.UpdatedAt, &a.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepo) scanAnnouncements(rows pgx.Rows) ([]*models.Announcement, error) {
	var out []*models.Announcement
	for rows.Next() {
		a, err := r.scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
