package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

type AnnouncementService struct {
	repo repositories.AnnouncementRepository
}

func NewAnnouncementService(repo repositories.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{repo: repo}
}

func (s *AnnouncementService) List(ctx context.Context) ([]dtos.Announcement, error) {
	announcements, err := s.repo.List(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list announcements", Err: err}
	}
	out := make([]dtos.Announcement, 0, len(announcements))
	for _, a := range announcements {
		out = append(out, dtos.NewAnnouncementFromModel(*a))
	}
	return out, nil
}

func (s *AnnouncementService) Create(ctx context.Context, authorEmail, authorName string, req dtos.CreateAnnouncementRequest) (*dtos.Announcement, error) {
	announcement := &models.Announcement{
		ID:          uuid.New(),
		Title:       req.Title,
		Body:        req.Body,
		AuthorEmail: authorEmail,
		AuthorName:  authorName,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create announcement", Err: err}
	}
	dto := dtos.NewAnnouncementFromModel(*announcement)
	return &dto, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id uuid.UUID, req dtos.UpdateAnnouncementRequest) (*dtos.Announcement, error) {
	err := s.repo.UpdateWithRetry(ctx, id, func(a *models.Announcement) error {
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Body != nil {
			a.Body = *req.Body
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Announcement not found"}
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update announcement", Err: err}
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil || updated == nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to reload announcement", Err: err}
	}
	dto := dtos.NewAnnouncementFromModel(*updated)
	return &dto, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to delete announcement", Err: err}
	}
	return nil
}
