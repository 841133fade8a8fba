package dtos

import (
	"time"

	"github.com/nivash/building-service/internal/models"
)

type Announcement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewAnnouncementFromModel(a models.Announcement) Announcement {
	return Announcement{
		ID:         a.ID.String(),
		Title:      a.Title,
		Body:       a.Body,
		AuthorName: a.AuthorName,
		CreatedAt:  a.CreatedAt,
	}
}

type CreateAnnouncementRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required"`
}

type UpdateAnnouncementRequest struct {
	Title *string `json:"title" validate:"omitempty,max=200"`
	Body  *string `json:"body" validate:"omitempty,min=1"`
}
