package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is an admin-authored notice shown to all residents.
type Announcement struct {
	Versioned
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Announcement) GetID() string { return a.ID.String() }
