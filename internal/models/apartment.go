package models

import (
	"time"

	"github.com/google/uuid"
)

// Apartment represents a tenant-addressable unit inside a block of the
// building, browseable before any agreement exists.
type Apartment struct {
	Versioned
	ID          uuid.UUID `json:"id"`
	Floor       int16     `json:"floor"`
	Block       string    `json:"block"`
	ApartmentNo string    `json:"apartment_no"`
	RentCents   int64     `json:"rent_cents"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Apartment) GetID() string { return a.ID.String() }
