package dtos

import (
	"github.com/nivash/building-service/internal/models"
)

type Apartment struct {
	ID          string  `json:"id"`
	Floor       int16   `json:"floor"`
	Block       string  `json:"block"`
	ApartmentNo string  `json:"apartment_no"`
	RentCents   int64   `json:"rent_cents"`
	Rent        float64 `json:"rent"`
	ImageURL    string  `json:"image_url,omitempty"`
}

func NewApartmentFromModel(a models.Apartment) Apartment {
	return Apartment{
		ID:          a.ID.String(),
		Floor:       a.Floor,
		Block:       a.Block,
		ApartmentNo: a.ApartmentNo,
		RentCents:   a.RentCents,
		Rent:        float64(a.RentCents) / 100,
		ImageURL:    a.ImageURL,
	}
}
