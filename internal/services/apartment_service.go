package services

import (
	"context"
	"net/http"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

type ApartmentService struct {
	repo repositories.ApartmentRepository
}

func NewApartmentService(repo repositories.ApartmentRepository) *ApartmentService {
	return &ApartmentService{repo: repo}
}

func (s *ApartmentService) List(ctx context.Context) ([]dtos.Apartment, error) {
	apartments, err := s.repo.List(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list apartments", Err: err}
	}
	out := make([]dtos.Apartment, 0, len(apartments))
	for _, a := range apartments {
		out = append(out, dtos.NewApartmentFromModel(*a))
	}
	return out, nil
}
