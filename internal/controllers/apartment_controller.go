package controllers

import (
	"net/http"

	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

type ApartmentController struct {
	apartmentService *services.ApartmentService
}

func NewApartmentController(s *services.ApartmentService) *ApartmentController {
	return &ApartmentController{apartmentService: s}
}

// GET /api/v1/apartments
func (c *ApartmentController) ListApartmentsHandler(w http.ResponseWriter, r *http.Request) {
	apartments, err := c.apartmentService.List(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, apartments)
}
