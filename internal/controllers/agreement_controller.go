package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

type AgreementController struct {
	agreementService *services.AgreementService
	validate         *validator.Validate
}

func NewAgreementController(s *services.AgreementService) *AgreementController {
	return &AgreementController{
		agreementService: s,
		validate:         validator.New(),
	}
}

// POST /api/v1/agreements
func (c *AgreementController) RequestAgreementHandler(w http.ResponseWriter, r *http.Request) {
	email, name, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreateAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	agreement, err := c.agreementService.Request(r.Context(), email, name, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, agreement)
}

// GET /api/v1/agreements
func (c *AgreementController) ListAgreementsHandler(w http.ResponseWriter, r *http.Request) {
	email, _, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	agreements, err := c.agreementService.ListByEmail(r.Context(), email)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, agreements)
}

// GET /api/v1/agreements/active
// The agreement is always resolved for the signed-in principal; an
// email query parameter is ignored rather than trusted.
func (c *AgreementController) GetActiveAgreementHandler(w http.ResponseWriter, r *http.Request) {
	email, _, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	agreement, err := c.agreementService.Active(r.Context(), email)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, agreement)
}
