package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

type PaymentController struct {
	paymentService *services.PaymentService
	validate       *validator.Validate
}

func NewPaymentController(s *services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: s,
		validate:       validator.New(),
	}
}

// POST /api/v1/payments/intent
func (c *PaymentController) CreatePaymentIntentHandler(w http.ResponseWriter, r *http.Request) {
	email, _, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.CreatePaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	resp, err := c.paymentService.CreateIntent(r.Context(), email, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// POST /api/v1/payments
// Replaying an idempotency key returns the original ledger entry with
// 200 instead of 201.
func (c *PaymentController) RecordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	email, name, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	var req dtos.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	payment, created, err := c.paymentService.RecordPayment(r.Context(), email, name, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, payment)
}

// GET /api/v1/payments
func (c *PaymentController) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	email, _, err := principal(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	payments, err := c.paymentService.History(r.Context(), email)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, payments)
}
