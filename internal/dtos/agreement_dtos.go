package dtos

import (
	"time"

	"github.com/nivash/building-service/internal/models"
)

type Agreement struct {
	ID          string                     `json:"id"`
	TenantName  string                     `json:"tenant_name"`
	TenantEmail string                     `json:"tenant_email"`
	Floor       int16                      `json:"floor"`
	Block       string                     `json:"block"`
	ApartmentNo string                     `json:"apartment_no"`
	RentCents   int64                      `json:"rent_cents"`
	Status      models.AgreementStatusType `json:"status"`
	RequestedAt time.Time                  `json:"requested_at"`
	AcceptedAt  *time.Time                 `json:"accepted_at,omitempty"`
}

func NewAgreementFromModel(a models.Agreement) Agreement {
	return Agreement{
		ID:          a.ID.String(),
		TenantName:  a.TenantName,
		TenantEmail: a.TenantEmail,
		Floor:       a.Floor,
		Block:       a.Block,
		ApartmentNo: a.ApartmentNo,
		RentCents:   a.RentCents,
		Status:      a.Status,
		RequestedAt: a.RequestedAt,
		AcceptedAt:  a.AcceptedAt,
	}
}

type CreateAgreementRequest struct {
	ApartmentID string `json:"apartment_id" validate:"required,uuid4"`
}

// ReviewAgreementRequest is the admin accept/reject action.
type ReviewAgreementRequest struct {
	Accept bool `json:"accept"`
}
