package models

import (
	"time"

	"github.com/google/uuid"
)

// AgreementStatusType defines the lifecycle states of a rental agreement.
type AgreementStatusType string

const (
	AgreementStatusPending  AgreementStatusType = "pending"
	AgreementStatusChecked  AgreementStatusType = "checked"
	AgreementStatusRejected AgreementStatusType = "rejected"
)

// Agreement is a tenant's claim on a specific apartment. Created when a
// tenant requests a unit, mutated only by an admin accept/reject; never
// hard-deleted.
type Agreement struct {
	Versioned
	ID          uuid.UUID           `json:"id"`
	TenantName  string              `json:"tenant_name"`
	TenantEmail string              `json:"tenant_email"`
	ApartmentID uuid.UUID           `json:"apartment_id"`
	Floor       int16               `json:"floor"`
	Block       string              `json:"block"`
	ApartmentNo string              `json:"apartment_no"`
	RentCents   int64               `json:"rent_cents"`
	Status      AgreementStatusType `json:"status"`
	RequestedAt time.Time           `json:"requested_at"`
	AcceptedAt  *time.Time          `json:"accepted_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (a *Agreement) GetID() string { return a.ID.String() }

// Active reports whether this agreement entitles the tenant to pay rent.
func (a *Agreement) Active() bool { return a.Status == AgreementStatusChecked }
