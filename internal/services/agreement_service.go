package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

type AgreementService struct {
	agreementRepo repositories.AgreementRepository
	apartmentRepo repositories.ApartmentRepository
	userRepo      repositories.UserRepository
	now           func() time.Time
}

func NewAgreementService(
	agreementRepo repositories.AgreementRepository,
	apartmentRepo repositories.ApartmentRepository,
	userRepo repositories.UserRepository,
) *AgreementService {
	return &AgreementService{
		agreementRepo: agreementRepo,
		apartmentRepo: apartmentRepo,
		userRepo:      userRepo,
		now:           time.Now,
	}
}

// Request creates a pending agreement for the signed-in tenant.
// One open request at a time: an existing pending or accepted agreement
// blocks a new one.
func (s *AgreementService) Request(ctx context.Context, email, name string, req dtos.CreateAgreementRequest) (*dtos.Agreement, error) {
	apartmentID, err := uuid.Parse(req.ApartmentID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid apartment id", Err: err}
	}

	apartment, err := s.apartmentRepo.GetByID(ctx, apartmentID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up apartment", Err: err}
	}
	if apartment == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Apartment not found"}
	}

	existing, err := s.agreementRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to check existing agreements", Err: err}
	}
	for _, a := range existing {
		if a.Status == models.AgreementStatusPending || a.Status == models.AgreementStatusChecked {
			return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "An open agreement already exists for this tenant"}
		}
	}

	agreement := &models.Agreement{
		ID:          uuid.New(),
		TenantName:  name,
		TenantEmail: email,
		ApartmentID: apartment.ID,
		Floor:       apartment.Floor,
		Block:       apartment.Block,
		ApartmentNo: apartment.ApartmentNo,
		RentCents:   apartment.RentCents,
		Status:      models.AgreementStatusPending,
		RequestedAt: s.now(),
	}
	if err := s.agreementRepo.Create(ctx, agreement); err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create agreement", Err: err}
	}

	dto := dtos.NewAgreementFromModel(*agreement)
	return &dto, nil
}

func (s *AgreementService) ListByEmail(ctx context.Context, email string) ([]dtos.Agreement, error) {
	agreements, err := s.agreementRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list agreements", Err: err}
	}
	out := make([]dtos.Agreement, 0, len(agreements))
	for _, a := range agreements {
		out = append(out, dtos.NewAgreementFromModel(*a))
	}
	return out, nil
}

// Active resolves the agreement the tenant pays rent against.
func (s *AgreementService) Active(ctx context.Context, email string) (*dtos.Agreement, error) {
	agreement, err := s.agreementRepo.ActiveByEmail(ctx, email)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to resolve active agreement", Err: err}
	}
	if agreement == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "No active agreement for this tenant"}
	}
	dto := dtos.NewAgreementFromModel(*agreement)
	return &dto, nil
}

func (s *AgreementService) ListPending(ctx context.Context) ([]dtos.Agreement, error) {
	agreements, err := s.agreementRepo.ListByStatus(ctx, models.AgreementStatusPending)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list pending agreements", Err: err}
	}
	out := make([]dtos.Agreement, 0, len(agreements))
	for _, a := range agreements {
		out = append(out, dtos.NewAgreementFromModel(*a))
	}
	return out, nil
}

// Review applies the admin accept/reject decision. Accepting stamps the
// acceptance time and promotes the tenant to member; the promotion is
// skipped for tenants already member or admin.
func (s *AgreementService) Review(ctx context.Context, id uuid.UUID, accept bool) (*dtos.Agreement, error) {
	var tenantEmail string
	err := s.agreementRepo.UpdateWithRetry(ctx, id, func(a *models.Agreement) error {
		if a.Status != models.AgreementStatusPending {
			return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Agreement already reviewed"}
		}
		tenantEmail = a.TenantEmail
		if accept {
			a.Status = models.AgreementStatusChecked
			a.AcceptedAt = utils.Ptr(s.now())
		} else {
			a.Status = models.AgreementStatusRejected
		}
		return nil
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, utils.ErrRowVersionConflict) {
			return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeRowVersionConflict, Message: "Agreement was modified concurrently, retry the review", Err: err}
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to review agreement", Err: err}
	}

	if accept {
		if err := s.promoteToMember(ctx, tenantEmail); err != nil {
			// Agreement is accepted either way; the promotion will apply
			// on the next role fetch if retried manually.
			utils.Logger.WithError(err).Errorf("Failed to promote %s to member", tenantEmail)
		}
	}

	reviewed, err := s.agreementRepo.GetByID(ctx, id)
	if err != nil || reviewed == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Agreement not found", Err: err}
	}
	dto := dtos.NewAgreementFromModel(*reviewed)
	return &dto, nil
}

func (s *AgreementService) promoteToMember(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.Role != models.RoleUser {
		return nil
	}
	return s.userRepo.UpdateWithRetry(ctx, user.ID, func(u *models.User) error {
		u.Role = models.RoleMember
		return nil
	})
}
