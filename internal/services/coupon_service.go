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

// Rejection messages surfaced to tenants. The underlying reason
// (unknown, disabled, expired) stays opaque to the caller beyond these.
const (
	couponMsgUnknown     = "Invalid coupon code"
	couponMsgUnavailable = "This coupon is no longer available"
	couponMsgExpired     = "This coupon has expired"
)

type CouponService struct {
	repo repositories.CouponRepository
	now  func() time.Time
}

func NewCouponService(repo repositories.CouponRepository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

// Validate resolves a tenant-supplied code to a validation result. The
// code is normalized (trimmed, uppercased) before lookup so entry is
// case-insensitive. Validation never mutates persisted state.
func (s *CouponService) Validate(ctx context.Context, code string) (*dtos.CouponValidationResult, error) {
	normalized := utils.NormalizeCouponCode(code)
	if normalized == "" {
		return &dtos.CouponValidationResult{Valid: false, Message: couponMsgUnknown}, nil
	}

	coupon, err := s.repo.GetByCode(ctx, normalized)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up coupon", Err: err}
	}
	if coupon == nil {
		return &dtos.CouponValidationResult{Valid: false, Message: couponMsgUnknown}, nil
	}
	if coupon.Expired(s.now()) {
		return &dtos.CouponValidationResult{Valid: false, Message: couponMsgExpired}, nil
	}
	if !coupon.Available {
		return &dtos.CouponValidationResult{Valid: false, Message: couponMsgUnavailable}, nil
	}

	dto := dtos.NewCouponFromModel(*coupon)
	return &dtos.CouponValidationResult{Valid: true, Coupon: &dto}, nil
}

func (s *CouponService) List(ctx context.Context) ([]dtos.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list coupons", Err: err}
	}
	out := make([]dtos.Coupon, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, dtos.NewCouponFromModel(*c))
	}
	return out, nil
}

func (s *CouponService) ListAvailable(ctx context.Context) ([]dtos.Coupon, error) {
	coupons, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to list coupons", Err: err}
	}
	out := make([]dtos.Coupon, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, dtos.NewCouponFromModel(*c))
	}
	return out, nil
}

func (s *CouponService) Create(ctx context.Context, req dtos.CreateCouponRequest) (*dtos.Coupon, error) {
	code := utils.NormalizeCouponCode(req.Code)

	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to look up coupon", Err: err}
	}
	if existing != nil {
		return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Coupon code already exists"}
	}

	coupon := &models.Coupon{
		ID:              uuid.New(),
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		Description:     req.Description,
		Available:       req.Available,
		ExpiresAt:       req.ExpiresAt,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		// Covers a race with the lookup above; the unique index decides.
		if errors.Is(err, utils.ErrCouponCodeExists) {
			return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeConflict, Message: "Coupon code already exists", Err: err}
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to create coupon", Err: err}
	}

	dto := dtos.NewCouponFromModel(*coupon)
	return &dto, nil
}

func (s *CouponService) Update(ctx context.Context, req dtos.UpdateCouponRequest) (*dtos.Coupon, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid coupon id", Err: err}
	}

	err = s.repo.UpdateWithRetry(ctx, id, func(c *models.Coupon) error {
		c.DiscountPercent = req.DiscountPercent
		c.Description = req.Description
		c.Available = req.Available
		c.ExpiresAt = req.ExpiresAt
		return nil
	})
	if err != nil {
		if errors.Is(err, utils.ErrRowVersionConflict) {
			return nil, &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeRowVersionConflict, Message: "Coupon was modified concurrently, retry the update", Err: err}
		}
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to update coupon", Err: err}
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil || updated == nil {
		return nil, &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: "Coupon not found", Err: err}
	}
	dto := dtos.NewCouponFromModel(*updated)
	return &dto, nil
}

func (s *CouponService) Delete(ctx context.Context, req dtos.DeleteCouponRequest) error {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeInvalidPayload, Message: "Invalid coupon id", Err: err}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to delete coupon", Err: err}
	}
	return nil
}

// DisableExpired is the hourly sweep body: any available coupon past
// its expiry is flipped off so validation stops accepting it.
func (s *CouponService) DisableExpired(ctx context.Context) error {
	n, err := s.repo.DisableExpired(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		utils.Logger.Infof("Disabled %d expired coupon(s)", n)
	}
	return nil
}
