package services

import (
	"context"
	"net/http"
	"sync"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

// StatsService backs the admin dashboard. Counts are independent so
// they run concurrently; the first repo error wins.
type StatsService struct {
	userRepo         repositories.UserRepository
	apartmentRepo    repositories.ApartmentRepository
	agreementRepo    repositories.AgreementRepository
	couponRepo       repositories.CouponRepository
	paymentRepo      repositories.PaymentRepository
	announcementRepo repositories.AnnouncementRepository
}

func NewStatsService(
	userRepo repositories.UserRepository,
	apartmentRepo repositories.ApartmentRepository,
	agreementRepo repositories.AgreementRepository,
	couponRepo repositories.CouponRepository,
	paymentRepo repositories.PaymentRepository,
	announcementRepo repositories.AnnouncementRepository,
) *StatsService {
	return &StatsService{
		userRepo:         userRepo,
		apartmentRepo:    apartmentRepo,
		agreementRepo:    agreementRepo,
		couponRepo:       couponRepo,
		paymentRepo:      paymentRepo,
		announcementRepo: announcementRepo,
	}
}

func (s *StatsService) Dashboard(ctx context.Context) (*dtos.StatsResponse, error) {
	var (
		stats    dtos.StatsResponse
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	record := func(dst *int64, count int64, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		*dst = count
	}

	counters := []struct {
		dst   *int64
		fetch func(context.Context) (int64, error)
	}{
		{&stats.Users, func(ctx context.Context) (int64, error) { return s.userRepo.CountByRole(ctx, models.RoleUser) }},
		{&stats.Members, func(ctx context.Context) (int64, error) { return s.userRepo.CountByRole(ctx, models.RoleMember) }},
		{&stats.Apartments, s.apartmentRepo.Count},
		{&stats.Agreements, s.agreementRepo.Count},
		{&stats.Coupons, s.couponRepo.Count},
		{&stats.Payments, s.paymentRepo.Count},
		{&stats.Announcements, s.announcementRepo.Count},
	}

	wg.Add(len(counters))
	for _, c := range counters {
		go func(dst *int64, fetch func(context.Context) (int64, error)) {
			defer wg.Done()
			count, err := fetch(ctx)
			record(dst, count, err)
		}(c.dst, c.fetch)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "Failed to compute dashboard stats", Err: firstErr}
	}
	return &stats, nil
}
