package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/utils"
)

// SentinelApartmentID is used to check if seeding has already occurred.
const SentinelApartmentID = "dddddddd-dddd-4ddd-dddd-ddddddddddd1"

const (
	SeedAdminEmail  = "admin@nivash.app"
	SeedMemberEmail = "member@nivash.app"
)

// SeedAllTestData populates a dev database with browseable apartments,
// a couple of coupons, and admin/member accounts. Idempotent: a
// sentinel apartment marks a previous run.
func SeedAllTestData(
	ctx context.Context,
	apartmentRepo repositories.ApartmentRepository,
	couponRepo repositories.CouponRepository,
	userRepo repositories.UserRepository,
	agreementRepo repositories.AgreementRepository,
) error {
	sentinelID := uuid.MustParse(SentinelApartmentID)

	if existing, err := apartmentRepo.GetByID(ctx, sentinelID); err != nil {
		return fmt.Errorf("failed to check for sentinel apartment: %w", err)
	} else if existing != nil {
		utils.Logger.Info("building-service: Seed data already present; skipping seeding.")
		return nil
	}

	apartments := []models.Apartment{
		{ID: sentinelID, Floor: 1, Block: "A", ApartmentNo: "A-1", RentCents: 90_000},
		{ID: uuid.New(), Floor: 1, Block: "A", ApartmentNo: "A-2", RentCents: 90_000},
		{ID: uuid.New(), Floor: 2, Block: "A", ApartmentNo: "A-3", RentCents: 95_000},
		{ID: uuid.New(), Floor: 2, Block: "B", ApartmentNo: "B-1", RentCents: 110_000},
		{ID: uuid.New(), Floor: 3, Block: "B", ApartmentNo: "B-2", RentCents: 115_000},
		{ID: uuid.New(), Floor: 4, Block: "C", ApartmentNo: "C-1", RentCents: 140_000},
	}
	if err := apartmentRepo.CreateMany(ctx, apartments); err != nil {
		return fmt.Errorf("seed apartments: %w", err)
	}

	coupons := []*models.Coupon{
		{ID: uuid.New(), Code: "WELCOME10", DiscountPercent: 10, Description: "First month welcome discount", Available: true},
		{ID: uuid.New(), Code: "LOYALTY25", DiscountPercent: 25, Description: "Long-term tenant reward", Available: true},
	}
	for _, c := range coupons {
		if err := couponRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("seed coupon %s: %w", c.Code, err)
		}
	}

	admin := &models.User{ID: uuid.New(), Email: SeedAdminEmail, Name: "Seed Admin", Role: models.RoleAdmin}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	member := &models.User{ID: uuid.New(), Email: SeedMemberEmail, Name: "Seed Member", Role: models.RoleMember}
	if err := userRepo.Create(ctx, member); err != nil {
		return fmt.Errorf("seed member: %w", err)
	}

	// The member gets an accepted agreement on the sentinel unit so the
	// payment flow is exercisable out of the box.
	unit := apartments[0]
	accepted := utils.Ptr(time.Now().UTC())
	agreement := &models.Agreement{
		ID:          uuid.New(),
		TenantName:  member.Name,
		TenantEmail: member.Email,
		ApartmentID: unit.ID,
		Floor:       unit.Floor,
		Block:       unit.Block,
		ApartmentNo: unit.ApartmentNo,
		RentCents:   unit.RentCents,
		Status:      models.AgreementStatusChecked,
		RequestedAt: *accepted,
		AcceptedAt:  accepted,
	}
	if err := agreementRepo.Create(ctx, agreement); err != nil {
		return fmt.Errorf("seed agreement: %w", err)
	}

	utils.Logger.Info("building-service: Seeding completed successfully.")
	return nil
}
