package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/utils"
)

func testApartment(rentCents int64) *models.Apartment {
	return &models.Apartment{
		ID:          uuid.New(),
		Floor:       2,
		Block:       "A",
		ApartmentNo: "A-3",
		RentCents:   rentCents,
	}
}

type agreementFixture struct {
	svc        *AgreementService
	agreements *fakeAgreementRepo
	apartments *fakeApartmentRepo
	users      *fakeUserRepo
}

func newAgreementFixture(apartments ...*models.Apartment) *agreementFixture {
	f := &agreementFixture{
		agreements: newFakeAgreementRepo(),
		apartments: newFakeApartmentRepo(apartments...),
		users:      newFakeUserRepo(),
	}
	f.svc = NewAgreementService(f.agreements, f.apartments, f.users)
	return f
}

func TestAgreementRequest_CopiesApartmentSnapshot(t *testing.T) {
	apartment := testApartment(95_000)
	f := newAgreementFixture(apartment)

	agreement, err := f.svc.Request(context.Background(), testTenantEmail, testTenantName, dtos.CreateAgreementRequest{
		ApartmentID: apartment.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.AgreementStatusPending, agreement.Status)
	assert.Equal(t, "A-3", agreement.ApartmentNo)
	assert.Equal(t, int64(95_000), agreement.RentCents)
	assert.Equal(t, testTenantEmail, agreement.TenantEmail)
}

func TestAgreementRequest_SecondOpenRequestConflicts(t *testing.T) {
	apartment := testApartment(95_000)
	f := newAgreementFixture(apartment)

	req := dtos.CreateAgreementRequest{ApartmentID: apartment.ID.String()}
	_, err := f.svc.Request(context.Background(), testTenantEmail, testTenantName, req)
	require.NoError(t, err)

	_, err = f.svc.Request(context.Background(), testTenantEmail, testTenantName, req)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
}

func TestAgreementRequest_UnknownApartment(t *testing.T) {
	f := newAgreementFixture()

	_, err := f.svc.Request(context.Background(), testTenantEmail, testTenantName, dtos.CreateAgreementRequest{
		ApartmentID: uuid.NewString(),
	})
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestAgreementReview_AcceptPromotesTenant(t *testing.T) {
	apartment := testApartment(95_000)
	f := newAgreementFixture(apartment)
	tenant := &models.User{ID: uuid.New(), Email: testTenantEmail, Name: testTenantName, Role: models.RoleUser}
	require.NoError(t, f.users.Create(context.Background(), tenant))

	created, err := f.svc.Request(context.Background(), testTenantEmail, testTenantName, dtos.CreateAgreementRequest{
		ApartmentID: apartment.ID.String(),
	})
	require.NoError(t, err)

	id := uuid.MustParse(created.ID)
	reviewed, err := f.svc.Review(context.Background(), id, true)
	require.NoError(t, err)

	assert.Equal(t, models.AgreementStatusChecked, reviewed.Status)
	assert.NotNil(t, reviewed.AcceptedAt)
	assert.Equal(t, models.RoleMember, tenant.Role)
}

func TestAgreementReview_RejectLeavesRoleAlone(t *testing.T) {
	apartment := testApartment(95_000)
	f := newAgreementFixture(apartment)
	tenant := &models.User{ID: uuid.New(), Email: testTenantEmail, Name: testTenantName, Role: models.RoleUser}
	require.NoError(t, f.users.Create(context.Background(), tenant))

	created, err := f.svc.Request(context.Background(), testTenantEmail, testTenantName, dtos.CreateAgreementRequest{
		ApartmentID: apartment.ID.String(),
	})
	require.NoError(t, err)

	reviewed, err := f.svc.Review(context.Background(), uuid.MustParse(created.ID), false)
	require.NoError(t, err)

	assert.Equal(t, models.AgreementStatusRejected, reviewed.Status)
	assert.Nil(t, reviewed.AcceptedAt)
	assert.Equal(t, models.RoleUser, tenant.Role)
}

func TestAgreementReview_AlreadyReviewedConflicts(t *testing.T) {
	apartment := testApartment(95_000)
	f := newAgreementFixture(apartment)

	created, err := f.svc.Request(context.Background(), testTenantEmail, testTenantName, dtos.CreateAgreementRequest{
		ApartmentID: apartment.ID.String(),
	})
	require.NoError(t, err)

	id := uuid.MustParse(created.ID)
	_, err = f.svc.Review(context.Background(), id, true)
	require.NoError(t, err)

	_, err = f.svc.Review(context.Background(), id, false)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
}

func TestAgreementActive_NotFoundWithoutAcceptance(t *testing.T) {
	f := newAgreementFixture()

	_, err := f.svc.Active(context.Background(), testTenantEmail)
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}
