package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionApplyRemoveRoundTrip(t *testing.T) {
	s := NewSession(1000000)
	require.Equal(t, int64(1000000), s.FinalCents())

	require.NoError(t, s.ApplyCoupon(AppliedCoupon{Code: "SAVE20", DiscountPercent: 20}))
	assert.Equal(t, int64(800000), s.FinalCents())
	assert.Equal(t, int64(200000), s.DiscountCents())

	// Removing must restore the base rent exactly.
	require.NoError(t, s.RemoveCoupon())
	assert.Equal(t, int64(1000000), s.FinalCents())
	assert.Nil(t, s.Coupon())
	assert.Equal(t, 0, s.DiscountPercent())
}

func TestSessionReplaceNotCompound(t *testing.T) {
	s := NewSession(1000000)
	require.NoError(t, s.ApplyCoupon(AppliedCoupon{Code: "SAVE10", DiscountPercent: 10}))
	require.NoError(t, s.ApplyCoupon(AppliedCoupon{Code: "SAVE20", DiscountPercent: 20}))

	// 20% only, not 28% or 30%.
	assert.Equal(t, int64(800000), s.FinalCents())
	assert.Equal(t, "SAVE20", s.Coupon().Code)
}

func TestSessionRejectsOutOfRangePercent(t *testing.T) {
	s := NewSession(1000000)
	assert.Error(t, s.ApplyCoupon(AppliedCoupon{Code: "BAD", DiscountPercent: 0}))
	assert.Error(t, s.ApplyCoupon(AppliedCoupon{Code: "BAD", DiscountPercent: 101}))
	assert.Equal(t, int64(1000000), s.FinalCents())
}

func TestSessionHappyPath(t *testing.T) {
	s := NewSession(850000)
	require.NoError(t, s.Begin())
	assert.Equal(t, StateCreatingIntent, s.State())

	require.NoError(t, s.Advance())
	assert.Equal(t, StateConfirming, s.State())

	require.NoError(t, s.Advance())
	assert.Equal(t, StatePersisting, s.State())

	require.NoError(t, s.Advance())
	assert.Equal(t, StateSucceeded, s.State())

	// Terminal: no further transitions.
	assert.Error(t, s.Advance())
	assert.Error(t, s.Begin())
}

func TestSessionReentrancyGuard(t *testing.T) {
	s := NewSession(1000000)
	require.NoError(t, s.Begin())

	// Double submission is rejected by state, not by a flag.
	assert.ErrorIs(t, s.Begin(), ErrNotIdle)

	// Coupon mutation is frozen while a charge is in flight.
	assert.ErrorIs(t, s.ApplyCoupon(AppliedCoupon{Code: "SAVE10", DiscountPercent: 10}), ErrNotIdle)
	assert.ErrorIs(t, s.RemoveCoupon(), ErrNotIdle)
}

func TestSessionFailure(t *testing.T) {
	s := NewSession(1000000)
	require.NoError(t, s.Begin())
	require.NoError(t, s.Fail("card declined"))

	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, "card declined", s.FailureReason())

	// Failed sessions stay failed; a new attempt needs a new session.
	assert.Error(t, s.Begin())
	assert.Error(t, s.Advance())
	assert.Error(t, s.Fail("again"))
}

func TestSessionFailFromIdleInvalid(t *testing.T) {
	s := NewSession(1000000)
	assert.ErrorIs(t, s.Fail("nothing started"), ErrInvalidTransition)
}
