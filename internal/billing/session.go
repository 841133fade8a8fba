package billing

import (
	"errors"
	"fmt"
)

// State is the lifecycle of one payment attempt. Only StateIdle accepts
// a new submission, so re-entrancy is guarded by the state itself rather
// than a boolean flag.
type State int

const (
	StateIdle State = iota
	StateCreatingIntent
	StateConfirming
	StatePersisting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreatingIntent:
		return "creating_intent"
	case StateConfirming:
		return "confirming"
	case StatePersisting:
		return "persisting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrNotIdle           = errors.New("payment already in progress")
	ErrInvalidTransition = errors.New("invalid payment state transition")
)

// AppliedCoupon is the discount metadata held for the duration of a
// payment session and copied onto the ledger entry.
type AppliedCoupon struct {
	Code            string
	DiscountPercent int
	Description     string
}

// Session holds the three pieces of payment-session state: the fixed
// base rent, the nullable applied coupon, and the derived final amount.
// The final amount is recomputed on every apply/remove; applying a
// second coupon replaces the first, it never compounds.
type Session struct {
	baseRentCents int64
	coupon        *AppliedCoupon
	state         State
	failureReason string
}

// NewSession starts an idle session for one billing-period selection.
func NewSession(baseRentCents int64) *Session {
	return &Session{baseRentCents: baseRentCents, state: StateIdle}
}

// ApplyCoupon sets (or replaces) the active coupon. Only allowed while
// idle; a charge in flight keeps its quoted amount.
func (s *Session) ApplyCoupon(c AppliedCoupon) error {
	if s.state != StateIdle {
		return ErrNotIdle
	}
	if c.DiscountPercent < 1 || c.DiscountPercent > 100 {
		return fmt.Errorf("discount percent %d out of range [1,100]", c.DiscountPercent)
	}
	s.coupon = &c
	return nil
}

// RemoveCoupon clears the coupon, restoring the final amount to the
// base rent exactly. Pure state reset.
func (s *Session) RemoveCoupon() error {
	if s.state != StateIdle {
		return ErrNotIdle
	}
	s.coupon = nil
	return nil
}

func (s *Session) BaseRentCents() int64 { return s.baseRentCents }

func (s *Session) Coupon() *AppliedCoupon { return s.coupon }

func (s *Session) DiscountPercent() int {
	if s.coupon == nil {
		return 0
	}
	return s.coupon.DiscountPercent
}

func (s *Session) DiscountCents() int64 {
	return DiscountCents(s.baseRentCents, s.DiscountPercent())
}

// FinalCents is the derived payable amount.
func (s *Session) FinalCents() int64 {
	return ComputeFinalAmount(s.baseRentCents, s.DiscountPercent())
}

func (s *Session) State() State { return s.state }

func (s *Session) FailureReason() string { return s.failureReason }

// Begin moves Idle → CreatingIntent. Any other starting state is a
// duplicate submission.
func (s *Session) Begin() error {
	if s.state != StateIdle {
		return ErrNotIdle
	}
	s.state = StateCreatingIntent
	return nil
}

// Advance walks the happy path one step at a time.
func (s *Session) Advance() error {
	switch s.state {
	case StateCreatingIntent:
		s.state = StateConfirming
	case StateConfirming:
		s.state = StatePersisting
	case StatePersisting:
		s.state = StateSucceeded
	default:
		return fmt.Errorf("%w: advance from %s", ErrInvalidTransition, s.state)
	}
	return nil
}

// Fail terminates the attempt from any in-flight state. The session
// does not return to Idle: every failure requires a fresh session
// (the tenant re-initiates payment from scratch).
func (s *Session) Fail(reason string) error {
	switch s.state {
	case StateCreatingIntent, StateConfirming, StatePersisting:
		s.state = StateFailed
		s.failureReason = reason
		return nil
	default:
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, s.state)
	}
}
