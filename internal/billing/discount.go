package billing

// All amounts are integer cents. Discounts are rounded to the nearest
// cent (half away from zero) so the ledger identity
// final == rent - discount always holds exactly.

// DiscountCents computes the cent value of a percentage discount.
// Percent outside [0,100] is clamped; callers validate ranges upstream,
// clamping just keeps the ledger arithmetic self-consistent.
func DiscountCents(rentCents int64, percent int) int64 {
	if percent <= 0 || rentCents <= 0 {
		return 0
	}
	if percent >= 100 {
		return rentCents
	}
	return (rentCents*int64(percent) + 50) / 100
}

// ComputeFinalAmount returns rent minus the rounded discount.
// ComputeFinalAmount(rent, 0) == rent.
func ComputeFinalAmount(rentCents int64, percent int) int64 {
	return rentCents - DiscountCents(rentCents, percent)
}
