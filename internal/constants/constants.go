package constants

import "time"

const (
	OrganizationName = "Nivash"

	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// Billing: rents are charged in USD expressed in minor units (cents).
	Currency = "usd"

	// Coupon expiry sweep schedule (hourly, on the hour).
	CouponExpiryCronSpec   = "0 * * * *"
	CouponExpiryJobTimeout = 2 * time.Minute

	// Payment record descriptor used when Stripe does not report
	// card details on the intent's charge.
	UnknownPaymentMethod = "card"

	PaymentStatusPaid = "paid"
)

// Billing months accepted on intent creation and ledger writes.
var BillingMonths = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// IsBillingMonth reports whether m is a valid month name.
func IsBillingMonth(m string) bool {
	for _, b := range BillingMonths {
		if b == m {
			return true
		}
	}
	return false
}
