package routes

const (
	Health = "/health"

	Apartments = "/api/v1/apartments"

	UsersMe = "/api/v1/users/me"

	Announcements = "/api/v1/announcements"

	Coupons        = "/api/v1/coupons"
	CouponValidate = "/api/v1/coupons/validate/{code}"

	Agreements      = "/api/v1/agreements"
	AgreementActive = "/api/v1/agreements/active"

	Payments      = "/api/v1/payments"
	PaymentIntent = "/api/v1/payments/intent"

	AdminAgreements       = "/api/v1/admin/agreements"
	AdminAgreementByID    = "/api/v1/admin/agreements/{id}"
	AdminCoupons          = "/api/v1/admin/coupons"
	AdminAnnouncements    = "/api/v1/admin/announcements"
	AdminAnnouncementByID = "/api/v1/admin/announcements/{id}"
	AdminMembers          = "/api/v1/admin/members"
	AdminMemberByEmail    = "/api/v1/admin/members/{email}"
	AdminAdminByEmail     = "/api/v1/admin/admins/{email}"
	AdminStats            = "/api/v1/admin/stats"
)
