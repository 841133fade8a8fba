package dtos

// StatsResponse aggregates the admin dashboard counts. The counts are
// fetched concurrently; there is no ordering dependency between them.
type StatsResponse struct {
	Users         int64 `json:"users"`
	Members       int64 `json:"members"`
	Apartments    int64 `json:"apartments"`
	Agreements    int64 `json:"agreements"`
	Coupons       int64 `json:"coupons"`
	Payments      int64 `json:"payments"`
	Announcements int64 `json:"announcements"`
}
