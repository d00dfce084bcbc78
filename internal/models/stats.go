package models

// UserStats — количество пользователей по ролям.
type UserStats struct {
	Total  int `db:"total" json:"total"`
	Users  int `db:"users" json:"users"`
	Tutors int `db:"tutors" json:"tutors"`
	Admins int `db:"admins" json:"admins"`
}

// PostStats — количество объявлений по статусам.
type PostStats struct {
	Total    int `db:"total" json:"total"`
	Open     int `db:"open" json:"open"`
	Reported int `db:"reported" json:"reported"`
	Solved   int `db:"solved" json:"solved"`
	Closed   int `db:"closed" json:"closed"`
}

// BidStats — количество откликов по статусам.
type BidStats struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Accepted int `db:"accepted" json:"accepted"`
	Rejected int `db:"rejected" json:"rejected"`
}

// RoomStats — количество комнат по статусам.
type RoomStats struct {
	Total          int `db:"total" json:"total"`
	InProgress     int `db:"in_progress" json:"in_progress"`
	Submitted      int `db:"submitted" json:"submitted"`
	Confirmed      int `db:"confirmed" json:"confirmed"`
	ResolvedNormal int `db:"resolved_normal" json:"resolved_normal"`
	ResolvedRefund int `db:"resolved_refund" json:"resolved_refund"`
}

// ReportStats — количество жалоб по статусам.
type ReportStats struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Reviewed int `db:"reviewed" json:"reviewed"`
	Resolved int `db:"resolved" json:"resolved"`
	Rejected int `db:"rejected" json:"rejected"`
}

// DashboardStats объединяет все сводки для дашборда.
type DashboardStats struct {
	Users   UserStats   `json:"users"`
	Posts   PostStats   `json:"posts"`
	Bids    BidStats    `json:"bids"`
	Rooms   RoomStats   `json:"rooms"`
	Reports ReportStats `json:"reports"`
}
