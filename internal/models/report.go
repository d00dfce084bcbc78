package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportStatusPending  = "PENDING"
	ReportStatusReviewed = "REVIEWED"
	ReportStatusResolved = "RESOLVED"
	ReportStatusRejected = "REJECTED"
)

// ValidReportStatuses список валидных статусов жалоб
var ValidReportStatuses = map[string]struct{}{
	ReportStatusPending:  {},
	ReportStatusReviewed: {},
	ReportStatusResolved: {},
	ReportStatusRejected: {},
}

// Report описывает жалобу участника на активную комнату.
// ChatRoomID фиксируется в момент создания жалобы и больше не меняется;
// обнуляется базой, если комната физически удалена.
type Report struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PostID       uuid.UUID  `db:"post_id" json:"post_id"`
	ChatRoomID   *uuid.UUID `db:"chat_room_id" json:"chat_room_id,omitempty"`
	SenderID     uuid.UUID  `db:"sender_id" json:"sender_id"`
	ReceiverID   *uuid.UUID `db:"receiver_id" json:"receiver_id,omitempty"`
	Detail       string     `db:"detail" json:"detail"`
	ReportStatus string     `db:"report_status" json:"report_status"`
	ReviewedBy   *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
