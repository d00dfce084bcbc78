package models

import (
	"time"

	"github.com/google/uuid"
)

// Room описывает чат между студентом и репетитором, привязанный
// к принятому отклику. На пару (post_id, bid_id) существует ровно
// одна комната.
type Room struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PostID    uuid.UUID `db:"post_id" json:"post_id"`
	BidID     uuid.UUID `db:"bid_id" json:"bid_id"`
	StudentID uuid.UUID `db:"student_id" json:"student_id"`
	TutorID   uuid.UUID `db:"tutor_id" json:"tutor_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasParticipant проверяет, является ли пользователь участником комнаты.
func (r *Room) HasParticipant(userID uuid.UUID) bool {
	return r.StudentID == userID || r.TutorID == userID
}

// Message описывает сообщение в комнате. Seq — монотонно растущий
// номер сообщения внутри комнаты, задаёт порядок ленты.
type Message struct {
	ID            uuid.UUID `db:"id" json:"id"`
	RoomID        uuid.UUID `db:"room_id" json:"room_id"`
	SenderID      uuid.UUID `db:"sender_id" json:"sender_id"`
	Seq           int64     `db:"seq" json:"seq"`
	Content       string    `db:"content" json:"content"`
	AttachmentURL *string   `db:"attachment_url" json:"attachment_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
