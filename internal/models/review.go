package models

import (
	"time"

	"github.com/google/uuid"
)

// Review описывает отзыв студента о репетиторе по завершённому
// объявлению. На пару (post_id, sender_id) допускается один отзыв.
type Review struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PostID      uuid.UUID `db:"post_id" json:"post_id"`
	SenderID    uuid.UUID `db:"sender_id" json:"sender_id"`
	ReceiverID  uuid.UUID `db:"receiver_id" json:"receiver_id"`
	Stars       int       `db:"stars" json:"stars"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
