package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid представляет отклик репетитора на объявление.
// ProposedPrice хранится в минорных единицах валюты.
type Bid struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PostID        uuid.UUID `db:"post_id" json:"post_id"`
	TutorID       uuid.UUID `db:"tutor_id" json:"tutor_id"`
	ProposedPrice int64     `db:"proposed_price" json:"proposed_price"`
	QuestionLevel string    `db:"question_level" json:"question_level"`
	Description   string    `db:"description" json:"description"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
