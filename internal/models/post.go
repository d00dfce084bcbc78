package models

import (
	"time"

	"github.com/google/uuid"
)

// Post описывает запрос студента на помощь с предметом.
type Post struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AuthorID    uuid.UUID `db:"author_id" json:"author_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	BidsCount   *int      `db:"bids_count" json:"bids_count,omitempty"`
}

// Subject описывает предмет из справочника.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subjects — статический справочник предметов. Объявление можно создать
// только с предметом из этого списка.
var Subjects = []Subject{
	{ID: "math", Name: "Математика"},
	{ID: "physics", Name: "Физика"},
	{ID: "chemistry", Name: "Химия"},
	{ID: "biology", Name: "Биология"},
	{ID: "informatics", Name: "Информатика"},
	{ID: "english", Name: "Английский язык"},
	{ID: "russian", Name: "Русский язык"},
	{ID: "history", Name: "История"},
	{ID: "economics", Name: "Экономика"},
	{ID: "other", Name: "Другое"},
}

// IsKnownSubject проверяет предмет по справочнику.
func IsKnownSubject(id string) bool {
	for _, s := range Subjects {
		if s.ID == id {
			return true
		}
	}
	return false
}
