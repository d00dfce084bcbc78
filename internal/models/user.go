package models

import (
	"time"

	"github.com/google/uuid"
)

// User — локальная проекция принципала из identity-сервиса.
// Запись обновляется при каждом аутентифицированном запросе и нужна
// только для статистики и отображения участников.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
