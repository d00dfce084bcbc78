package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/tutoring-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository хранит локальную проекцию принципалов identity-сервиса.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт новый экземпляр.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert фиксирует принципала из токена. Роль перезаписывается: источником
// истины остаётся identity-сервис.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, role)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET role = $2, updated_at = NOW()
	`, user.ID, user.Role)
	if err != nil {
		return fmt.Errorf("user repository: upsert %w", err)
	}
	return nil
}

// GetByID возвращает проекцию пользователя.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// GetStats возвращает количество пользователей по ролям.
func (r *UserRepository) GetStats(ctx context.Context) (*models.UserStats, error) {
	var stats models.UserStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE role = 'USER') AS users,
			COUNT(*) FILTER (WHERE role = 'TUTOR') AS tutors,
			COUNT(*) FILTER (WHERE role = 'ADMIN') AS admins
		FROM users
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("user repository: stats %w", err)
	}
	return &stats, nil
}
