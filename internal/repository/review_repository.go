package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/repository/common"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this post and sender")
)

// ReviewRepository отвечает за отзывы.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository создаёт новый экземпляр.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create создаёт отзыв. Уникальность (post_id, sender_id) обеспечивает
// ограничение в базе, а не check-then-insert.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (post_id, sender_id, receiver_id, stars, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.PostID, review.SenderID, review.ReceiverID, review.Stars, review.Description,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if common.IsUniqueViolation(err) {
		return ErrDuplicateReview
	}
	return err
}

// GetByID возвращает отзыв по ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return common.GetByID[models.Review](ctx, r.db, "reviews", id, ErrReviewNotFound)
}

// GetByPost возвращает отзыв по объявлению, nil если его нет.
func (r *ReviewRepository) GetByPost(ctx context.Context, postID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review, `SELECT * FROM reviews WHERE post_id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("review repository: get by post %w", err)
	}
	return &review, nil
}

// ListBySender возвращает страницу отзывов, оставленных пользователем.
func (r *ReviewRepository) ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	return r.listByField(ctx, "sender_id", senderID, limit, offset)
}

// ListByReceiver возвращает страницу отзывов о репетиторе.
func (r *ReviewRepository) ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	return r.listByField(ctx, "receiver_id", receiverID, limit, offset)
}

func (r *ReviewRepository) listByField(ctx context.Context, field string, userID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM reviews WHERE %s = $1`, field)
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("review repository: count by %s %w", field, err)
	}

	var reviews []models.Review
	listQuery := fmt.Sprintf(`
		SELECT * FROM reviews WHERE %s = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, field)
	if err := r.db.SelectContext(ctx, &reviews, listQuery, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("review repository: list by %s %w", field, err)
	}
	return reviews, total, nil
}

// GetAverageStars возвращает средний рейтинг репетитора.
func (r *ReviewRepository) GetAverageStars(ctx context.Context, tutorID uuid.UUID) (float64, int, error) {
	var result struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int             `db:"count"`
	}
	err := r.db.GetContext(ctx, &result, `
		SELECT COALESCE(AVG(stars), 0) AS avg, COUNT(*) AS count FROM reviews WHERE receiver_id = $1
	`, tutorID)
	if err != nil {
		return 0, 0, fmt.Errorf("review repository: get average stars %w", err)
	}
	return result.Avg.Float64, result.Count, nil
}

// Update обновляет отзыв.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.QueryRowxContext(ctx, `
		UPDATE reviews SET stars = $2, description = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at
	`, review.ID, review.Stars, review.Description).Scan(&review.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReviewNotFound
	}
	return err
}

// Delete удаляет отзыв.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return err
}
