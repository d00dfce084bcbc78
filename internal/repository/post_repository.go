package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/tutoring-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrStaleStatus  = errors.New("post status changed concurrently")
)

// PostRepository отвечает за работу с объявлениями.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository создаёт новый экземпляр.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create сохраняет объявление в статусе OPEN.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, subject_id, title, description, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		post.AuthorID, post.SubjectID, post.Title, post.Description, post.ImageURL, post.Status,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
}

// GetByID возвращает объявление по идентификатору.
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	query := `
		SELECT id, author_id, subject_id, title, description, image_url, status, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("post repository: get by id %w", err)
	}
	return &post, nil
}

// List возвращает страницу объявлений с фильтрами по статусу, предмету и автору.
func (r *PostRepository) List(ctx context.Context, status, subjectID string, authorID *uuid.UUID, limit, offset int) ([]models.Post, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, status)
		idx++
	}
	if subjectID != "" {
		where += fmt.Sprintf(" AND subject_id = $%d", idx)
		args = append(args, subjectID)
		idx++
	}
	if authorID != nil {
		where += fmt.Sprintf(" AND author_id = $%d", idx)
		args = append(args, *authorID)
		idx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM posts " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("post repository: count %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT p.id, p.author_id, p.subject_id, p.title, p.description, p.image_url, p.status, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM bids b WHERE b.post_id = p.id) AS bids_count
		FROM posts p
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, idx, idx+1)
	args = append(args, limit, offset)

	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("post repository: list %w", err)
	}
	return posts, total, nil
}

// Update обновляет редактируемые автором поля объявления.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET subject_id = $2, title = $3, description = $4, image_url = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.ID, post.SubjectID, post.Title, post.Description, post.ImageURL,
	).Scan(&post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPostNotFound
	}
	return err
}

// TransitionStatus переводит объявление из fromStatus в toStatus.
// Условие по текущему статусу в WHERE защищает от конкурентного перехода:
// если статус уже изменился, обновление не затронет ни одной строки.
func (r *PostRepository) TransitionStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error {
	return transitionPostStatus(ctx, r.db, id, fromStatus, toStatus)
}

// TransitionStatusTx — то же самое внутри внешней транзакции.
func (r *PostRepository) TransitionStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, fromStatus, toStatus string) error {
	return transitionPostStatus(ctx, tx, id, fromStatus, toStatus)
}

func transitionPostStatus(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID, fromStatus, toStatus string) error {
	res, err := ext.ExecContext(ctx, `
		UPDATE posts SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2
	`, id, fromStatus, toStatus)
	if err != nil {
		return fmt.Errorf("post repository: transition status %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("post repository: transition status %w", err)
	}
	if affected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// GetStats возвращает количество объявлений по статусам.
func (r *PostRepository) GetStats(ctx context.Context) (*models.PostStats, error) {
	var stats models.PostStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'OPEN') AS open,
			COUNT(*) FILTER (WHERE status = 'REPORTED') AS reported,
			COUNT(*) FILTER (WHERE status = 'SOLVED') AS solved,
			COUNT(*) FILTER (WHERE status = 'CLOSED') AS closed
		FROM posts
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("post repository: stats %w", err)
	}
	return &stats, nil
}
