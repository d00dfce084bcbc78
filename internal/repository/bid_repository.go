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
	ErrBidNotFound       = errors.New("bid not found")
	ErrBidNotPending     = errors.New("bid is not pending")
	ErrPostHasAccepted   = errors.New("post already has an accepted bid")
	ErrPostNotOpen       = errors.New("post is not open")
	ErrDuplicateBid      = errors.New("tutor already has a bid on this post")
)

// BidRepository отвечает за работу с откликами.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository создаёт новый экземпляр.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create сохраняет отклик. Статус объявления проверяется внутри транзакции
// под блокировкой строки, чтобы отклик не проскочил в момент закрытия.
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var postStatus string
		err := tx.GetContext(ctx, &postStatus, `SELECT status FROM posts WHERE id = $1 FOR UPDATE`, bid.PostID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("bid repository: lock post %w", err)
		}
		if postStatus != models.PostStatusOpen {
			return ErrPostNotOpen
		}

		query := `
			INSERT INTO bids (post_id, tutor_id, proposed_price, question_level, description, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`
		err = tx.QueryRowxContext(ctx, query,
			bid.PostID, bid.TutorID, bid.ProposedPrice, bid.QuestionLevel, bid.Description, bid.Status,
		).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)
		if common.IsUniqueViolation(err) {
			return ErrDuplicateBid
		}
		return err
	})
}

// GetByID возвращает отклик по идентификатору.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return common.GetByID[models.Bid](ctx, r.db, "bids", id, ErrBidNotFound)
}

// ListByPost возвращает все отклики по объявлению.
func (r *BidRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.SelectContext(ctx, &bids, `
		SELECT * FROM bids WHERE post_id = $1 ORDER BY created_at
	`, postID)
	return bids, err
}

// ListByTutor возвращает страницу откликов репетитора.
func (r *BidRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID, limit, offset int) ([]models.Bid, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bids WHERE tutor_id = $1`, tutorID); err != nil {
		return nil, 0, fmt.Errorf("bid repository: count by tutor %w", err)
	}

	var bids []models.Bid
	err := r.db.SelectContext(ctx, &bids, `
		SELECT * FROM bids WHERE tutor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, tutorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("bid repository: list by tutor %w", err)
	}
	return bids, total, nil
}

// Accept атомарно принимает отклик: блокирует строку объявления, проверяет,
// что принятых откликов ещё нет, переводит целевой отклик в ACCEPTED,
// остальные PENDING — в REJECTED, и создаёт комнату через upsert по
// (post_id, bid_id). Повторный вызов с тем же ключом комнату не дублирует.
// Конкурирующие принятия сериализуются на блокировке: проигравший получает
// ErrPostHasAccepted.
func (r *BidRepository) Accept(ctx context.Context, postID, bidID uuid.UUID) (*models.Bid, *models.Room, error) {
	var accepted models.Bid
	var room models.Room

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var post models.Post
		err := tx.GetContext(ctx, &post, `
			SELECT id, author_id, subject_id, title, description, image_url, status, created_at, updated_at
			FROM posts WHERE id = $1 FOR UPDATE
		`, postID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("bid repository: lock post %w", err)
		}

		var acceptedCount int
		if err := tx.GetContext(ctx, &acceptedCount, `
			SELECT COUNT(*) FROM bids WHERE post_id = $1 AND status = $2
		`, postID, models.BidStatusAccepted); err != nil {
			return fmt.Errorf("bid repository: count accepted %w", err)
		}
		if acceptedCount > 0 {
			return ErrPostHasAccepted
		}

		err = tx.GetContext(ctx, &accepted, `SELECT * FROM bids WHERE id = $1 AND post_id = $2`, bidID, postID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBidNotFound
		}
		if err != nil {
			return fmt.Errorf("bid repository: get bid %w", err)
		}
		if accepted.Status != models.BidStatusPending {
			return ErrBidNotPending
		}

		if err := tx.QueryRowxContext(ctx, `
			UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at
		`, bidID, models.BidStatusAccepted).Scan(&accepted.UpdatedAt); err != nil {
			return fmt.Errorf("bid repository: accept bid %w", err)
		}
		accepted.Status = models.BidStatusAccepted

		if _, err := tx.ExecContext(ctx, `
			UPDATE bids SET status = $3, updated_at = NOW() WHERE post_id = $1 AND id <> $2 AND status = $4
		`, postID, bidID, models.BidStatusRejected, models.BidStatusPending); err != nil {
			return fmt.Errorf("bid repository: reject siblings %w", err)
		}

		return upsertRoom(ctx, tx, &room, postID, bidID, post.AuthorID, accepted.TutorID)
	})
	if err != nil {
		return nil, nil, err
	}
	return &accepted, &room, nil
}

// Withdraw удаляет PENDING отклик его владельца.
func (r *BidRepository) Withdraw(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM bids WHERE id = $1 AND status = $2
	`, id, models.BidStatusPending)
	if err != nil {
		return fmt.Errorf("bid repository: withdraw %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bid repository: withdraw %w", err)
	}
	if affected == 0 {
		return ErrBidNotPending
	}
	return nil
}

// GetStats возвращает количество откликов по статусам.
func (r *BidRepository) GetStats(ctx context.Context) (*models.BidStats, error) {
	var stats models.BidStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
			COUNT(*) FILTER (WHERE status = 'ACCEPTED') AS accepted,
			COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected
		FROM bids
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("bid repository: stats %w", err)
	}
	return &stats, nil
}
