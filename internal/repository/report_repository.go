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

var ErrReportNotFound = errors.New("report not found")

// ReportRepository отвечает за жалобы и их резолюцию.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт новый экземпляр.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateWithPostTransition сохраняет жалобу и переводит объявление в
// REPORTED одной транзакцией. Если объявление уже в REPORTED (повторная
// жалоба), переход пропускается.
func (r *ReportRepository) CreateWithPostTransition(ctx context.Context, report *models.Report) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var postStatus string
		err := tx.GetContext(ctx, &postStatus, `SELECT status FROM posts WHERE id = $1 FOR UPDATE`, report.PostID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("report repository: lock post %w", err)
		}

		if postStatus == models.PostStatusOpen {
			if _, err := tx.ExecContext(ctx, `
				UPDATE posts SET status = $2, updated_at = NOW() WHERE id = $1
			`, report.PostID, models.PostStatusReported); err != nil {
				return fmt.Errorf("report repository: transition post %w", err)
			}
		}

		query := `
			INSERT INTO reports (post_id, chat_room_id, sender_id, receiver_id, detail, report_status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`
		return tx.QueryRowxContext(ctx, query,
			report.PostID, report.ChatRoomID, report.SenderID, report.ReceiverID, report.Detail, report.ReportStatus,
		).Scan(&report.ID, &report.CreatedAt)
	})
}

// GetByID возвращает жалобу по идентификатору.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return common.GetByID[models.Report](ctx, r.db, "reports", id, ErrReportNotFound)
}

// ListBySender возвращает страницу жалоб, поданных пользователем.
func (r *ReportRepository) ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Report, int, error) {
	return r.listByField(ctx, "sender_id", senderID, limit, offset)
}

// ListByReceiver возвращает страницу жалоб на пользователя.
func (r *ReportRepository) ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Report, int, error) {
	return r.listByField(ctx, "receiver_id", receiverID, limit, offset)
}

func (r *ReportRepository) listByField(ctx context.Context, field string, userID uuid.UUID, limit, offset int) ([]models.Report, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM reports WHERE %s = $1`, field)
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("report repository: count by %s %w", field, err)
	}

	var reports []models.Report
	listQuery := fmt.Sprintf(`
		SELECT * FROM reports WHERE %s = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, field)
	if err := r.db.SelectContext(ctx, &reports, listQuery, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("report repository: list by %s %w", field, err)
	}
	return reports, total, nil
}

// ListAll возвращает страницу всех жалоб (для админа).
func (r *ReportRepository) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Report, int, error) {
	where := ""
	args := []interface{}{}
	idx := 1
	if status != "" {
		where = fmt.Sprintf("WHERE report_status = $%d", idx)
		args = append(args, status)
		idx++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("report repository: count all %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT * FROM reports %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d
	`, where, idx, idx+1)
	args = append(args, limit, offset)

	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("report repository: list all %w", err)
	}
	return reports, total, nil
}

// MarkReviewed переводит PENDING жалобу в REVIEWED и фиксирует админа.
func (r *ReportRepository) MarkReviewed(ctx context.Context, id, adminID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports SET report_status = $2, reviewed_by = $3 WHERE id = $1 AND report_status = $4
	`, id, models.ReportStatusReviewed, adminID, models.ReportStatusPending)
	if err != nil {
		return fmt.Errorf("report repository: mark reviewed %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: mark reviewed %w", err)
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Delete удаляет жалобу, пока она PENDING.
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM reports WHERE id = $1 AND report_status = $2
	`, id, models.ReportStatusPending)
	if err != nil {
		return fmt.Errorf("report repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: delete %w", err)
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ResolveRoom — админская резолюция комнаты одной транзакцией: комната
// переходит в терминальный статус, все её жалобы — в RESOLVED, объявление —
// в SOLVED либо CLOSED. Строка комнаты блокируется, повторная резолюция
// получает ErrRoomTerminal и ничего не меняет.
func (r *ReportRepository) ResolveRoom(ctx context.Context, roomID, adminID uuid.UUID, isNormal bool) (*models.Room, error) {
	var room models.Room
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &room, `SELECT * FROM rooms WHERE id = $1 FOR UPDATE`, roomID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("report repository: lock room %w", err)
		}
		if models.IsTerminalRoomStatus(room.Status) {
			return ErrRoomTerminal
		}

		roomStatus := models.RoomStatusResolvedNormal
		if !isNormal {
			roomStatus = models.RoomStatusResolvedRefund
		}

		if err := tx.QueryRowxContext(ctx, `
			UPDATE rooms SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at
		`, roomID, roomStatus).Scan(&room.UpdatedAt); err != nil {
			return fmt.Errorf("report repository: resolve room %w", err)
		}
		room.Status = roomStatus

		if _, err := tx.ExecContext(ctx, `
			UPDATE reports SET report_status = $2, reviewed_by = $3 WHERE chat_room_id = $1
		`, roomID, models.ReportStatusResolved, adminID); err != nil {
			return fmt.Errorf("report repository: resolve reports %w", err)
		}

		// Объявление закрывается по таблице переходов: REPORTED уходит в
		// SOLVED либо CLOSED по исходу резолюции, OPEN (комнату закрыли до
		// первой жалобы) — только в CLOSED. Терминальные статусы не трогаем.
		var currentPostStatus string
		if err := tx.GetContext(ctx, &currentPostStatus, `SELECT status FROM posts WHERE id = $1 FOR UPDATE`, room.PostID); err != nil {
			return fmt.Errorf("report repository: lock post %w", err)
		}

		postStatus := ""
		switch currentPostStatus {
		case models.PostStatusReported:
			postStatus = models.PostStatusSolved
			if !isNormal {
				postStatus = models.PostStatusClosed
			}
		case models.PostStatusOpen:
			postStatus = models.PostStatusClosed
		}
		if postStatus != "" {
			if _, err := tx.ExecContext(ctx, `
				UPDATE posts SET status = $2, updated_at = NOW() WHERE id = $1
			`, room.PostID, postStatus); err != nil {
				return fmt.Errorf("report repository: finalize post %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetStats возвращает количество жалоб по статусам.
func (r *ReportRepository) GetStats(ctx context.Context) (*models.ReportStats, error) {
	var stats models.ReportStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE report_status = 'PENDING') AS pending,
			COUNT(*) FILTER (WHERE report_status = 'REVIEWED') AS reviewed,
			COUNT(*) FILTER (WHERE report_status = 'RESOLVED') AS resolved,
			COUNT(*) FILTER (WHERE report_status = 'REJECTED') AS rejected
		FROM reports
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("report repository: stats %w", err)
	}
	return &stats, nil
}
