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
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomTerminal = errors.New("room is in terminal status")
)

// ConversationRepository отвечает за комнаты и сообщения.
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository создаёт новый экземпляр.
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// upsertRoom создаёт комнату для пары (post_id, bid_id), если её ещё нет,
// и в любом случае заполняет room текущей строкой. ON CONFLICT DO NOTHING
// по уникальному ключу исключает гонку check-then-insert: параллельные
// вызовы с одним ключом получают одну и ту же комнату.
func upsertRoom(ctx context.Context, tx *sqlx.Tx, room *models.Room, postID, bidID, studentID, tutorID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO rooms (post_id, bid_id, student_id, tutor_id, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id, bid_id) DO NOTHING
	`, postID, bidID, studentID, tutorID, models.RoomStatusInProgress)
	if err != nil {
		return fmt.Errorf("conversation repository: upsert room %w", err)
	}

	err = tx.GetContext(ctx, room, `SELECT * FROM rooms WHERE post_id = $1 AND bid_id = $2`, postID, bidID)
	if err != nil {
		return fmt.Errorf("conversation repository: select upserted room %w", err)
	}
	return nil
}

// GetOrCreate возвращает комнату по ключу (post_id, bid_id), создавая её
// при отсутствии. Идемпотентна: повторные вызовы возвращают ту же комнату.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, postID, bidID, studentID, tutorID uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return upsertRoom(ctx, tx, &room, postID, bidID, studentID, tutorID)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByID возвращает комнату по идентификатору.
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return common.GetByID[models.Room](ctx, r.db, "rooms", id, ErrRoomNotFound)
}

// GetByPost возвращает комнату, привязанную к объявлению.
// Комната создаётся только при принятии отклика, поэтому больше одной
// на объявление быть не может.
func (r *ConversationRepository) GetByPost(ctx context.Context, postID uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT * FROM rooms WHERE post_id = $1 ORDER BY created_at DESC LIMIT 1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("conversation repository: get by post %w", err)
	}
	return &room, nil
}

// ListByUser возвращает страницу комнат, где пользователь — участник.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Room, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM rooms WHERE student_id = $1 OR tutor_id = $1
	`, userID); err != nil {
		return nil, 0, fmt.Errorf("conversation repository: count by user %w", err)
	}

	var rooms []models.Room
	err := r.db.SelectContext(ctx, &rooms, `
		SELECT * FROM rooms
		WHERE student_id = $1 OR tutor_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("conversation repository: list by user %w", err)
	}
	return rooms, total, nil
}

// AdvanceStatus переводит комнату в newStatus при условии, что текущий
// статус равен fromStatus. Сравнение в WHERE защищает от конкурентного
// перехода.
func (r *ConversationRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, fromStatus, newStatus string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2
	`, id, fromStatus, newStatus)
	if err != nil {
		return fmt.Errorf("conversation repository: advance status %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("conversation repository: advance status %w", err)
	}
	if affected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AppendMessage добавляет сообщение в комнату. Строка комнаты блокируется
// на время вставки, seq выдаётся монотонно внутри комнаты; конкурентные
// отправители сериализуются, сообщения не теряются. Терминальная комната
// сообщений не принимает.
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var status string
		err := tx.GetContext(ctx, &status, `SELECT status FROM rooms WHERE id = $1 FOR UPDATE`, msg.RoomID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("conversation repository: lock room %w", err)
		}
		if models.IsTerminalRoomStatus(status) {
			return ErrRoomTerminal
		}

		query := `
			INSERT INTO messages (room_id, sender_id, seq, content, attachment_url)
			VALUES ($1, $2, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE room_id = $1), $3, $4)
			RETURNING id, seq, created_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			msg.RoomID, msg.SenderID, msg.Content, msg.AttachmentURL,
		).Scan(&msg.ID, &msg.Seq, &msg.CreatedAt); err != nil {
			return fmt.Errorf("conversation repository: insert message %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE rooms SET updated_at = NOW() WHERE id = $1`, msg.RoomID); err != nil {
			return fmt.Errorf("conversation repository: touch room %w", err)
		}
		return nil
	})
}

// ListMessages возвращает страницу сообщений комнаты по порядку seq.
func (r *ConversationRepository) ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.Message, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE room_id = $1`, roomID); err != nil {
		return nil, 0, fmt.Errorf("conversation repository: count messages %w", err)
	}

	var messages []models.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM messages WHERE room_id = $1 ORDER BY seq LIMIT $2 OFFSET $3
	`, roomID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("conversation repository: list messages %w", err)
	}
	return messages, total, nil
}

// GetStats возвращает количество комнат по статусам.
func (r *ConversationRepository) GetStats(ctx context.Context) (*models.RoomStats, error) {
	var stats models.RoomStats
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'IN_PROGRESS') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'SUBMITTED') AS submitted,
			COUNT(*) FILTER (WHERE status = 'CONFIRMED') AS confirmed,
			COUNT(*) FILTER (WHERE status = 'RESOLVED_NORMAL') AS resolved_normal,
			COUNT(*) FILTER (WHERE status = 'RESOLVED_REFUND') AS resolved_refund
		FROM rooms
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("conversation repository: stats %w", err)
	}
	return &stats, nil
}
