package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/pkg/apperror"
	"github.com/ignatzorin/tutoring-backend/internal/repository"
	"github.com/ignatzorin/tutoring-backend/internal/validation"
)

// ConversationRepo — минимальный контракт хранилища комнат.
type ConversationRepo interface {
	GetOrCreate(ctx context.Context, postID, bidID, studentID, tutorID uuid.UUID) (*models.Room, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetByPost(ctx context.Context, postID uuid.UUID) (*models.Room, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Room, int, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, fromStatus, newStatus string) error
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.Message, int, error)
}

// MessageNotifier получает события комнаты для доставки по WebSocket.
type MessageNotifier interface {
	NotifyMessage(room *models.Room, msg *models.Message)
	NotifyRoomStatus(room *models.Room)
}

// ConversationService реализует менеджер комнат.
type ConversationService struct {
	repo     ConversationRepo
	notifier MessageNotifier
}

// NewConversationService создаёт сервис комнат.
func NewConversationService(repo ConversationRepo) *ConversationService {
	return &ConversationService{repo: repo}
}

// SetNotifier подключает доставку событий комнаты.
func (s *ConversationService) SetNotifier(n MessageNotifier) {
	s.notifier = n
}

// GetOrCreateRoom идемпотентно возвращает комнату для пары (postID, bidID).
// Используется и как шаг принятия отклика, и как безопасный повтор после
// сбоя между принятием и созданием комнаты.
func (s *ConversationService) GetOrCreateRoom(ctx context.Context, postID, bidID, studentID, tutorID uuid.UUID) (*models.Room, error) {
	room, err := s.repo.GetOrCreate(ctx, postID, bidID, studentID, tutorID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать комнату")
	}
	return room, nil
}

// GetRoom возвращает комнату. Доступ только участникам и админу.
func (s *ConversationService) GetRoom(ctx context.Context, roomID, requesterID uuid.UUID, role string) (*models.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(requesterID) && role != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return room, nil
}

// ListRoomsForUser возвращает страницу комнат пользователя.
func (s *ConversationService) ListRoomsForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Room, int, error) {
	rooms, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить комнаты")
	}
	return rooms, total, nil
}

// AppendMessage добавляет сообщение в комнату от имени участника.
func (s *ConversationService) AppendMessage(ctx context.Context, roomID, senderID uuid.UUID, content string, attachmentURL *string) (*models.Message, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(senderID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "писать в комнату могут только её участники")
	}
	if models.IsTerminalRoomStatus(room.Status) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "комната закрыта, сообщения больше не принимаются")
	}
	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateImageURL(attachmentURL); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	msg := &models.Message{
		RoomID:        roomID,
		SenderID:      senderID,
		Content:       content,
		AttachmentURL: attachmentURL,
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return nil, apperror.ErrRoomNotFound
		case errors.Is(err, repository.ErrRoomTerminal):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "комната закрыта, сообщения больше не принимаются")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отправить сообщение")
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(room, msg)
	}
	return msg, nil
}

// ListMessages возвращает страницу сообщений комнаты по порядку seq.
func (s *ConversationService) ListMessages(ctx context.Context, roomID, requesterID uuid.UUID, role string, limit, offset int) ([]models.Message, int, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, 0, err
	}
	if !room.HasParticipant(requesterID) && role != models.RoleAdmin {
		return nil, 0, apperror.ErrForbidden
	}

	messages, total, err := s.repo.ListMessages(ctx, roomID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщения")
	}
	return messages, total, nil
}

// AdvanceStatus продвигает комнату по циклу
// IN_PROGRESS → SUBMITTED → CONFIRMED. Решение сдаёт репетитор,
// подтверждает студент; любой другой переход — InvalidTransition.
func (s *ConversationService) AdvanceStatus(ctx context.Context, roomID, actorID uuid.UUID, newStatus string) (*models.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(actorID) {
		return nil, apperror.ErrForbidden
	}

	switch newStatus {
	case models.RoomStatusSubmitted:
		if actorID != room.TutorID {
			return nil, apperror.New(apperror.ErrCodeForbidden, "отметить решение сданным может только репетитор")
		}
	case models.RoomStatusConfirmed:
		if actorID != room.StudentID {
			return nil, apperror.New(apperror.ErrCodeForbidden, "подтвердить решение может только студент")
		}
	default:
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "недопустимый целевой статус комнаты")
	}

	if models.RoomStatusRank(newStatus) != models.RoomStatusRank(room.Status)+1 {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "недопустимый переход статуса комнаты")
	}

	if err := s.repo.AdvanceStatus(ctx, roomID, room.Status, newStatus); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "статус комнаты изменился, повторите запрос")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось изменить статус комнаты")
	}
	room.Status = newStatus

	if s.notifier != nil {
		s.notifier.NotifyRoomStatus(room)
	}
	return room, nil
}

func (s *ConversationService) getRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	room, err := s.repo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperror.ErrRoomNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить комнату")
	}
	return room, nil
}
