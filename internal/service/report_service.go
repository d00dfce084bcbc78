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

// ReportRepo — минимальный контракт хранилища жалоб.
type ReportRepo interface {
	CreateWithPostTransition(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Report, int, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Report, int, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]models.Report, int, error)
	MarkReviewed(ctx context.Context, id, adminID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ResolveRoom(ctx context.Context, roomID, adminID uuid.UUID, isNormal bool) (*models.Room, error)
}

// RoomRepoForReport — доступ к комнатам из сервиса жалоб.
type RoomRepoForReport interface {
	GetByPost(ctx context.Context, postID uuid.UUID) (*models.Room, error)
}

// ReportService реализует жалобы и админскую резолюцию.
type ReportService struct {
	repo  ReportRepo
	rooms RoomRepoForReport
	// reportable — статусы комнаты, в которых разрешено подать жалобу.
	// Задаётся конфигом, терминальные статусы отвергаются всегда.
	reportable map[string]struct{}
	notifier   MessageNotifier
}

// NewReportService создаёт сервис жалоб.
func NewReportService(repo ReportRepo, rooms RoomRepoForReport, reportableStatuses []string) *ReportService {
	reportable := make(map[string]struct{}, len(reportableStatuses))
	for _, s := range reportableStatuses {
		reportable[s] = struct{}{}
	}
	return &ReportService{repo: repo, rooms: rooms, reportable: reportable}
}

// SetNotifier подключает доставку событий о резолюции комнаты.
func (s *ReportService) SetNotifier(n MessageNotifier) {
	s.notifier = n
}

// CreateReport создаёт жалобу участника на активную комнату объявления.
// Идентификатор комнаты фиксируется в жалобе в момент создания и позже
// не пересчитывается.
func (s *ReportService) CreateReport(ctx context.Context, senderID, postID uuid.UUID, detail string) (*models.Report, error) {
	if err := validation.ValidateReportDetail(detail); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	room, err := s.rooms.GetByPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "по объявлению нет активной комнаты")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить комнату")
	}
	if models.IsTerminalRoomStatus(room.Status) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "комната уже закрыта, жалоба невозможна")
	}
	if _, ok := s.reportable[room.Status]; !ok {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "в текущем статусе комнаты жалоба не принимается")
	}
	if !room.HasParticipant(senderID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "жаловаться могут только участники комнаты")
	}

	receiverID := room.TutorID
	if senderID == room.TutorID {
		receiverID = room.StudentID
	}
	roomID := room.ID

	report := &models.Report{
		PostID:       postID,
		ChatRoomID:   &roomID,
		SenderID:     senderID,
		ReceiverID:   &receiverID,
		Detail:       detail,
		ReportStatus: models.ReportStatusPending,
	}
	if err := s.repo.CreateWithPostTransition(ctx, report); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать жалобу")
	}
	return report, nil
}

// GetReport возвращает жалобу. Доступ: отправитель, получатель, админ.
func (s *ReportService) GetReport(ctx context.Context, id, requesterID uuid.UUID, role string) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобу")
	}

	isReceiver := report.ReceiverID != nil && *report.ReceiverID == requesterID
	if report.SenderID != requesterID && !isReceiver && role != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return report, nil
}

// ListBySender возвращает страницу жалоб пользователя.
func (s *ReportService) ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Report, int, error) {
	reports, total, err := s.repo.ListBySender(ctx, senderID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобы")
	}
	return reports, total, nil
}

// ListByReceiver возвращает страницу жалоб на пользователя.
func (s *ReportService) ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Report, int, error) {
	reports, total, err := s.repo.ListByReceiver(ctx, receiverID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобы")
	}
	return reports, total, nil
}

// ListAll возвращает страницу всех жалоб. Только для админа.
func (s *ReportService) ListAll(ctx context.Context, role, status string, limit, offset int) ([]models.Report, int, error) {
	if role != models.RoleAdmin {
		return nil, 0, apperror.ErrForbidden
	}
	if status != "" {
		if _, ok := models.ValidReportStatuses[status]; !ok {
			return nil, 0, apperror.New(apperror.ErrCodeValidation, "неизвестный статус жалобы")
		}
	}
	reports, total, err := s.repo.ListAll(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобы")
	}
	return reports, total, nil
}

// MarkReviewed помечает жалобу просмотренной админом.
func (s *ReportService) MarkReviewed(ctx context.Context, adminID uuid.UUID, role string, reportID uuid.UUID) error {
	if role != models.RoleAdmin {
		return apperror.ErrForbidden
	}
	if err := s.repo.MarkReviewed(ctx, reportID, adminID); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.New(apperror.ErrCodeInvalidState, "жалоба не найдена или уже обработана")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить жалобу")
	}
	return nil
}

// ResolveRoom закрывает комнату решением админа: RESOLVED_NORMAL при
// isNormal, иначе RESOLVED_REFUND (сигнал платёжной подсистеме на возврат).
// Все жалобы комнаты переходят в RESOLVED, объявление — в SOLVED/CLOSED.
// Повторная резолюция — InvalidState без изменения состояния.
func (s *ReportService) ResolveRoom(ctx context.Context, adminID uuid.UUID, role string, roomID uuid.UUID, isNormal bool) (*models.Room, error) {
	if role != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	room, err := s.repo.ResolveRoom(ctx, roomID, adminID, isNormal)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return nil, apperror.ErrRoomNotFound
		case errors.Is(err, repository.ErrRoomTerminal):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "комната уже закрыта")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть комнату")
	}

	if s.notifier != nil {
		s.notifier.NotifyRoomStatus(room)
	}
	return room, nil
}

// DeleteReport удаляет жалобу её автора, пока она PENDING.
func (s *ReportService) DeleteReport(ctx context.Context, requesterID, reportID uuid.UUID) error {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.ErrReportNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить жалобу")
	}
	if report.SenderID != requesterID {
		return apperror.New(apperror.ErrCodeForbidden, "удалить жалобу может только её автор")
	}
	if report.ReportStatus != models.ReportStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "жалоба уже рассмотрена, удаление невозможно")
	}

	if err := s.repo.Delete(ctx, reportID); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.New(apperror.ErrCodeInvalidState, "жалоба уже рассмотрена, удаление невозможно")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить жалобу")
	}
	return nil
}
