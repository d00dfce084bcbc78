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

// BidRepo — минимальный контракт хранилища откликов.
type BidRepo interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Bid, error)
	ListByTutor(ctx context.Context, tutorID uuid.UUID, limit, offset int) ([]models.Bid, int, error)
	Accept(ctx context.Context, postID, bidID uuid.UUID) (*models.Bid, *models.Room, error)
	Withdraw(ctx context.Context, id uuid.UUID) error
}

// PostRepoForBid — доступ к объявлениям из сервиса откликов.
type PostRepoForBid interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
}

// RoomNotifier получает события жизненного цикла комнаты.
type RoomNotifier interface {
	NotifyRoomCreated(room *models.Room)
}

// BidService реализует реестр откликов и принятие отклика.
type BidService struct {
	repo     BidRepo
	posts    PostRepoForBid
	notifier RoomNotifier
	minPrice int64
}

// NewBidService создаёт сервис откликов.
func NewBidService(repo BidRepo, posts PostRepoForBid, minPrice int64) *BidService {
	return &BidService{repo: repo, posts: posts, minPrice: minPrice}
}

// SetNotifier подключает отправку событий о созданных комнатах.
func (s *BidService) SetNotifier(n RoomNotifier) {
	s.notifier = n
}

// SubmitBid создаёт отклик репетитора на открытое объявление.
func (s *BidService) SubmitBid(ctx context.Context, tutorID uuid.UUID, role string, postID uuid.UUID, proposedPrice int64, questionLevel, description string) (*models.Bid, error) {
	if role != models.RoleTutor {
		return nil, apperror.New(apperror.ErrCodeForbidden, "откликаться могут только репетиторы")
	}
	if err := validation.ValidateBidPrice(proposedPrice, s.minPrice); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if _, ok := models.ValidQuestionLevels[questionLevel]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный уровень сложности")
	}
	if err := validation.ValidateBidDescription(description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	bid := &models.Bid{
		PostID:        postID,
		TutorID:       tutorID,
		ProposedPrice: proposedPrice,
		QuestionLevel: questionLevel,
		Description:   description,
		Status:        models.BidStatusPending,
	}
	if err := s.repo.Create(ctx, bid); err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			return nil, apperror.ErrPostNotFound
		case errors.Is(err, repository.ErrPostNotOpen):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "объявление не принимает отклики")
		case errors.Is(err, repository.ErrDuplicateBid):
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже откликнулись на это объявление")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать отклик")
	}
	return bid, nil
}

// AcceptBid принимает отклик от имени автора объявления. Принятие,
// отклонение остальных откликов и создание комнаты выполняются одной
// транзакцией в хранилище; при сбое не остаётся ни принятого отклика
// без комнаты, ни комнаты без принятого отклика.
func (s *BidService) AcceptBid(ctx context.Context, studentID, bidID uuid.UUID) (*models.Bid, *models.Room, error) {
	bid, err := s.repo.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, nil, apperror.ErrBidNotFound
		}
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклик")
	}

	post, err := s.posts.GetByID(ctx, bid.PostID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, nil, apperror.ErrPostNotFound
		}
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявление")
	}
	if post.AuthorID != studentID {
		return nil, nil, apperror.New(apperror.ErrCodeForbidden, "принять отклик может только автор объявления")
	}

	accepted, room, err := s.repo.Accept(ctx, bid.PostID, bidID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBidNotFound):
			return nil, nil, apperror.ErrBidNotFound
		case errors.Is(err, repository.ErrBidNotPending):
			return nil, nil, apperror.New(apperror.ErrCodeInvalidState, "отклик уже обработан")
		case errors.Is(err, repository.ErrPostHasAccepted):
			return nil, nil, apperror.New(apperror.ErrCodeInvalidState, "по объявлению уже принят отклик")
		case errors.Is(err, repository.ErrPostNotFound):
			return nil, nil, apperror.ErrPostNotFound
		}
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось принять отклик")
	}

	if s.notifier != nil {
		s.notifier.NotifyRoomCreated(room)
	}
	return accepted, room, nil
}

// WithdrawBid удаляет PENDING отклик его владельца.
func (s *BidService) WithdrawBid(ctx context.Context, tutorID, bidID uuid.UUID) error {
	bid, err := s.repo.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return apperror.ErrBidNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклик")
	}
	if bid.TutorID != tutorID {
		return apperror.New(apperror.ErrCodeForbidden, "отозвать отклик может только его автор")
	}
	if bid.Status != models.BidStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "отозвать можно только необработанный отклик")
	}

	if err := s.repo.Withdraw(ctx, bidID); err != nil {
		if errors.Is(err, repository.ErrBidNotPending) {
			return apperror.New(apperror.ErrCodeInvalidState, "отклик уже обработан")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отозвать отклик")
	}
	return nil
}

// ListBidsForPost возвращает отклики по объявлению.
func (s *BidService) ListBidsForPost(ctx context.Context, postID uuid.UUID) ([]models.Bid, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявление")
	}
	bids, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклики")
	}
	return bids, nil
}

// ListBidsForTutor возвращает страницу откликов репетитора.
func (s *BidService) ListBidsForTutor(ctx context.Context, tutorID uuid.UUID, limit, offset int) ([]models.Bid, int, error) {
	bids, total, err := s.repo.ListByTutor(ctx, tutorID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отклики")
	}
	return bids, total, nil
}
