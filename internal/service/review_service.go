package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/pkg/apperror"
	"github.com/ignatzorin/tutoring-backend/internal/repository"
	"github.com/ignatzorin/tutoring-backend/internal/validation"
)

// ReviewRepo — минимальный контракт хранилища отзывов.
type ReviewRepo interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	GetByPost(ctx context.Context, postID uuid.UUID) (*models.Review, error)
	ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Review, int, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Review, int, error)
	GetAverageStars(ctx context.Context, tutorID uuid.UUID) (float64, int, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoomRepoForReview — доступ к комнатам из сервиса отзывов.
type RoomRepoForReview interface {
	GetByPost(ctx context.Context, postID uuid.UUID) (*models.Room, error)
}

const ratingCacheTTL = 5 * time.Minute

// ReviewService реализует реестр отзывов.
type ReviewService struct {
	repo  ReviewRepo
	rooms RoomRepoForReview
	cache *CacheService
	// minRoomStatus — минимальный статус комнаты для отзыва. Политика:
	// по умолчанию CONFIRMED, настраивается конфигом.
	minRoomStatus string
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(repo ReviewRepo, rooms RoomRepoForReview, cache *CacheService, minRoomStatus string) *ReviewService {
	return &ReviewService{repo: repo, rooms: rooms, cache: cache, minRoomStatus: minRoomStatus}
}

// CreateReview создаёт отзыв студента по завершённому занятию.
// Получатель выводится из комнаты объявления. Дубликат по
// (post_id, sender_id) отсеивает уникальное ограничение в базе.
func (s *ReviewService) CreateReview(ctx context.Context, senderID, postID uuid.UUID, stars int, description *string) (*models.Review, error) {
	if err := validation.ValidateStars(stars); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReviewDescription(description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	room, err := s.rooms.GetByPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "по объявлению ещё не было занятия")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить комнату")
	}
	if room.StudentID != senderID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отзыв может оставить только студент этого занятия")
	}
	if models.RoomStatusRank(room.Status) < models.RoomStatusRank(s.minRoomStatus) {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "занятие ещё не завершено, отзыв пока недоступен")
	}

	review := &models.Review{
		PostID:      postID,
		SenderID:    senderID,
		ReceiverID:  room.TutorID,
		Stars:       stars,
		Description: description,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже оставили отзыв по этому объявлению")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать отзыв")
	}
	s.cache.InvalidateRatingCache(review.ReceiverID)
	return review, nil
}

// UpdateReview обновляет отзыв его автора.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, senderID uuid.UUID, stars int, description *string) (*models.Review, error) {
	if err := validation.ValidateStars(stars); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateReviewDescription(description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	review, err := s.getOwned(ctx, reviewID, senderID)
	if err != nil {
		return nil, err
	}

	review.Stars = stars
	review.Description = description
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить отзыв")
	}
	s.cache.InvalidateRatingCache(review.ReceiverID)
	return review, nil
}

// DeleteReview удаляет отзыв его автора.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, senderID uuid.UUID) error {
	review, err := s.getOwned(ctx, reviewID, senderID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить отзыв")
	}
	s.cache.InvalidateRatingCache(review.ReceiverID)
	return nil
}

// GetReviewByPost возвращает отзыв по объявлению, NotFound если его нет.
func (s *ReviewService) GetReviewByPost(ctx context.Context, postID uuid.UUID) (*models.Review, error) {
	review, err := s.repo.GetByPost(ctx, postID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отзыв")
	}
	if review == nil {
		return nil, apperror.ErrReviewNotFound
	}
	return review, nil
}

// ListBySender возвращает страницу отзывов пользователя.
func (s *ReviewService) ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	reviews, total, err := s.repo.ListBySender(ctx, senderID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отзывы")
	}
	return reviews, total, nil
}

// ListByReceiver возвращает страницу отзывов о репетиторе вместе со
// средним рейтингом. Рейтинг кэшируется и сбрасывается при любом
// изменении отзывов репетитора.
func (s *ReviewService) ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Review, int, float64, error) {
	reviews, total, err := s.repo.ListByReceiver(ctx, receiverID, limit, offset)
	if err != nil {
		return nil, 0, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отзывы")
	}

	value, err := s.cache.GetOrSet(ctx, TutorRatingCacheKey(receiverID), ratingCacheTTL, func() (interface{}, error) {
		avg, _, err := s.repo.GetAverageStars(ctx, receiverID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить рейтинг")
		}
		return avg, nil
	})
	if err != nil {
		return nil, 0, 0, err
	}
	avg, ok := value.(float64)
	if !ok {
		return nil, 0, 0, apperror.New(apperror.ErrCodeInternal, "некорректное значение в кэше рейтинга")
	}
	return reviews, total, avg, nil
}

func (s *ReviewService) getOwned(ctx context.Context, reviewID, senderID uuid.UUID) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отзыв")
	}
	if review.SenderID != senderID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "изменять отзыв может только его автор")
	}
	return review, nil
}
