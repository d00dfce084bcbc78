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

// PostRepo — минимальный контракт хранилища объявлений.
type PostRepo interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, status, subjectID string, authorID *uuid.UUID, limit, offset int) ([]models.Post, int, error)
	Update(ctx context.Context, post *models.Post) error
	TransitionStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error
}

// PostService реализует реестр объявлений.
type PostService struct {
	repo PostRepo
}

// NewPostService создаёт сервис объявлений.
func NewPostService(repo PostRepo) *PostService {
	return &PostService{repo: repo}
}

// PostUpdate описывает редактируемые автором поля.
type PostUpdate struct {
	SubjectID   *string
	Title       *string
	Description *string
	ImageURL    *string
}

// CreatePost создаёт объявление в статусе OPEN.
func (s *PostService) CreatePost(ctx context.Context, authorID uuid.UUID, subjectID, title, description string, imageURL *string) (*models.Post, error) {
	if !models.IsKnownSubject(subjectID) {
		return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный предмет")
	}
	if err := validation.ValidatePostTitle(title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePostDescription(description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateImageURL(imageURL); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	post := &models.Post{
		AuthorID:    authorID,
		SubjectID:   subjectID,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		Status:      models.PostStatusOpen,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать объявление")
	}
	return post, nil
}

// GetPost возвращает объявление по ID.
func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявление")
	}
	return post, nil
}

// ListPosts возвращает страницу объявлений.
func (s *PostService) ListPosts(ctx context.Context, status, subjectID string, authorID *uuid.UUID, limit, offset int) ([]models.Post, int, error) {
	if status != "" {
		if _, ok := models.ValidPostStatuses[status]; !ok {
			return nil, 0, apperror.New(apperror.ErrCodeValidation, "неизвестный статус объявления")
		}
	}
	posts, total, err := s.repo.List(ctx, status, subjectID, authorID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявления")
	}
	return posts, total, nil
}

// UpdatePost редактирует объявление. Разрешено только автору и только
// пока объявление OPEN.
func (s *PostService) UpdatePost(ctx context.Context, id, editorID uuid.UUID, update PostUpdate) (*models.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return nil, apperror.ErrForbidden
	}
	if post.Status != models.PostStatusOpen {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "объявление нельзя редактировать после закрытия или принятия отклика")
	}

	if update.SubjectID != nil {
		if !models.IsKnownSubject(*update.SubjectID) {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный предмет")
		}
		post.SubjectID = *update.SubjectID
	}
	if update.Title != nil {
		if err := validation.ValidatePostTitle(*update.Title); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		post.Title = *update.Title
	}
	if update.Description != nil {
		if err := validation.ValidatePostDescription(*update.Description); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		post.Description = *update.Description
	}
	if update.ImageURL != nil {
		if err := validation.ValidateImageURL(update.ImageURL); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		post.ImageURL = update.ImageURL
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить объявление")
	}
	return post, nil
}

// DeletePost мягко закрывает объявление автора: физическое удаление
// не выполняется, пока на объявление может ссылаться комната.
func (s *PostService) DeletePost(ctx context.Context, id, requesterID uuid.UUID) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return apperror.ErrForbidden
	}
	return s.TransitionStatus(ctx, id, models.PostStatusClosed)
}

// TransitionStatus переводит объявление в новый статус по таблице
// разрешённых переходов. Вызывается другими компонентами жизненного цикла.
func (s *PostService) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus string) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !models.IsAllowedPostTransition(post.Status, newStatus) {
		return apperror.New(apperror.ErrCodeInvalidTransition, "недопустимый переход статуса объявления")
	}

	if err := s.repo.TransitionStatus(ctx, id, post.Status, newStatus); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return apperror.New(apperror.ErrCodeInvalidState, "статус объявления изменился, повторите запрос")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось изменить статус объявления")
	}
	return nil
}

// ListSubjects возвращает справочник предметов.
func (s *PostService) ListSubjects() []models.Subject {
	return models.Subjects
}
