package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/pkg/apperror"
	"github.com/ignatzorin/tutoring-backend/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetByPost(ctx context.Context, postID uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	args := m.Called(ctx, senderID, limit, offset)
	return args.Get(0).([]models.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	args := m.Called(ctx, receiverID, limit, offset)
	return args.Get(0).([]models.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) GetAverageStars(ctx context.Context, tutorID uuid.UUID) (float64, int, error) {
	args := m.Called(ctx, tutorID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRoomRepoForReview struct {
	mock.Mock
}

func (m *mockRoomRepoForReview) GetByPost(ctx context.Context, postID uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func TestReviewService_CreateReview_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	roomRepo := new(mockRoomRepoForReview)
	svc := NewReviewService(reviewRepo, roomRepo, NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	studentID := uuid.New()
	tutorID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: studentID,
		TutorID:   tutorID,
		Status:    models.RoomStatusConfirmed,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	desc := "Отличное объяснение, разобрались с задачей за полчаса"
	review, err := svc.CreateReview(ctx, studentID, postID, 5, &desc)

	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.Equal(t, tutorID, review.ReceiverID)
	assert.Equal(t, 5, review.Stars)
}

func TestReviewService_CreateReview_ResolvedRoomAllowed(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	roomRepo := new(mockRoomRepoForReview)
	svc := NewReviewService(reviewRepo, roomRepo, NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	studentID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: studentID,
		TutorID:   uuid.New(),
		Status:    models.RoomStatusResolvedNormal,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	_, err := svc.CreateReview(ctx, studentID, postID, 4, nil)

	assert.NoError(t, err)
}

func TestReviewService_CreateReview_RoomNotConfirmed(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	roomRepo := new(mockRoomRepoForReview)
	svc := NewReviewService(reviewRepo, roomRepo, NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	studentID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: studentID,
		TutorID:   uuid.New(),
		Status:    models.RoomStatusSubmitted,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)

	_, err := svc.CreateReview(ctx, studentID, postID, 5, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_CreateReview_NotStudent(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	roomRepo := new(mockRoomRepoForReview)
	svc := NewReviewService(reviewRepo, roomRepo, NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	tutorID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: uuid.New(),
		TutorID:   tutorID,
		Status:    models.RoomStatusConfirmed,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)

	// Отзыв пытается оставить репетитор
	_, err := svc.CreateReview(ctx, tutorID, postID, 5, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestReviewService_CreateReview_NoRoom(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	roomRepo := new(mockRoomRepoForReview)
	svc := NewReviewService(reviewRepo, roomRepo, NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	postID := uuid.New()
	roomRepo.On("GetByPost", ctx, postID).Return(nil, repository.ErrRoomNotFound)

	_, err := svc.CreateReview(ctx, uuid.New(), postID, 5, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestReviewService_CreateReview_InvalidStars(t *testing.T) {
	svc := NewReviewService(new(mockReviewRepo), new(mockRoomRepoForReview), NewCacheService(), models.RoomStatusConfirmed)

	_, err := svc.CreateReview(context.Background(), uuid.New(), uuid.New(), 0, nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.CreateReview(context.Background(), uuid.New(), uuid.New(), 6, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_CreateReview_Duplicate(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	roomRepo := new(mockRoomRepoForReview)
	svc := NewReviewService(reviewRepo, roomRepo, NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	studentID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: studentID,
		TutorID:   uuid.New(),
		Status:    models.RoomStatusConfirmed,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(repository.ErrDuplicateReview)

	_, err := svc.CreateReview(ctx, studentID, postID, 3, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestReviewService_UpdateReview_NotOwner(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockRoomRepoForReview), NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	reviewID := uuid.New()
	reviewRepo.On("GetByID", ctx, reviewID).Return(&models.Review{
		ID:       reviewID,
		SenderID: uuid.New(),
		Stars:    4,
	}, nil)

	_, err := svc.UpdateReview(ctx, reviewID, uuid.New(), 2, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	reviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReviewService_DeleteReview_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockRoomRepoForReview), NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	senderID := uuid.New()
	reviewID := uuid.New()
	reviewRepo.On("GetByID", ctx, reviewID).Return(&models.Review{
		ID:       reviewID,
		SenderID: senderID,
		Stars:    1,
	}, nil)
	reviewRepo.On("Delete", ctx, reviewID).Return(nil)

	err := svc.DeleteReview(ctx, reviewID, senderID)

	assert.NoError(t, err)
	reviewRepo.AssertExpectations(t)
}

func TestReviewService_ListByReceiver_WithAverage(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	svc := NewReviewService(reviewRepo, new(mockRoomRepoForReview), NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	tutorID := uuid.New()
	reviews := []models.Review{
		{ID: uuid.New(), ReceiverID: tutorID, Stars: 5},
		{ID: uuid.New(), ReceiverID: tutorID, Stars: 4},
	}
	reviewRepo.On("ListByReceiver", ctx, tutorID, 20, 0).Return(reviews, 2, nil)
	reviewRepo.On("GetAverageStars", ctx, tutorID).Return(4.5, 2, nil)

	got, total, avg, err := svc.ListByReceiver(ctx, tutorID, 20, 0)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, total)
	assert.InDelta(t, 4.5, avg, 0.001)
}

func TestReviewService_RatingCache_InvalidatedOnCreate(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	roomRepo := new(mockRoomRepoForReview)
	svc := NewReviewService(reviewRepo, roomRepo, NewCacheService(), models.RoomStatusConfirmed)
	ctx := context.Background()

	studentID := uuid.New()
	tutorID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: studentID,
		TutorID:   tutorID,
		Status:    models.RoomStatusConfirmed,
	}

	reviewRepo.On("ListByReceiver", ctx, tutorID, 20, 0).Return([]models.Review{}, 0, nil)
	reviewRepo.On("GetAverageStars", ctx, tutorID).Return(4.0, 1, nil)

	// Два чтения подряд — рейтинг считается в базе один раз
	_, _, _, err := svc.ListByReceiver(ctx, tutorID, 20, 0)
	assert.NoError(t, err)
	_, _, _, err = svc.ListByReceiver(ctx, tutorID, 20, 0)
	assert.NoError(t, err)
	reviewRepo.AssertNumberOfCalls(t, "GetAverageStars", 1)

	// Новый отзыв сбрасывает кэш, следующее чтение пересчитывает
	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)
	_, err = svc.CreateReview(ctx, studentID, postID, 5, nil)
	assert.NoError(t, err)

	_, _, _, err = svc.ListByReceiver(ctx, tutorID, 20, 0)
	assert.NoError(t, err)
	reviewRepo.AssertNumberOfCalls(t, "GetAverageStars", 2)
}
