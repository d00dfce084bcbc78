package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/pkg/apperror"
)

type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) GetOrCreate(ctx context.Context, postID, bidID, studentID, tutorID uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, postID, bidID, studentID, tutorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockConversationRepo) GetByPost(ctx context.Context, postID uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Room, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Room), args.Int(1), args.Error(2)
}

func (m *mockConversationRepo) AdvanceStatus(ctx context.Context, id uuid.UUID, fromStatus, newStatus string) error {
	args := m.Called(ctx, id, fromStatus, newStatus)
	return args.Error(0)
}

func (m *mockConversationRepo) AppendMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = uuid.New()
		msg.Seq = 1
	}
	return args.Error(0)
}

func (m *mockConversationRepo) ListMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]models.Message, int, error) {
	args := m.Called(ctx, roomID, limit, offset)
	return args.Get(0).([]models.Message), args.Int(1), args.Error(2)
}

func activeRoom(studentID, tutorID uuid.UUID) *models.Room {
	return &models.Room{
		ID:        uuid.New(),
		PostID:    uuid.New(),
		BidID:     uuid.New(),
		StudentID: studentID,
		TutorID:   tutorID,
		Status:    models.RoomStatusInProgress,
	}
}

func TestConversationService_AppendMessage_Success(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	studentID := uuid.New()
	room := activeRoom(studentID, uuid.New())

	repo.On("GetByID", ctx, room.ID).Return(room, nil)
	repo.On("AppendMessage", ctx, mock.AnythingOfType("*models.Message")).Return(nil)

	msg, err := svc.AppendMessage(ctx, room.ID, studentID, "Здравствуйте, когда будет решение?", nil)

	assert.NoError(t, err)
	assert.NotNil(t, msg)
	assert.Equal(t, studentID, msg.SenderID)
	assert.Equal(t, int64(1), msg.Seq)
}

func TestConversationService_AppendMessage_NotParticipant(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	room := activeRoom(uuid.New(), uuid.New())
	repo.On("GetByID", ctx, room.ID).Return(room, nil)

	_, err := svc.AppendMessage(ctx, room.ID, uuid.New(), "Здравствуйте", nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
}

func TestConversationService_AppendMessage_TerminalRoom(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	studentID := uuid.New()
	room := activeRoom(studentID, uuid.New())
	room.Status = models.RoomStatusResolvedRefund

	repo.On("GetByID", ctx, room.ID).Return(room, nil)

	_, err := svc.AppendMessage(ctx, room.ID, studentID, "Ещё вопрос", nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestConversationService_AdvanceStatus_SubmittedByTutor(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	tutorID := uuid.New()
	room := activeRoom(uuid.New(), tutorID)

	repo.On("GetByID", ctx, room.ID).Return(room, nil)
	repo.On("AdvanceStatus", ctx, room.ID, models.RoomStatusInProgress, models.RoomStatusSubmitted).Return(nil)

	updated, err := svc.AdvanceStatus(ctx, room.ID, tutorID, models.RoomStatusSubmitted)

	assert.NoError(t, err)
	assert.Equal(t, models.RoomStatusSubmitted, updated.Status)
}

func TestConversationService_AdvanceStatus_SubmittedByStudentForbidden(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	studentID := uuid.New()
	room := activeRoom(studentID, uuid.New())

	repo.On("GetByID", ctx, room.ID).Return(room, nil)

	_, err := svc.AdvanceStatus(ctx, room.ID, studentID, models.RoomStatusSubmitted)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestConversationService_AdvanceStatus_ConfirmedByStudent(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	studentID := uuid.New()
	room := activeRoom(studentID, uuid.New())
	room.Status = models.RoomStatusSubmitted

	repo.On("GetByID", ctx, room.ID).Return(room, nil)
	repo.On("AdvanceStatus", ctx, room.ID, models.RoomStatusSubmitted, models.RoomStatusConfirmed).Return(nil)

	updated, err := svc.AdvanceStatus(ctx, room.ID, studentID, models.RoomStatusConfirmed)

	assert.NoError(t, err)
	assert.Equal(t, models.RoomStatusConfirmed, updated.Status)
}

func TestConversationService_AdvanceStatus_SkipNotAllowed(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	studentID := uuid.New()
	// Комната ещё IN_PROGRESS, подтверждать нечего
	room := activeRoom(studentID, uuid.New())

	repo.On("GetByID", ctx, room.ID).Return(room, nil)

	_, err := svc.AdvanceStatus(ctx, room.ID, studentID, models.RoomStatusConfirmed)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	repo.AssertNotCalled(t, "AdvanceStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationService_AdvanceStatus_ResolvedTargetRejected(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	tutorID := uuid.New()
	room := activeRoom(uuid.New(), tutorID)
	repo.On("GetByID", ctx, room.ID).Return(room, nil)

	// Резолюция доступна только админу через отдельную операцию
	_, err := svc.AdvanceStatus(ctx, room.ID, tutorID, models.RoomStatusResolvedNormal)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestConversationService_GetRoom_AdminAccess(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo)
	ctx := context.Background()

	room := activeRoom(uuid.New(), uuid.New())
	repo.On("GetByID", ctx, room.ID).Return(room, nil)

	got, err := svc.GetRoom(ctx, room.ID, uuid.New(), models.RoleAdmin)

	assert.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)
}
