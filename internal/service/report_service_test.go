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

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) CreateWithPostTransition(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	if args.Error(0) == nil {
		report.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *mockReportRepo) ListBySender(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Report, int, error) {
	args := m.Called(ctx, senderID, limit, offset)
	return args.Get(0).([]models.Report), args.Int(1), args.Error(2)
}

func (m *mockReportRepo) ListByReceiver(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]models.Report, int, error) {
	args := m.Called(ctx, receiverID, limit, offset)
	return args.Get(0).([]models.Report), args.Int(1), args.Error(2)
}

func (m *mockReportRepo) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Report, int, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Report), args.Int(1), args.Error(2)
}

func (m *mockReportRepo) MarkReviewed(ctx context.Context, id, adminID uuid.UUID) error {
	args := m.Called(ctx, id, adminID)
	return args.Error(0)
}

func (m *mockReportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReportRepo) ResolveRoom(ctx context.Context, roomID, adminID uuid.UUID, isNormal bool) (*models.Room, error) {
	args := m.Called(ctx, roomID, adminID, isNormal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

type mockRoomRepoForReport struct {
	mock.Mock
}

func (m *mockRoomRepoForReport) GetByPost(ctx context.Context, postID uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

var testReportable = []string{
	models.RoomStatusInProgress,
	models.RoomStatusSubmitted,
	models.RoomStatusConfirmed,
}

func TestReportService_CreateReport_Success(t *testing.T) {
	reportRepo := new(mockReportRepo)
	roomRepo := new(mockRoomRepoForReport)
	svc := NewReportService(reportRepo, roomRepo, testReportable)
	ctx := context.Background()

	studentID := uuid.New()
	tutorID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: studentID,
		TutorID:   tutorID,
		Status:    models.RoomStatusInProgress,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)
	reportRepo.On("CreateWithPostTransition", ctx, mock.AnythingOfType("*models.Report")).Return(nil)

	report, err := svc.CreateReport(ctx, studentID, postID, "Репетитор прислал неверное решение")

	assert.NoError(t, err)
	assert.NotNil(t, report)
	if assert.NotNil(t, report.ChatRoomID) {
		assert.Equal(t, room.ID, *report.ChatRoomID)
	}
	assert.Equal(t, models.ReportStatusPending, report.ReportStatus)
	if assert.NotNil(t, report.ReceiverID) {
		assert.Equal(t, tutorID, *report.ReceiverID)
	}
}

func TestReportService_CreateReport_ReceiverIsOtherParticipant(t *testing.T) {
	reportRepo := new(mockReportRepo)
	roomRepo := new(mockRoomRepoForReport)
	svc := NewReportService(reportRepo, roomRepo, testReportable)
	ctx := context.Background()

	studentID := uuid.New()
	tutorID := uuid.New()
	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: studentID,
		TutorID:   tutorID,
		Status:    models.RoomStatusSubmitted,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)
	reportRepo.On("CreateWithPostTransition", ctx, mock.AnythingOfType("*models.Report")).Return(nil)

	// Жалуется репетитор — получателем становится студент
	report, err := svc.CreateReport(ctx, tutorID, postID, "Студент отказывается подтверждать решение")

	assert.NoError(t, err)
	if assert.NotNil(t, report.ReceiverID) {
		assert.Equal(t, studentID, *report.ReceiverID)
	}
}

func TestReportService_CreateReport_ShortDetail(t *testing.T) {
	svc := NewReportService(new(mockReportRepo), new(mockRoomRepoForReport), testReportable)

	// 4 символа — не проходит
	_, err := svc.CreateReport(context.Background(), uuid.New(), uuid.New(), "плох")
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestReportService_CreateReport_NoRoom(t *testing.T) {
	reportRepo := new(mockReportRepo)
	roomRepo := new(mockRoomRepoForReport)
	svc := NewReportService(reportRepo, roomRepo, testReportable)
	ctx := context.Background()

	postID := uuid.New()
	roomRepo.On("GetByPost", ctx, postID).Return(nil, repository.ErrRoomNotFound)

	_, err := svc.CreateReport(ctx, uuid.New(), postID, "Жалоба без комнаты")

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReportService_CreateReport_TerminalRoom(t *testing.T) {
	reportRepo := new(mockReportRepo)
	roomRepo := new(mockRoomRepoForReport)
	svc := NewReportService(reportRepo, roomRepo, testReportable)
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

	_, err := svc.CreateReport(ctx, studentID, postID, "Поздняя жалоба")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	reportRepo.AssertNotCalled(t, "CreateWithPostTransition", mock.Anything, mock.Anything)
}

func TestReportService_CreateReport_NotParticipant(t *testing.T) {
	reportRepo := new(mockReportRepo)
	roomRepo := new(mockRoomRepoForReport)
	svc := NewReportService(reportRepo, roomRepo, testReportable)
	ctx := context.Background()

	postID := uuid.New()
	room := &models.Room{
		ID:        uuid.New(),
		PostID:    postID,
		StudentID: uuid.New(),
		TutorID:   uuid.New(),
		Status:    models.RoomStatusInProgress,
	}

	roomRepo.On("GetByPost", ctx, postID).Return(room, nil)

	_, err := svc.CreateReport(ctx, uuid.New(), postID, "Чужая жалоба")

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestReportService_ResolveRoom_AdminOnly(t *testing.T) {
	svc := NewReportService(new(mockReportRepo), new(mockRoomRepoForReport), testReportable)

	_, err := svc.ResolveRoom(context.Background(), uuid.New(), models.RoleUser, uuid.New(), true)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestReportService_ResolveRoom_Success(t *testing.T) {
	reportRepo := new(mockReportRepo)
	svc := NewReportService(reportRepo, new(mockRoomRepoForReport), testReportable)
	ctx := context.Background()

	adminID := uuid.New()
	roomID := uuid.New()
	resolved := &models.Room{ID: roomID, Status: models.RoomStatusResolvedRefund}

	reportRepo.On("ResolveRoom", ctx, roomID, adminID, false).Return(resolved, nil)

	room, err := svc.ResolveRoom(ctx, adminID, models.RoleAdmin, roomID, false)

	assert.NoError(t, err)
	assert.Equal(t, models.RoomStatusResolvedRefund, room.Status)
}

func TestReportService_ResolveRoom_AlreadyResolved(t *testing.T) {
	reportRepo := new(mockReportRepo)
	svc := NewReportService(reportRepo, new(mockRoomRepoForReport), testReportable)
	ctx := context.Background()

	adminID := uuid.New()
	roomID := uuid.New()
	reportRepo.On("ResolveRoom", ctx, roomID, adminID, true).Return(nil, repository.ErrRoomTerminal)

	_, err := svc.ResolveRoom(ctx, adminID, models.RoleAdmin, roomID, true)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestReportService_DeleteReport_OnlyPending(t *testing.T) {
	reportRepo := new(mockReportRepo)
	svc := NewReportService(reportRepo, new(mockRoomRepoForReport), testReportable)
	ctx := context.Background()

	senderID := uuid.New()
	reportID := uuid.New()
	reportRepo.On("GetByID", ctx, reportID).Return(&models.Report{
		ID:           reportID,
		SenderID:     senderID,
		ReportStatus: models.ReportStatusResolved,
	}, nil)

	err := svc.DeleteReport(ctx, senderID, reportID)

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	reportRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReportService_ListAll_AdminOnly(t *testing.T) {
	svc := NewReportService(new(mockReportRepo), new(mockRoomRepoForReport), testReportable)

	_, _, err := svc.ListAll(context.Background(), models.RoleTutor, "", 20, 0)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}
