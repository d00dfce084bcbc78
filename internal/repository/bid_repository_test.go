package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/tutoring-backend/internal/models"
)

// newSQLMock поднимает sqlx поверх sqlmock: последовательность запросов
// внутри транзакций проверяется без живой базы.
func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func postRows(postID, authorID uuid.UUID, status string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "author_id", "subject_id", "title", "description", "image_url", "status", "created_at", "updated_at",
	}).AddRow(postID.String(), authorID.String(), "math", "Производные", "Нужна помощь с пределами и производными", nil, status, now, now)
}

func bidRows(bidID, postID, tutorID uuid.UUID, status string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "post_id", "tutor_id", "proposed_price", "question_level", "description", "status", "created_at", "updated_at",
	}).AddRow(bidID.String(), postID.String(), tutorID.String(), int64(50000), models.QuestionLevelMedium, "Разберу задачу с объяснением", status, now, now)
}

func roomRows(roomID, postID, bidID, studentID, tutorID uuid.UUID, status string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "post_id", "bid_id", "student_id", "tutor_id", "status", "created_at", "updated_at",
	}).AddRow(roomID.String(), postID.String(), bidID.String(), studentID.String(), tutorID.String(), status, now, now)
}

func TestBidRepository_Accept_Sequence(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewBidRepository(db)

	postID, bidID := uuid.New(), uuid.New()
	studentID, tutorID := uuid.New(), uuid.New()
	roomID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE id = $1 FOR UPDATE`)).
		WithArgs(postID).
		WillReturnRows(postRows(postID, studentID, models.PostStatusOpen, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bids WHERE post_id = $1 AND status = $2`)).
		WithArgs(postID, models.BidStatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM bids WHERE id = $1 AND post_id = $2`)).
		WithArgs(bidID, postID).
		WillReturnRows(bidRows(bidID, postID, tutorID, models.BidStatusPending, now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`)).
		WithArgs(bidID, models.BidStatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bids SET status = $3, updated_at = NOW() WHERE post_id = $1 AND id <> $2 AND status = $4`)).
		WithArgs(postID, bidID, models.BidStatusRejected, models.BidStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO rooms (post_id, bid_id, student_id, tutor_id, status)`)).
		WithArgs(postID, bidID, studentID, tutorID, models.RoomStatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM rooms WHERE post_id = $1 AND bid_id = $2`)).
		WithArgs(postID, bidID).
		WillReturnRows(roomRows(roomID, postID, bidID, studentID, tutorID, models.RoomStatusInProgress, now))
	mock.ExpectCommit()

	accepted, room, err := repo.Accept(context.Background(), postID, bidID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusAccepted, accepted.Status)
	assert.Equal(t, roomID, room.ID)
	assert.Equal(t, models.RoomStatusInProgress, room.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_Accept_AlreadyAccepted(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewBidRepository(db)

	postID, bidID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE id = $1 FOR UPDATE`)).
		WithArgs(postID).
		WillReturnRows(postRows(postID, uuid.New(), models.PostStatusOpen, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bids WHERE post_id = $1 AND status = $2`)).
		WithArgs(postID, models.BidStatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, _, err := repo.Accept(context.Background(), postID, bidID)
	assert.ErrorIs(t, err, ErrPostHasAccepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_Accept_BidNotPending(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewBidRepository(db)

	postID, bidID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE id = $1 FOR UPDATE`)).
		WithArgs(postID).
		WillReturnRows(postRows(postID, uuid.New(), models.PostStatusOpen, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bids WHERE post_id = $1 AND status = $2`)).
		WithArgs(postID, models.BidStatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM bids WHERE id = $1 AND post_id = $2`)).
		WithArgs(bidID, postID).
		WillReturnRows(bidRows(bidID, postID, uuid.New(), models.BidStatusRejected, now))
	mock.ExpectRollback()

	_, _, err := repo.Accept(context.Background(), postID, bidID)
	assert.ErrorIs(t, err, ErrBidNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
