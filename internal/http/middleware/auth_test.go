package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/repository"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

// Зеркало пользователей подключается в роутер как UserRecorder.
var _ UserRecorder = (*repository.UserRepository)(nil)

type userRecorderSpy struct {
	recorded chan *models.User
}

func newUserRecorderSpy() *userRecorderSpy {
	return &userRecorderSpy{recorded: make(chan *models.User, 1)}
}

func (s *userRecorderSpy) Upsert(_ context.Context, user *models.User) error {
	s.recorded <- user
	return nil
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenManager("test-secret")

	r := gin.New()
	r.Use(AuthMiddleware(tokens, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenManager("test-secret")

	r := gin.New()
	r.Use(AuthMiddleware(tokens, nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken_RecordsUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenManager("test-secret")
	spy := newUserRecorderSpy()

	userID := uuid.New()
	token, err := tokens.Mint(userID, models.RoleTutor, time.Hour)
	assert.NoError(t, err)

	var gotID uuid.UUID
	var gotRole string
	r := gin.New()
	r.Use(AuthMiddleware(tokens, spy))
	r.GET("/ping", func(c *gin.Context) {
		gotID = c.MustGet(ContextUserIDKey).(uuid.UUID)
		gotRole = c.GetString(ContextRoleKey)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, models.RoleTutor, gotRole)

	select {
	case user := <-spy.recorded:
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, models.RoleTutor, user.Role)
	case <-time.After(time.Second):
		t.Fatal("пользователь не записан в зеркало")
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextRoleKey, models.RoleUser)
		c.Next()
	})
	r.Use(RequireRole(models.RoleAdmin))
	r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
