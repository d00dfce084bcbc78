package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/tutoring-backend/internal/goroutine"
	"github.com/ignatzorin/tutoring-backend/internal/logger"
	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// UserRecorder фиксирует субъект токена в локальной таблице
// пользователей.
type UserRecorder interface {
	Upsert(ctx context.Context, user *models.User) error
}

// AuthMiddleware проверяет JWT access токен. При валидном токене
// субъект асинхронно записывается в зеркало пользователей, чтобы
// статистика по ролям считалась локально.
func AuthMiddleware(tokens *service.TokenManager, users UserRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		if users != nil {
			goroutine.SafeGo(func() {
				if err := users.Upsert(context.Background(), &models.User{ID: userID, Role: role}); err != nil {
					logger.Log.WithError(err).Warn("не удалось обновить зеркало пользователей")
				}
			})
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// RequireRole пропускает только пользователей с перечисленными ролями.
// Вешается после AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
			return
		}
		c.Next()
	}
}
