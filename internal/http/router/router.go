package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/tutoring-backend/internal/config"
	"github.com/ignatzorin/tutoring-backend/internal/http/handlers"
	"github.com/ignatzorin/tutoring-backend/internal/http/middleware"
	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	postHandler *handlers.PostHandler,
	bidHandler *handlers.BidHandler,
	conversationHandler *handlers.ConversationHandler,
	reportHandler *handlers.ReportHandler,
	reviewHandler *handlers.ReviewHandler,
	statsHandler *handlers.StatsHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
	users middleware.UserRecorder,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	// Публичные маршруты
	api.GET("/posts", postHandler.ListPosts)
	api.GET("/posts/:id", middleware.UUIDValidator("id"), postHandler.GetPost)
	api.GET("/posts/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.GetPostReview)
	api.GET("/subjects", postHandler.ListSubjects)
	api.GET("/tutors/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListTutorReviews)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager, users))
	{
		protected.POST("/posts", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod), postHandler.CreatePost)
		protected.GET("/posts/my", postHandler.ListMyPosts)
		protected.PUT("/posts/:id", middleware.UUIDValidator("id"), postHandler.UpdatePost)
		protected.DELETE("/posts/:id", middleware.UUIDValidator("id"), postHandler.DeletePost)

		protected.POST("/posts/:id/bids", middleware.UUIDValidator("id"), bidHandler.SubmitBid)
		protected.GET("/posts/:id/bids", middleware.UUIDValidator("id"), bidHandler.ListPostBids)
		protected.GET("/bids/my", bidHandler.ListMyBids)
		protected.POST("/bids/:id/accept", middleware.UUIDValidator("id"), bidHandler.AcceptBid)
		protected.DELETE("/bids/:id", middleware.UUIDValidator("id"), bidHandler.WithdrawBid)

		protected.GET("/rooms", conversationHandler.ListMyRooms)
		protected.GET("/rooms/:id", middleware.UUIDValidator("id"), conversationHandler.GetRoom)
		protected.GET("/rooms/:id/messages", middleware.UUIDValidator("id"), conversationHandler.ListMessages)
		protected.POST("/rooms/:id/messages", middleware.UUIDValidator("id"), conversationHandler.SendMessage)
		protected.POST("/rooms/:id/status", middleware.UUIDValidator("id"), conversationHandler.AdvanceStatus)

		protected.POST("/posts/:id/reports", middleware.UUIDValidator("id"), reportHandler.CreateReport)
		protected.GET("/reports/my", reportHandler.ListMyReports)
		protected.GET("/reports/:id", middleware.UUIDValidator("id"), reportHandler.GetReport)
		protected.DELETE("/reports/:id", middleware.UUIDValidator("id"), reportHandler.DeleteReport)

		protected.POST("/posts/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.CreateReview)
		protected.GET("/reviews/my", reviewHandler.ListMyReviews)
		protected.PUT("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.UpdateReview)
		protected.DELETE("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.DeleteReview)

		protected.POST("/media", mediaHandler.Upload)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Delete)
	}

	// Админские маршруты
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager, users), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/reports", reportHandler.ListAllReports)
		admin.POST("/reports/:id/reviewed", middleware.UUIDValidator("id"), reportHandler.MarkReviewed)
		admin.POST("/rooms/:id/resolve", middleware.UUIDValidator("id"), reportHandler.ResolveRoom)
		admin.GET("/stats", statsHandler.GetDashboard)
		admin.POST("/stats/invalidate", statsHandler.InvalidateCache)
	}

	return r
}
