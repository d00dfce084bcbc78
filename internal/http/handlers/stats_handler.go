package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/tutoring-backend/internal/http/handlers/common"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

// StatsHandler отдаёт сводную статистику для админки.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler создаёт новый хэндлер.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetDashboard GET /admin/stats
func (h *StatsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.stats.GetDashboardStats(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// InvalidateCache POST /admin/stats/invalidate
func (h *StatsHandler) InvalidateCache(c *gin.Context) {
	h.stats.InvalidateCache()
	common.RespondSuccess(c, http.StatusOK, "кэш статистики сброшен", nil)
}
