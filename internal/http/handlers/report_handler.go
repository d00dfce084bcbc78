package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/tutoring-backend/internal/dto"
	"github.com/ignatzorin/tutoring-backend/internal/http/handlers/common"
	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

// ReportHandler обслуживает жалобы и админские решения по ним.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler создаёт новый хэндлер.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// CreateReport POST /posts/:id/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateReportRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.CreateReport(c.Request.Context(), userID, postID, req.Detail)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// GetReport GET /reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), reportID, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListMyReports GET /reports/my?direction=sent|received
func (h *ReportHandler) ListMyReports(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, size, limit, offset := common.GetPagination(c)
	direction := strings.ToLower(c.DefaultQuery("direction", "sent"))

	var (
		reports []models.Report
		total   int
	)
	switch direction {
	case "sent":
		reports, total, err = h.reports.ListBySender(c.Request.Context(), userID, limit, offset)
	case "received":
		reports, total, err = h.reports.ListByReceiver(c.Request.Context(), userID, limit, offset)
	default:
		common.RespondBadRequest(c, "direction должен быть sent или received")
		return
	}
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedReportsResponse{
		Items:      reports,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// ListAllReports GET /admin/reports?status=
func (h *ReportHandler) ListAllReports(c *gin.Context) {
	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, size, limit, offset := common.GetPagination(c)

	reports, total, err := h.reports.ListAll(c.Request.Context(), role, c.Query("status"), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedReportsResponse{
		Items:      reports,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// MarkReviewed POST /admin/reports/:id/reviewed
func (h *ReportHandler) MarkReviewed(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.reports.MarkReviewed(c.Request.Context(), userID, role, reportID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "жалоба отмечена как рассмотренная", nil)
}

// ResolveRoom POST /admin/rooms/:id/resolve
func (h *ReportHandler) ResolveRoom(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	roomID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveRoomRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var isNormal bool
	switch strings.ToLower(req.Resolution) {
	case "normal":
		isNormal = true
	case "refund":
		isNormal = false
	default:
		common.RespondBadRequest(c, "resolution должен быть normal или refund")
		return
	}

	room, err := h.reports.ResolveRoom(c.Request.Context(), userID, role, roomID, isNormal)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// DeleteReport DELETE /reports/:id
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.reports.DeleteReport(c.Request.Context(), userID, reportID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
