package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/tutoring-backend/internal/dto"
	"github.com/ignatzorin/tutoring-backend/internal/http/handlers/common"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

// ConversationHandler обслуживает комнаты и переписку.
type ConversationHandler struct {
	conversations *service.ConversationService
}

// NewConversationHandler создаёт новый хэндлер.
func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// ListMyRooms GET /rooms
func (h *ConversationHandler) ListMyRooms(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, size, limit, offset := common.GetPagination(c)

	rooms, total, err := h.conversations.ListRoomsForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedRoomsResponse{
		Items:      rooms,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// GetRoom GET /rooms/:id
func (h *ConversationHandler) GetRoom(c *gin.Context) {
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

	room, err := h.conversations.GetRoom(c.Request.Context(), roomID, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// SendMessage POST /rooms/:id/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	roomID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SendMessageRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	msg, err := h.conversations.AppendMessage(c.Request.Context(), roomID, userID, req.Content, req.AttachmentURL)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// ListMessages GET /rooms/:id/messages
func (h *ConversationHandler) ListMessages(c *gin.Context) {
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

	page, size, limit, offset := common.GetPagination(c)

	messages, total, err := h.conversations.ListMessages(c.Request.Context(), roomID, userID, role, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedMessagesResponse{
		Items:      messages,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// AdvanceStatus POST /rooms/:id/status
func (h *ConversationHandler) AdvanceStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	roomID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AdvanceRoomStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	room, err := h.conversations.AdvanceStatus(c.Request.Context(), roomID, userID, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}
