package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/tutoring-backend/internal/dto"
	"github.com/ignatzorin/tutoring-backend/internal/http/handlers/common"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

// BidHandler обслуживает отклики репетиторов.
type BidHandler struct {
	bids *service.BidService
}

// NewBidHandler создаёт новый хэндлер.
func NewBidHandler(bids *service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// SubmitBid POST /posts/:id/bids
func (h *BidHandler) SubmitBid(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateBidRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.SubmitBid(c.Request.Context(), userID, role, postID, req.ProposedPrice, req.QuestionLevel, req.Description)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// ListPostBids GET /posts/:id/bids
func (h *BidHandler) ListPostBids(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bids, err := h.bids.ListBidsForPost(c.Request.Context(), postID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// ListMyBids GET /bids/my
func (h *BidHandler) ListMyBids(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, size, limit, offset := common.GetPagination(c)

	bids, total, err := h.bids.ListBidsForTutor(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedBidsResponse{
		Items:      bids,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// AcceptBid POST /bids/:id/accept
func (h *BidHandler) AcceptBid(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, room, err := h.bids.AcceptBid(c.Request.Context(), userID, bidID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AcceptBidResponse{Bid: bid, Room: room})
}

// WithdrawBid DELETE /bids/:id
func (h *BidHandler) WithdrawBid(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.bids.WithdrawBid(c.Request.Context(), userID, bidID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
