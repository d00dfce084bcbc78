package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/tutoring-backend/internal/dto"
	"github.com/ignatzorin/tutoring-backend/internal/http/handlers/common"
	"github.com/ignatzorin/tutoring-backend/internal/service"
)

// PostHandler обслуживает реестр объявлений.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler создаёт новый хэндлер.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// CreatePost POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreatePostRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), userID, req.SubjectID, req.Title, req.Description, req.ImageURL)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost GET /posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), postID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListPosts GET /posts?status=&subject_id=&page=&size=
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, size, limit, offset := common.GetPagination(c)

	posts, total, err := h.posts.ListPosts(
		c.Request.Context(),
		c.Query("status"),
		c.Query("subject_id"),
		nil,
		limit,
		offset,
	)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedPostsResponse{
		Items:      posts,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// ListMyPosts GET /posts/my
func (h *PostHandler) ListMyPosts(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, size, limit, offset := common.GetPagination(c)

	posts, total, err := h.posts.ListPosts(
		c.Request.Context(),
		c.Query("status"),
		c.Query("subject_id"),
		&userID,
		limit,
		offset,
	)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedPostsResponse{
		Items:      posts,
		Pagination: dto.NewPagination(total, page, size),
	})
}

// UpdatePost PUT /posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
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

	var req dto.UpdatePostRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), postID, userID, service.PostUpdate{
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost DELETE /posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
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

	if err := h.posts.DeletePost(c.Request.Context(), postID, userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubjects GET /subjects
func (h *PostHandler) ListSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subjects": h.posts.ListSubjects()})
}
