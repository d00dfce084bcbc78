package dto

import (
	"github.com/ignatzorin/tutoring-backend/internal/models"
)

// Pagination represents pagination metadata
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata from a total row count
func NewPagination(total, page, size int) Pagination {
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return Pagination{Total: total, Page: page, Size: size, TotalPages: totalPages}
}

// PaginatedPostsResponse represents a page of posts
type PaginatedPostsResponse struct {
	Items      []models.Post `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// PaginatedBidsResponse represents a page of bids
type PaginatedBidsResponse struct {
	Items      []models.Bid `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

// PaginatedRoomsResponse represents a page of rooms
type PaginatedRoomsResponse struct {
	Items      []models.Room `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// PaginatedMessagesResponse represents a page of messages ordered by seq
type PaginatedMessagesResponse struct {
	Items      []models.Message `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

// PaginatedReportsResponse represents a page of reports
type PaginatedReportsResponse struct {
	Items      []models.Report `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// ReviewListResponse represents reviews about a tutor with the average rating
type ReviewListResponse struct {
	Items        []models.Review `json:"items"`
	AverageStars float64         `json:"average_stars"`
	Pagination   Pagination      `json:"pagination"`
}

// AcceptBidResponse represents the outcome of accepting a bid
type AcceptBidResponse struct {
	Bid  *models.Bid  `json:"bid"`
	Room *models.Room `json:"room"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
