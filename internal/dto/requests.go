package dto

// CreatePostRequest represents the request to create a post
type CreatePostRequest struct {
	SubjectID   string  `json:"subject_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	ImageURL    *string `json:"image_url"`
}

// UpdatePostRequest represents the request to update a post
type UpdatePostRequest struct {
	SubjectID   *string `json:"subject_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// CreateBidRequest represents the request to submit a bid
type CreateBidRequest struct {
	ProposedPrice int64  `json:"proposed_price" binding:"required"`
	QuestionLevel string `json:"question_level" binding:"required"`
	Description   string `json:"description" binding:"required"`
}

// SendMessageRequest represents the request to send a message
type SendMessageRequest struct {
	Content       string  `json:"content" binding:"required"`
	AttachmentURL *string `json:"attachment_url"`
}

// AdvanceRoomStatusRequest represents the request to move a room forward
type AdvanceRoomStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateReportRequest represents the request to file a report
type CreateReportRequest struct {
	Detail string `json:"detail" binding:"required"`
}

// ResolveRoomRequest represents the admin decision on a reported room
type ResolveRoomRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

// CreateReviewRequest represents the request to leave a review
type CreateReviewRequest struct {
	Stars       int     `json:"stars" binding:"required"`
	Description *string `json:"description"`
}

// UpdateReviewRequest represents the request to edit a review
type UpdateReviewRequest struct {
	Stars       int     `json:"stars" binding:"required"`
	Description *string `json:"description"`
}
