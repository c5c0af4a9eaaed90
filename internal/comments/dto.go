package comments

// CreateCommentRequest is the comment creation body.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
	PostID  int64  `json:"postId" validate:"required,gt=0"`
}

// UpdateCommentRequest is the comment update body.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
