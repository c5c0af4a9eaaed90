package posts

// CreatePostRequest is the post creation body.
type CreatePostRequest struct {
	Title      string  `json:"title" validate:"required,max=200"`
	Content    string  `json:"content" validate:"required,min=10"`
	Excerpt    *string `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	CoverImage *string `json:"coverImage,omitempty" validate:"omitempty,url"`
}

// UpdatePostRequest is the partial update body; absent fields keep their
// stored values.
type UpdatePostRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content    *string `json:"content,omitempty" validate:"omitempty,min=10"`
	Excerpt    *string `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	CoverImage *string `json:"coverImage,omitempty" validate:"omitempty,url"`
}

// ListPostsRequest is the normalized listing query.
type ListPostsRequest struct {
	Query     string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}
