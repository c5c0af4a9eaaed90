// Package comments implements comment CRUD scoped to posts.
package comments

import (
	"time"

	"github.com/plumeblog/plume/internal/auth"
)

// Author is the public slice of a comment's author embedded in responses.
type Author struct {
	ID    int64     `json:"id"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// PostRef identifies the post a comment belongs to.
type PostRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Comment is a stored comment with its author and post reference.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	PostID    int64     `json:"postId"`
	AuthorID  int64     `json:"authorId"`
	Author    Author    `json:"author"`
	Post      PostRef   `json:"post"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
