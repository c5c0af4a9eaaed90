// Package posts implements blog post listing, search and CRUD.
package posts

import (
	"time"

	"github.com/plumeblog/plume/internal/auth"
)

// Author is the public slice of a post's author embedded in responses.
type Author struct {
	ID    int64     `json:"id"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// Post is a stored blog post with its embedded author.
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Excerpt      *string   `json:"excerpt"`
	CoverImage   *string   `json:"coverImage"`
	AuthorID     int64     `json:"authorId"`
	Author       Author    `json:"author"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PostComment is a comment embedded in a post detail response.
type PostComment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"authorId"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostDetail is a post plus its comments, newest first.
type PostDetail struct {
	Post
	Comments []PostComment `json:"comments"`
}
