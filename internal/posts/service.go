package posts

import (
	"context"

	"github.com/plumeblog/plume/internal/shared"
	"github.com/plumeblog/plume/internal/validate"
)

// Service wraps post business rules over the repository.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of posts plus pagination metadata.
func (s *Service) List(ctx context.Context, params validate.ListParams) ([]Post, shared.Meta, error) {
	posts, total, err := s.repo.List(ctx, ListPostsRequest{
		Query:     params.Query,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Limit:     params.Limit,
		Offset:    shared.Offset(params.Page, params.Limit),
	})
	if err != nil {
		return nil, shared.Meta{}, err
	}
	return posts, shared.NewMeta(total, params.Page, params.Limit), nil
}

// Search runs the advanced search, which also matches author emails.
func (s *Service) Search(ctx context.Context, query, sortBy, sortOrder string) ([]Post, error) {
	return s.repo.Search(ctx, query, sortBy, sortOrder)
}

// Get fetches one post with comments.
func (s *Service) Get(ctx context.Context, id int64) (*PostDetail, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new post owned by authorID.
func (s *Service) Create(ctx context.Context, authorID int64, req CreatePostRequest) (*Post, error) {
	return s.repo.Create(ctx, authorID, req)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePostRequest) (*Post, error) {
	return s.repo.Update(ctx, id, req)
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AuthorID resolves a post's owner for authorization checks.
func (s *Service) AuthorID(ctx context.Context, id int64) (int64, error) {
	return s.repo.AuthorID(ctx, id)
}
