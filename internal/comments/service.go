package comments

import (
	"context"

	"github.com/plumeblog/plume/internal/shared"
)

// Service wraps comment business rules over the repository.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListByPost returns one page of a post's comments. An absent post is a
// not-found, not an empty page.
func (s *Service) ListByPost(ctx context.Context, postID int64, page, limit int) ([]Comment, shared.Meta, error) {
	if err := s.repo.PostExists(ctx, postID); err != nil {
		return nil, shared.Meta{}, err
	}
	comments, total, err := s.repo.ListByPost(ctx, postID, limit, shared.Offset(page, limit))
	if err != nil {
		return nil, shared.Meta{}, err
	}
	return comments, shared.NewMeta(total, page, limit), nil
}

// Get fetches one comment.
func (s *Service) Get(ctx context.Context, id int64) (*Comment, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a comment after confirming the target post exists.
func (s *Service) Create(ctx context.Context, authorID int64, req CreateCommentRequest) (*Comment, error) {
	if err := s.repo.PostExists(ctx, req.PostID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, authorID, req)
}

// Update replaces a comment's content.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCommentRequest) (*Comment, error) {
	return s.repo.Update(ctx, id, req.Content)
}

// Delete removes a comment.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AuthorID resolves a comment's owner for authorization checks.
func (s *Service) AuthorID(ctx context.Context, id int64) (int64, error) {
	return s.repo.AuthorID(ctx, id)
}
