package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Repository defines persistence operations for comments.
type Repository interface {
	ListByPost(ctx context.Context, postID int64, limit, offset int) ([]Comment, int, error)
	Get(ctx context.Context, id int64) (*Comment, error)
	Create(ctx context.Context, authorID int64, req CreateCommentRequest) (*Comment, error)
	Update(ctx context.Context, id int64, content string) (*Comment, error)
	Delete(ctx context.Context, id int64) error
	AuthorID(ctx context.Context, id int64) (int64, error)
	PostExists(ctx context.Context, postID int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const commentColumns = `
	c.id, c.content, c.post_id, c.author_id, c.created_at, c.updated_at,
	u.id, u.email, r.id, r.name,
	p.id, p.title`

const commentJoins = `
	FROM comments c
	JOIN users u ON u.id = c.author_id
	JOIN roles r ON r.id = u.role_id
	JOIN posts p ON p.id = c.post_id`

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	err := row.Scan(
		&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.ID, &c.Author.Email, &c.Author.Role.ID, &c.Author.Role.Name,
		&c.Post.ID, &c.Post.Title,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PostExists reports whether the post a comment targets is present.
func (r *PGRepository) PostExists(ctx context.Context, postID int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return fmt.Errorf("comments: post exists: %w", err)
	}
	if !exists {
		return httpx.NotFoundError("post not found")
	}
	return nil
}

// ListByPost returns one page of a post's comments, newest first, plus the
// total count.
func (r *PGRepository) ListByPost(ctx context.Context, postID int64, limit, offset int) ([]Comment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM comments WHERE post_id = $1`, postID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("comments: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT`+commentColumns+commentJoins+`
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`, postID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("comments: scan: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("comments: list rows: %w", err)
	}
	return comments, total, nil
}

// Get fetches one comment.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Comment, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+commentColumns+commentJoins+` WHERE c.id = $1`, id)
	c, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFoundError("comment not found")
		}
		return nil, fmt.Errorf("comments: get: %w", err)
	}
	return c, nil
}

// Create inserts a comment.
func (r *PGRepository) Create(ctx context.Context, authorID int64, req CreateCommentRequest) (*Comment, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO comments (content, post_id, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id`,
		req.Content, req.PostID, authorID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("comments: create: %w", err)
	}
	return r.Get(ctx, id)
}

// Update replaces a comment's content.
func (r *PGRepository) Update(ctx context.Context, id int64, content string) (*Comment, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE comments SET content = $2, updated_at = now() WHERE id = $1`, id, content)
	if err != nil {
		return nil, fmt.Errorf("comments: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, httpx.NotFoundError("comment not found")
	}
	return r.Get(ctx, id)
}

// Delete removes a comment.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("comments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFoundError("comment not found")
	}
	return nil
}

// AuthorID resolves the owning user of a comment for ownership checks.
func (r *PGRepository) AuthorID(ctx context.Context, id int64) (int64, error) {
	var authorID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM comments WHERE id = $1`, id).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, httpx.NotFoundError("comment not found")
		}
		return 0, fmt.Errorf("comments: author id: %w", err)
	}
	return authorID, nil
}

var _ Repository = (*PGRepository)(nil)
