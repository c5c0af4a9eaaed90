package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Repository defines persistence operations for posts.
type Repository interface {
	List(ctx context.Context, req ListPostsRequest) ([]Post, int, error)
	Search(ctx context.Context, query, sortBy, sortOrder string) ([]Post, error)
	Get(ctx context.Context, id int64) (*PostDetail, error)
	Create(ctx context.Context, authorID int64, req CreatePostRequest) (*Post, error)
	Update(ctx context.Context, id int64, req UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, id int64) error
	AuthorID(ctx context.Context, id int64) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// sortColumns whitelists the ORDER BY targets; it must stay in sync with the
// sortBy values the validation layer admits.
var sortColumns = map[string]string{
	"createdAt": "p.created_at",
	"title":     "p.title",
	"updatedAt": "p.updated_at",
}

func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "p.created_at"
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

const postColumns = `
	p.id, p.title, p.content, p.excerpt, p.cover_image, p.author_id, p.created_at, p.updated_at,
	u.id, u.email, r.id, r.name,
	(SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count`

const postJoins = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN roles r ON r.id = u.role_id`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.CoverImage, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.ID, &p.Author.Email, &p.Author.Role.ID, &p.Author.Role.Name,
		&p.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of posts matching the optional search term, plus the
// total match count.
func (r *PGRepository) List(ctx context.Context, req ListPostsRequest) ([]Post, int, error) {
	const filter = `
	WHERE ($1 = ''
		OR p.title ILIKE '%' || $1 || '%'
		OR p.content ILIKE '%' || $1 || '%'
		OR p.excerpt ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*)`+postJoins+filter, req.Query).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("posts: count: %w", err)
	}

	sql := `SELECT` + postColumns + postJoins + filter +
		` ORDER BY ` + orderClause(req.SortBy, req.SortOrder) +
		` LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, sql, req.Query, req.Limit, req.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("posts: list: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("posts: scan: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("posts: list rows: %w", err)
	}
	return posts, total, nil
}

// Search matches posts against title, content, excerpt and author email.
func (r *PGRepository) Search(ctx context.Context, query, sortBy, sortOrder string) ([]Post, error) {
	sql := `SELECT` + postColumns + postJoins + `
	WHERE p.title ILIKE '%' || $1 || '%'
		OR p.content ILIKE '%' || $1 || '%'
		OR p.excerpt ILIKE '%' || $1 || '%'
		OR u.email ILIKE '%' || $1 || '%'
	ORDER BY ` + orderClause(sortBy, sortOrder)
	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("posts: search: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("posts: scan: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("posts: search rows: %w", err)
	}
	return posts, nil
}

// Get fetches one post with its comments, newest comment first.
func (r *PGRepository) Get(ctx context.Context, id int64) (*PostDetail, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+postColumns+postJoins+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFoundError("post not found")
		}
		return nil, fmt.Errorf("posts: get: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.content, c.author_id, c.created_at, u.id, u.email, r.id, r.name
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN roles r ON r.id = u.role_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("posts: get comments: %w", err)
	}
	defer rows.Close()

	detail := &PostDetail{Post: *p, Comments: []PostComment{}}
	for rows.Next() {
		var c PostComment
		if err := rows.Scan(&c.ID, &c.Content, &c.AuthorID, &c.CreatedAt, &c.Author.ID, &c.Author.Email, &c.Author.Role.ID, &c.Author.Role.Name); err != nil {
			return nil, fmt.Errorf("posts: scan comment: %w", err)
		}
		detail.Comments = append(detail.Comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("posts: comment rows: %w", err)
	}
	return detail, nil
}

// Create inserts a post and returns it with its author embedded.
func (r *PGRepository) Create(ctx context.Context, authorID int64, req CreatePostRequest) (*Post, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, content, excerpt, cover_image, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id`,
		req.Title, req.Content, req.Excerpt, req.CoverImage, authorID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("posts: create: %w", err)
	}
	detail, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &detail.Post, nil
}

// Update applies a partial update; nil fields keep their stored values.
func (r *PGRepository) Update(ctx context.Context, id int64, req UpdatePostRequest) (*Post, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			excerpt = COALESCE($4, excerpt),
			cover_image = COALESCE($5, cover_image),
			updated_at = now()
		WHERE id = $1`,
		id, req.Title, req.Content, req.Excerpt, req.CoverImage)
	if err != nil {
		return nil, fmt.Errorf("posts: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, httpx.NotFoundError("post not found")
	}
	detail, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &detail.Post, nil
}

// Delete removes a post. Comments are removed by the schema's cascade.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("posts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFoundError("post not found")
	}
	return nil
}

// AuthorID resolves the owning user of a post for ownership checks.
func (r *PGRepository) AuthorID(ctx context.Context, id int64) (int64, error) {
	var authorID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, id).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, httpx.NotFoundError("post not found")
		}
		return 0, fmt.Errorf("posts: author id: %w", err)
	}
	return authorID, nil
}

var _ Repository = (*PGRepository)(nil)
