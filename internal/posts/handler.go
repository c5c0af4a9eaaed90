package posts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/platform/httpx"
	"github.com/plumeblog/plume/internal/shared"
	"github.com/plumeblog/plume/internal/validate"
)

// PostService is the slice of Service the handler consumes.
type PostService interface {
	List(ctx context.Context, params validate.ListParams) ([]Post, shared.Meta, error)
	Search(ctx context.Context, query, sortBy, sortOrder string) ([]Post, error)
	Get(ctx context.Context, id int64) (*PostDetail, error)
	Create(ctx context.Context, authorID int64, req CreatePostRequest) (*Post, error)
	Update(ctx context.Context, id int64, req UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, id int64) error
	AuthorID(ctx context.Context, id int64) (int64, error)
}

// Handler wires HTTP endpoints for posts.
type Handler struct {
	logger  *slog.Logger
	service PostService
	mw      auth.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service PostService, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

func parsePostID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ValidationError("invalid post id", nil)
	}
	return id, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := validate.ListQuery(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	posts, meta, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "", map[string]any{
		"posts": posts,
		"meta":  meta,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "", map[string]any{"post": post})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, httpx.AuthenticationError("authentication required"))
		return
	}

	var req CreatePostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	post, err := h.service.Create(r.Context(), principal.ID, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("post created", slog.Int64("postID", post.ID), slog.Int64("authorID", principal.ID))
	httpx.Respond(w, http.StatusCreated, "post created successfully", map[string]any{"post": post})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	var req UpdatePostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	post, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "post updated successfully", map[string]any{"post": post})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusNoContent, "post deleted successfully", nil)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := validate.ListQuery(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if params.Query == "" {
		httpx.RespondError(w, h.logger, httpx.ValidationError("search term required", nil))
		return
	}

	posts, err := h.service.Search(r.Context(), params.Query, params.SortBy, params.SortOrder)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "", map[string]any{
		"posts":      posts,
		"searchTerm": params.Query,
		"count":      len(posts),
	})
}

// postOwner resolves the post's author for the ownership middleware. It
// re-fetches the row so the check and the handler agree on existence.
func (h *Handler) postOwner(r *http.Request) (int64, error) {
	id, err := parsePostID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, err
	}
	return h.service.AuthorID(r.Context(), id)
}
