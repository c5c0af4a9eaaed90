package comments

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

// CommentService is the slice of Service the handler consumes.
type CommentService interface {
	ListByPost(ctx context.Context, postID int64, page, limit int) ([]Comment, shared.Meta, error)
	Get(ctx context.Context, id int64) (*Comment, error)
	Create(ctx context.Context, authorID int64, req CreateCommentRequest) (*Comment, error)
	Update(ctx context.Context, id int64, req UpdateCommentRequest) (*Comment, error)
	Delete(ctx context.Context, id int64) error
	AuthorID(ctx context.Context, id int64) (int64, error)
}

// Handler wires HTTP endpoints for comments.
type Handler struct {
	logger  *slog.Logger
	service CommentService
	mw      auth.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service CommentService, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

func parseID(raw, message string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.ValidationError(message, nil)
	}
	return id, nil
}

func (h *Handler) handleListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postId"), "invalid post id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	params, err := validate.ListQuery(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	comments, meta, err := h.service.ListByPost(r.Context(), postID, params.Page, params.Limit)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "", map[string]any{
		"comments": comments,
		"meta":     meta,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "invalid comment id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	comment, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "", map[string]any{"comment": comment})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, httpx.AuthenticationError("authentication required"))
		return
	}

	var req CreateCommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	comment, err := h.service.Create(r.Context(), principal.ID, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("comment created", slog.Int64("commentID", comment.ID), slog.Int64("postID", comment.PostID))
	httpx.Respond(w, http.StatusCreated, "comment created successfully", map[string]any{"comment": comment})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "invalid comment id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	var req UpdateCommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	comment, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "comment updated successfully", map[string]any{"comment": comment})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "invalid comment id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusNoContent, "comment deleted successfully", nil)
}

// commentOwner resolves the comment's author for the ownership middleware.
func (h *Handler) commentOwner(r *http.Request) (int64, error) {
	id, err := parseID(chi.URLParam(r, "id"), "invalid comment id")
	if err != nil {
		return 0, err
	}
	return h.service.AuthorID(r.Context(), id)
}
