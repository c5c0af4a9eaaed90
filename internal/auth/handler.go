package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plumeblog/plume/internal/platform/httpx"
	"github.com/plumeblog/plume/internal/validate"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        Middleware
	authLimit func(http.Handler) http.Handler
}

// NewHandler constructs a Handler. authLimit is the login-attempt rate
// limiting middleware applied to register and login only.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware, authLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, authLimit: authLimit}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authLimit)
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
	})
	r.Post("/refresh", h.handleRefresh)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Get("/profile", h.handleProfile)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	user, creds, err := h.service.Register(r.Context(), req.Email, req.Password, req.RoleID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", slog.Int64("userID", user.ID))
	httpx.Respond(w, http.StatusCreated, "user registered successfully", SessionResponse{
		User:         user,
		Token:        creds.Token,
		RefreshToken: creds.RefreshToken,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	user, creds, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "login successful", SessionResponse{
		User:         user,
		Token:        creds.Token,
		RefreshToken: creds.RefreshToken,
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	token, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "token refreshed", map[string]string{"token": token})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, httpx.AuthenticationError("authentication required"))
		return
	}

	user, err := h.service.Lookup(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	httpx.Respond(w, http.StatusOK, "", map[string]*User{"user": user})
}
