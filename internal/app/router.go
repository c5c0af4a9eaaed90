package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/plumeblog/plume/internal/auth"
	"github.com/plumeblog/plume/internal/comments"
	"github.com/plumeblog/plume/internal/posts"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	PostsHandler    *posts.Handler
	CommentsHandler *comments.Handler

	// GeneralLimit wraps the /api subtree. The health endpoint stays outside
	// of it so probes are never throttled.
	GeneralLimit func(http.Handler) http.Handler

	StartedAt time.Time
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(params.StartedAt).Round(time.Second).String(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		if params.GeneralLimit != nil {
			api.Use(params.GeneralLimit)
		}
		api.Route("/auth", params.AuthHandler.MountRoutes)
		api.Route("/posts", params.PostsHandler.MountRoutes)
		api.Route("/comments", params.CommentsHandler.MountRoutes)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "route not found",
			"path":    req.URL.Path,
		})
	})

	return r
}
