package comments

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers comment routes. Reads are public; writes require
// authentication and, for updates and deletes, ownership or admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/post/{postId}", h.handleListByPost)
	r.Get("/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Post("/", h.handleCreate)

		r.Group(func(r chi.Router) {
			r.Use(h.mw.RequireOwnership(h.commentOwner))
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}
