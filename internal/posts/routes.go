package posts

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers post routes. Reads are public; writes require
// authentication and, for updates and deletes, ownership or admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/search/advanced", h.handleSearch)
	r.Get("/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Post("/", h.handleCreate)

		r.Group(func(r chi.Router) {
			r.Use(h.mw.RequireOwnership(h.postOwner))
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}
