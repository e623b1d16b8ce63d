package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jotbook/jotbook/internal/note"
)

// RegisterNoteRoutes wires note CRUD, search and tag endpoints. The /user
// subroutes are registered before /:noteId so the more specific paths win.
func RegisterNoteRoutes(r fiber.Router, h *note.Handler) {
	notes := r.Group("/notes")
	notes.Post("/create", h.Create)
	notes.Get("/user/:userId/search", h.Search)
	notes.Get("/user/:userId/tags", h.ListTags)
	notes.Get("/user/:userId", h.ListForOwner)
	notes.Get("/:noteId", h.GetByID)
	notes.Put("/:noteId", h.Update)
	notes.Delete("/:noteId", h.Delete)
}
