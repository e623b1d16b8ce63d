package note

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jotbook/jotbook/internal/apperr"
	"github.com/jotbook/jotbook/internal/validate"
)

// Handler exposes note HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a note HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Title     string   `json:"title" validate:"required"`
	Content   string   `json:"content" validate:"required"`
	UserID    string   `json:"userId" validate:"required"`
	Tags      []string `json:"tags"`
	Important bool     `json:"isImportant"`
	Color     string   `json:"color"`
}

type updateRequest struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Tags      *[]string `json:"tags"`
	Important *bool     `json:"isImportant"`
	Color     *string   `json:"color"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	Tags      []string  `json:"tags"`
	Important bool      `json:"isImportant"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ownerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toResponse(n Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		UserID:    n.OwnerID,
		Tags:      n.Tags,
		Important: n.Important,
		Color:     n.Color,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toResponses(notes []Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toResponse(n))
	}
	return out
}

// Create inserts a new note for an owner.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.Validation("Title, content, and userId are required")
	}

	n, err := h.svc.Create(c.UserContext(), CreateInput{
		Title:     req.Title,
		Content:   req.Content,
		OwnerID:   req.UserID,
		Tags:      req.Tags,
		Important: req.Important,
		Color:     req.Color,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Note created successfully",
		"note":    toResponse(n),
	})
}

// ListForOwner returns an owner's notes with optional filtering and sorting.
func (h *Handler) ListForOwner(c *fiber.Ctx) error {
	ownerID := c.Params("userId")

	field, err := ParseSortField(c.Query("sortBy"))
	if err != nil {
		return err
	}
	srt := Sort{Field: field, Ascending: c.Query("order") == "asc"}
	f := Filter{Tag: c.Query("tag"), Important: c.Query("important") == "true"}

	notes, err := h.svc.ListForOwner(c.UserContext(), ownerID, f, srt)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(notes),
		"notes":   toResponses(notes),
	})
}

// GetByID returns a single note with its owner resolved.
func (h *Handler) GetByID(c *fiber.Ctx) error {
	n, owner, err := h.svc.GetByID(c.UserContext(), c.Params("noteId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"note":    toResponse(n),
		"user":    ownerResponse{Name: owner.Name, Email: owner.Email},
	})
}

// Update applies a partial patch to a note.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation(err.Error())
	}

	n, err := h.svc.Update(c.UserContext(), c.Params("noteId"), UpdateInput{
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		Important: req.Important,
		Color:     req.Color,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Note updated successfully",
		"note":    toResponse(n),
	})
}

// Delete removes a note and returns its final snapshot.
func (h *Handler) Delete(c *fiber.Ctx) error {
	n, err := h.svc.Delete(c.UserContext(), c.Params("noteId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":     true,
		"message":     "Note deleted successfully",
		"deletedNote": toResponse(n),
	})
}

// Search matches an owner's notes by query and/or tag.
func (h *Handler) Search(c *fiber.Ctx) error {
	notes, err := h.svc.Search(c.UserContext(), c.Params("userId"), c.Query("query"), c.Query("tag"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(notes),
		"notes":   toResponses(notes),
	})
}

// ListTags returns the distinct tags across an owner's notes.
func (h *Handler) ListTags(c *fiber.Ctx) error {
	tags, err := h.svc.ListTags(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"tags":    tags,
	})
}
