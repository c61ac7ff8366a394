package subject

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/utils/response"
	"github.com/eduverse/eduverse-api/utils/validation"
)

// SubjectHandler handles the subject taxonomy routes.
type SubjectHandler struct {
	subjects *services.SubjectService
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(db *gorm.DB) *SubjectHandler {
	return &SubjectHandler{subjects: services.NewSubjectService(db)}
}

// CreateSubjectRequest represents a subject creation request
type CreateSubjectRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty"`
}

// Create adds a subject. Teacher only; the route guard enforces that.
func (h *SubjectHandler) Create(c *fiber.Ctx) error {
	var req CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	name := validation.SanitizeString(req.Name)
	if len(name) < 2 {
		return response.ValidationError(c, map[string]string{"name": "Name must be at least 2 characters"})
	}

	subject, err := h.subjects.CreateSubject(c.Context(), name, validation.SanitizeString(req.Description))
	if err != nil {
		if errors.Is(err, services.ErrSubjectExists) {
			return response.Conflict(c, "Subject already exists")
		}
		return response.InternalServerError(c, "Failed to create subject")
	}

	return response.Created(c, subject)
}

// List returns all subjects.
func (h *SubjectHandler) List(c *fiber.Ctx) error {
	subjects, err := h.subjects.ListSubjects(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list subjects")
	}
	return response.Success(c, subjects)
}

// Get returns one subject.
func (h *SubjectHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	subject, err := h.subjects.GetSubject(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to load subject")
	}
	return response.Success(c, subject)
}

// Delete removes a subject. Videos that referenced it keep existing without
// a subject.
func (h *SubjectHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	if err := h.subjects.DeleteSubject(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to delete subject")
	}
	return response.NoContent(c)
}
