package teacher

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/services/storage"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/response"
	"github.com/eduverse/eduverse-api/utils/validation"
)

// TeacherHandler handles the teacher profile workflow.
type TeacherHandler struct {
	db       *gorm.DB
	accounts *services.AccountService
	spaces   *storage.SpacesClient
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(db *gorm.DB, spaces *storage.SpacesClient) *TeacherHandler {
	return &TeacherHandler{
		db:       db,
		accounts: services.NewAccountService(db),
		spaces:   spaces,
	}
}

// CreateTeacherProfileRequest represents the teacher-profile creation request
type CreateTeacherProfileRequest struct {
	Bio             string   `json:"bio,omitempty"`
	SubjectIDs      []uint   `json:"subject_ids,omitempty"`
	ExperienceYears int      `json:"experience_years,omitempty"`
	Qualification   string   `json:"qualification,omitempty"`
	HourlyRate      *float64 `json:"hourly_rate,omitempty"`
}

// CreateProfile creates the caller's teacher profile. One per account.
func (h *TeacherHandler) CreateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateTeacherProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	tp, err := h.accounts.CreateTeacherProfile(c.Context(), user.ID, services.TeacherProfileInput{
		Bio:             validation.SanitizeString(req.Bio),
		SubjectIDs:      req.SubjectIDs,
		ExperienceYears: req.ExperienceYears,
		Qualification:   validation.SanitizeString(req.Qualification),
		HourlyRate:      req.HourlyRate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoleMismatch):
			return response.Forbidden(c, "Only teacher accounts can create a teacher profile")
		case errors.Is(err, services.ErrTeacherProfileExists):
			return response.Conflict(c, "Teacher profile already exists")
		default:
			return response.InternalServerError(c, "Failed to create teacher profile")
		}
	}

	return response.Created(c, tp)
}

// GetProfile returns the caller's teacher profile with its subjects.
func (h *TeacherHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var tp model.TeacherProfile
	err := h.db.WithContext(c.Context()).
		Preload("Subjects").
		Where("user_id = ?", user.ID).
		First(&tp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Teacher profile not found")
		}
		return response.InternalServerError(c, "Failed to load teacher profile")
	}

	return response.Success(c, tp)
}

// UploadPicture stores a profile picture for the teacher profile.
func (h *TeacherHandler) UploadPicture(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if h.spaces == nil {
		return response.InternalServerError(c, "Object storage is not configured")
	}

	file, err := c.FormFile("picture")
	if err != nil {
		return response.ValidationError(c, map[string]string{"picture": "Picture file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer src.Close()

	key := storage.GenerateKey(storage.PrefixTeacherProfiles, file.Filename)
	if _, err := h.spaces.UploadFile(c.Context(), key, src, storage.ContentTypeFor(file.Filename)); err != nil {
		return response.InternalServerError(c, "Failed to store picture")
	}

	res := h.db.WithContext(c.Context()).
		Model(&model.TeacherProfile{}).
		Where("user_id = ?", user.ID).
		Update("picture_key", key)
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to update teacher profile")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Teacher profile not found")
	}

	return response.Success(c, fiber.Map{
		"picture_key": key,
		"picture_url": h.spaces.FileURL(key),
	})
}
