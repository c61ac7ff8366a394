package content

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/services/storage"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/response"
	"github.com/eduverse/eduverse-api/utils/validation"
)

// ContentHandler handles generic content uploads plus profile pictures.
type ContentHandler struct {
	db       *gorm.DB
	content  *services.ContentService
	accounts *services.AccountService
	spaces   *storage.SpacesClient
}

// NewContentHandler creates a new content handler
func NewContentHandler(db *gorm.DB, spaces *storage.SpacesClient) *ContentHandler {
	return &ContentHandler{
		db:       db,
		content:  services.NewContentService(db),
		accounts: services.NewAccountService(db),
		spaces:   spaces,
	}
}

// Upload stores an arbitrary video or note file with minimal metadata.
func (h *ContentHandler) Upload(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	title := validation.SanitizeString(c.FormValue("title"))
	if title == "" {
		return response.ValidationError(c, map[string]string{"title": "Title is required"})
	}

	contentType := model.ContentType(c.FormValue("content_type"))
	if !contentType.Valid() {
		return response.ValidationError(c, map[string]string{"content_type": "Content type must be 'video' or 'note'"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, map[string]string{"file": "File is required"})
	}

	if contentType == model.ContentTypeVideo {
		if err := services.ValidateVideoFilename(file.Filename); err != nil {
			return response.ValidationError(c, map[string]string{"file": "Only .mp4, .webm and .ogg files are supported"})
		}
	}

	if h.spaces == nil {
		return response.InternalServerError(c, "Object storage is not configured")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer src.Close()

	key := storage.GenerateKey(storage.PrefixUploads, file.Filename)
	if _, err := h.spaces.UploadFile(c.Context(), key, src, storage.ContentTypeFor(file.Filename)); err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	upload, err := h.content.RecordUpload(c.Context(), user.ID, title, contentType, key)
	if err != nil {
		return response.InternalServerError(c, "Failed to record upload")
	}

	return response.Created(c, fiber.Map{
		"upload":   upload,
		"file_url": h.spaces.FileURL(key),
	})
}

// ListUploads returns the caller's generic uploads.
func (h *ContentHandler) ListUploads(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	uploads, err := h.content.ListUploads(c.Context(), user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list uploads")
	}
	return response.Success(c, uploads)
}

// UploadProfilePicture stores a profile picture on the caller's profile.
func (h *ContentHandler) UploadProfilePicture(c *fiber.Ctx) error {
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

	key := storage.GenerateKey(storage.PrefixProfilePics, file.Filename)
	if _, err := h.spaces.UploadFile(c.Context(), key, src, storage.ContentTypeFor(file.Filename)); err != nil {
		return response.InternalServerError(c, "Failed to store picture")
	}

	if _, err := h.accounts.UpdateProfile(c.Context(), user.ID, services.UpdateProfileInput{
		PictureKey: &key,
	}); err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, fiber.Map{
		"picture_key": key,
		"picture_url": h.spaces.FileURL(key),
	})
}
