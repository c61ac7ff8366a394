package video

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/services/storage"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/pdfvalidation"
	"github.com/eduverse/eduverse-api/utils/response"
	"github.com/eduverse/eduverse-api/utils/validation"
)

// noteDownloadTTL bounds how long a note attachment link stays live.
const noteDownloadTTL = 15 * time.Minute

// CreateNote attaches a note to one of the caller's videos. An optional PDF
// attachment is validated and stored alongside the text.
func (h *VideoHandler) CreateNote(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	videoID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	title := validation.SanitizeString(c.FormValue("title"))
	if title == "" {
		return response.ValidationError(c, map[string]string{"title": "Title is required"})
	}
	content := c.FormValue("content")

	fileKey := ""
	if file, err := c.FormFile("file"); err == nil {
		result, err := pdfvalidation.ValidatePDFFile(file, pdfvalidation.NoteLimits)
		if err != nil {
			return response.InternalServerError(c, "Failed to validate attachment")
		}
		if !result.Valid {
			return response.ValidationError(c, map[string]string{"file": result.Error})
		}

		if h.spaces == nil {
			return response.InternalServerError(c, "Object storage is not configured")
		}

		src, err := file.Open()
		if err != nil {
			return response.InternalServerError(c, "Failed to read attachment")
		}
		defer src.Close()

		fileKey = storage.GenerateKey(storage.PrefixNotes, file.Filename)
		if _, err := h.spaces.UploadFile(c.Context(), fileKey, src, storage.ContentTypeFor(file.Filename)); err != nil {
			return response.InternalServerError(c, "Failed to store attachment")
		}
	}

	note, err := h.content.CreateNote(c.Context(), user.ID, services.CreateNoteInput{
		Title:   title,
		Content: content,
		FileKey: fileKey,
		VideoID: videoID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContentNotFound):
			return response.NotFound(c, "Video not found")
		case errors.Is(err, services.ErrNotOwner):
			return response.Forbidden(c, "You do not own this video")
		default:
			return response.InternalServerError(c, "Failed to create note")
		}
	}

	_ = h.activity.LogActivity(c.Context(), user.ID, model.ActivityTypeNote,
		fmt.Sprintf("Added note %q", note.Title), "note",
		datatypes.JSON(fmt.Sprintf(`{"note_id":%d,"video_id":%d}`, note.ID, videoID)))
	h.dashboards.InvalidateDashboard(c.Context(), user.ID)

	return response.Created(c, note)
}

// ListNotes returns the notes attached to a video.
func (h *VideoHandler) ListNotes(c *fiber.Ctx) error {
	videoID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	notes, err := h.content.ListNotes(c.Context(), videoID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notes")
	}
	return response.Success(c, notes)
}

// DownloadNote hands out a short-lived link to a note's PDF attachment.
func (h *VideoHandler) DownloadNote(c *fiber.Ctx) error {
	noteID, err := parseIDParam(c, "note_id")
	if err != nil {
		return response.BadRequest(c, "Invalid note ID")
	}

	note, err := h.content.GetNote(c.Context(), noteID)
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Note not found")
		}
		return response.InternalServerError(c, "Failed to load note")
	}

	if note.FileKey == "" {
		return response.NotFound(c, "Note has no attachment")
	}
	if h.spaces == nil {
		return response.InternalServerError(c, "Object storage is not configured")
	}

	url, err := h.spaces.PresignedURL(note.FileKey, noteDownloadTTL)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate download link")
	}

	return response.Success(c, fiber.Map{"download_url": url, "expires_in": int(noteDownloadTTL.Seconds())})
}

// DeleteNote removes a note from one of the caller's videos.
func (h *VideoHandler) DeleteNote(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	noteID, err := parseIDParam(c, "note_id")
	if err != nil {
		return response.BadRequest(c, "Invalid note ID")
	}

	if err := h.content.DeleteNote(c.Context(), user.ID, noteID); err != nil {
		switch {
		case errors.Is(err, services.ErrContentNotFound):
			return response.NotFound(c, "Note not found")
		case errors.Is(err, services.ErrNotOwner):
			return response.Forbidden(c, "You do not own this note")
		default:
			return response.InternalServerError(c, "Failed to delete note")
		}
	}

	return response.NoContent(c)
}
