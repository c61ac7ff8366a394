package video

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/services/storage"
	"github.com/eduverse/eduverse-api/utils/cache"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/response"
	"github.com/eduverse/eduverse-api/utils/validation"
)

// VideoHandler handles the video catalog routes.
type VideoHandler struct {
	content    *services.ContentService
	activity   *services.ActivityService
	dashboards *services.DashboardService
	spaces     *storage.SpacesClient
}

// NewVideoHandler creates a new video handler. The spaces client may be nil
// in environments without object storage; uploads then require a file_key.
func NewVideoHandler(db *gorm.DB, spaces *storage.SpacesClient, redisCache *cache.RedisCache) *VideoHandler {
	accounts := services.NewAccountService(db)
	content := services.NewContentService(db)
	activity := services.NewActivityService(db)
	return &VideoHandler{
		content:    content,
		activity:   activity,
		dashboards: services.NewDashboardService(accounts, content, activity, redisCache),
		spaces:     spaces,
	}
}

// VideoResponse is the catalog entry shape.
type VideoResponse struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	FileURL         string         `json:"file_url,omitempty"`
	ThumbnailURL    string         `json:"thumbnail_url,omitempty"`
	DurationSeconds int            `json:"duration_seconds"`
	ViewCount       uint           `json:"view_count"`
	TeacherID       uint           `json:"teacher_id"`
	Subject         *model.Subject `json:"subject,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

func (h *VideoHandler) toResponse(v *model.VideoContent) VideoResponse {
	res := VideoResponse{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		DurationSeconds: v.DurationSeconds,
		ViewCount:       v.ViewCount,
		TeacherID:       v.TeacherID,
		Subject:         v.Subject,
		CreatedAt:       v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if h.spaces != nil {
		if v.FileKey != "" {
			res.FileURL = h.spaces.FileURL(v.FileKey)
		}
		if v.ThumbnailKey != "" {
			res.ThumbnailURL = h.spaces.FileURL(v.ThumbnailKey)
		}
	}
	return res
}

// Upload accepts a multipart video upload from a teacher.
func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	title := validation.SanitizeString(c.FormValue("title"))
	if title == "" {
		return response.ValidationError(c, map[string]string{"title": "Title is required"})
	}
	description := validation.SanitizeString(c.FormValue("description"))

	var subjectID *uint
	if raw := c.FormValue("subject_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.ValidationError(c, map[string]string{"subject_id": "Invalid subject ID"})
		}
		u := uint(id)
		subjectID = &u
	}

	duration := 0
	if raw := c.FormValue("duration_seconds"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			return response.ValidationError(c, map[string]string{"duration_seconds": "Invalid duration"})
		}
		duration = d
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, map[string]string{"file": "Video file is required"})
	}

	if err := services.ValidateVideoFilename(file.Filename); err != nil {
		return response.ValidationError(c, map[string]string{"file": "Only .mp4, .webm and .ogg files are supported"})
	}

	if h.spaces == nil {
		return response.InternalServerError(c, "Object storage is not configured")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer src.Close()

	fileKey := storage.GenerateKey(storage.PrefixVideos, file.Filename)
	if _, err := h.spaces.UploadFile(c.Context(), fileKey, src, storage.ContentTypeFor(file.Filename)); err != nil {
		return response.InternalServerError(c, "Failed to store video")
	}

	thumbnailKey := ""
	if thumb, err := c.FormFile("thumbnail"); err == nil {
		tsrc, err := thumb.Open()
		if err == nil {
			thumbnailKey = storage.GenerateKey(storage.PrefixVideoThumbnails, thumb.Filename)
			if _, err := h.spaces.UploadFile(c.Context(), thumbnailKey, tsrc, storage.ContentTypeFor(thumb.Filename)); err != nil {
				thumbnailKey = ""
			}
			tsrc.Close()
		}
	}

	video, err := h.content.CreateVideo(c.Context(), user.ID, services.CreateVideoInput{
		Title:           title,
		Description:     description,
		FileKey:         fileKey,
		ThumbnailKey:    thumbnailKey,
		DurationSeconds: duration,
		SubjectID:       subjectID,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create video")
	}

	_ = h.activity.LogActivity(c.Context(), user.ID, model.ActivityTypeVideo,
		fmt.Sprintf("Uploaded video %q", video.Title), "upload",
		datatypes.JSON(fmt.Sprintf(`{"video_id":%d}`, video.ID)))
	h.dashboards.InvalidateDashboard(c.Context(), user.ID)

	return response.Created(c, h.toResponse(video))
}

// List returns published videos, optionally filtered by subject.
func (h *VideoHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "20"))

	var subjectID *uint
	if raw := c.Query("subject_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.ValidationError(c, map[string]string{"subject_id": "Invalid subject ID"})
		}
		u := uint(id)
		subjectID = &u
	}

	videos, total, err := h.content.ListVideos(c.Context(), subjectID, page, perPage)
	if err != nil {
		return response.InternalServerError(c, "Failed to list videos")
	}

	items := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		items = append(items, h.toResponse(&videos[i]))
	}

	return response.Paginated(c, items, response.CalculatePagination(page, perPage, total))
}

// Get returns one video with its notes.
func (h *VideoHandler) Get(c *fiber.Ctx) error {
	videoID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	video, err := h.content.GetVideo(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to load video")
	}

	res := h.toResponse(video)
	return response.Success(c, fiber.Map{
		"video": res,
		"notes": video.Notes,
	})
}

// Watch records that the caller watched the video and bumps its view count.
func (h *VideoHandler) Watch(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	videoID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	if err := h.content.MarkWatched(c.Context(), user.ID, videoID); err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to record watch")
	}

	_ = h.activity.LogActivity(c.Context(), user.ID, model.ActivityTypeVideo,
		"Watched a video", "watch",
		datatypes.JSON(fmt.Sprintf(`{"video_id":%d}`, videoID)))
	h.dashboards.InvalidateDashboard(c.Context(), user.ID)

	return response.SuccessWithMessage(c, "Watch recorded", nil)
}

// Delete removes a video the caller owns.
func (h *VideoHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	videoID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid video ID")
	}

	video, err := h.content.GetVideo(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to load video")
	}

	if err := h.content.DeleteVideo(c.Context(), user.ID, videoID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			return response.Forbidden(c, "You do not own this video")
		case errors.Is(err, services.ErrContentNotFound):
			return response.NotFound(c, "Video not found")
		default:
			return response.InternalServerError(c, "Failed to delete video")
		}
	}

	// Best effort storage cleanup after the row is gone.
	if h.spaces != nil {
		if video.FileKey != "" {
			_ = h.spaces.DeleteFile(c.Context(), video.FileKey)
		}
		if video.ThumbnailKey != "" {
			_ = h.spaces.DeleteFile(c.Context(), video.ThumbnailKey)
		}
	}

	h.dashboards.InvalidateDashboard(c.Context(), user.ID)
	return response.NoContent(c)
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return uint(id), nil
}
