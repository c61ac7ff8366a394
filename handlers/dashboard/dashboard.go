package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services"
	"github.com/eduverse/eduverse-api/utils/cache"
	"github.com/eduverse/eduverse-api/utils/middleware"
	"github.com/eduverse/eduverse-api/utils/response"
)

// DashboardHandler serves the role-dispatched landing pages.
type DashboardHandler struct {
	dashboards *services.DashboardService
	content    *services.ContentService
	subjects   *services.SubjectService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *gorm.DB, redisCache *cache.RedisCache) *DashboardHandler {
	accounts := services.NewAccountService(db)
	content := services.NewContentService(db)
	activity := services.NewActivityService(db)

	return &DashboardHandler{
		dashboards: services.NewDashboardService(accounts, content, activity, redisCache),
		content:    content,
		subjects:   services.NewSubjectService(db),
	}
}

// Home serves the landing data for everyone. An authenticated visitor gets
// their dashboard path alongside it so the client can offer the jump.
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	subjects, err := h.subjects.ListSubjects(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load landing page")
	}

	featured, err := h.content.RecommendedVideos(c.Context(), 4)
	if err != nil {
		return response.InternalServerError(c, "Failed to load landing page")
	}

	payload := fiber.Map{
		"subjects": subjects,
		"featured": featured,
	}

	if role, ok := middleware.GetUserRole(c); ok {
		dashboard := "/student-dashboard/"
		if role == model.RoleTeacher {
			dashboard = "/teacher-dashboard/"
		}
		payload["role"] = role
		payload["dashboard"] = dashboard
	}

	return response.Success(c, payload)
}

// StudentDashboard returns the student aggregate. The route guard has
// already verified authentication and role.
func (h *DashboardHandler) StudentDashboard(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	role, _ := middleware.GetUserRole(c)

	dash, err := h.dashboards.StudentDashboard(c.Context(), user, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}
	return response.Success(c, dash)
}

// TeacherDashboard returns the teacher aggregate.
func (h *DashboardHandler) TeacherDashboard(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	role, _ := middleware.GetUserRole(c)

	dash, err := h.dashboards.TeacherDashboard(c.Context(), user, role)
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}
	return response.Success(c, dash)
}
