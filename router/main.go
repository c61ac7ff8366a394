package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/config"
	"github.com/eduverse/eduverse-api/database"
	"github.com/eduverse/eduverse-api/handlers"
	auth_handlers "github.com/eduverse/eduverse-api/handlers/auth"
	content_handlers "github.com/eduverse/eduverse-api/handlers/content"
	dashboard_handlers "github.com/eduverse/eduverse-api/handlers/dashboard"
	subject_handlers "github.com/eduverse/eduverse-api/handlers/subject"
	teacher_handlers "github.com/eduverse/eduverse-api/handlers/teacher"
	video_handlers "github.com/eduverse/eduverse-api/handlers/video"
	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/services/storage"
	"github.com/eduverse/eduverse-api/utils/auth"
	"github.com/eduverse/eduverse-api/utils/cache"
	"github.com/eduverse/eduverse-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration")
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "eduverse-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        time.Duration(getEnv.JWT_ACCESS_MINUTES) * time.Minute,
		RefreshExpiry: time.Duration(getEnv.JWT_REFRESH_HOURS) * time.Hour,
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection and dashboards
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and dashboard caching will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage client; nil when unconfigured so local development
	// works without a bucket.
	var spaces *storage.SpacesClient
	if getEnv.SPACES_KEY != "" {
		spaces, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_KEY,
			SecretKey: getEnv.SPACES_SECRET,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Uploads will be disabled.", err)
		}
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(db, redisCache)
	videoHandler := video_handlers.NewVideoHandler(db, spaces, redisCache)
	subjectHandler := subject_handlers.NewSubjectHandler(db)
	teacherHandler := teacher_handlers.NewTeacherHandler(db, spaces)
	contentHandler := content_handlers.NewContentHandler(db, spaces)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// Page-flow routes. Unauthenticated dashboard requests bounce to the
	// login page; wrong-role requests bounce home.
	app.Get("/", authMiddleware.Optional(), dashboardHandler.Home)
	app.Post("/register/", authHandler.Register)
	if bruteForceProtection != nil {
		app.Post("/login/", bruteForceProtection.CheckAttempts(), authHandler.Login)
	} else {
		app.Post("/login/", authHandler.Login)
	}
	app.Post("/logout/", authMiddleware.Required(), authHandler.LogoutAndRedirect)
	app.Get("/student-dashboard/", authMiddleware.RequireDashboard(model.RoleStudent), dashboardHandler.StudentDashboard)
	app.Get("/teacher-dashboard/", authMiddleware.RequireDashboard(model.RoleTeacher), dashboardHandler.TeacherDashboard)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempts(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Patch("/", authHandler.UpdateProfile)
	profileGroup.Post("/picture", contentHandler.UploadProfilePicture)
	profileGroup.Delete("/", authHandler.DeleteAccount)

	// Teacher profile routes (teacher role only)
	teacherGroup := api.Group("/teacher-profile", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher))
	teacherGroup.Post("/", teacherHandler.CreateProfile)
	teacherGroup.Get("/", teacherHandler.GetProfile)
	teacherGroup.Post("/picture", teacherHandler.UploadPicture)

	// Subject routes
	subjectGroup := api.Group("/subjects")
	subjectGroup.Get("/", subjectHandler.List)
	subjectGroup.Get("/:id", subjectHandler.Get)
	subjectGroup.Post("/", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher), subjectHandler.Create)
	subjectGroup.Delete("/:id", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher), subjectHandler.Delete)

	// Video catalog routes
	videoGroup := api.Group("/videos")
	videoGroup.Get("/", videoHandler.List)
	videoGroup.Get("/:id", videoHandler.Get)
	videoGroup.Get("/:id/notes", videoHandler.ListNotes)
	videoGroup.Post("/", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher), videoHandler.Upload)
	videoGroup.Delete("/:id", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher), videoHandler.Delete)
	videoGroup.Post("/:id/notes", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher), videoHandler.CreateNote)
	videoGroup.Get("/notes/:note_id/download", authMiddleware.Required(), videoHandler.DownloadNote)
	videoGroup.Delete("/notes/:note_id", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher), videoHandler.DeleteNote)
	videoGroup.Post("/:id/watch", authMiddleware.Required(), videoHandler.Watch)

	// Generic upload routes
	uploadGroup := api.Group("/uploads", authMiddleware.Required())
	uploadGroup.Post("/", contentHandler.Upload)
	uploadGroup.Get("/", contentHandler.ListUploads)

	// Dashboard API mirrors of the page routes
	dashGroup := api.Group("/dashboard")
	dashGroup.Get("/student", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleStudent), dashboardHandler.StudentDashboard)
	dashGroup.Get("/teacher", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher), dashboardHandler.TeacherDashboard)
}
