package middleware

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/utils/auth"
)

func openMiddlewareTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get raw connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&model.User{}, &model.Profile{}, &model.JWTTokenBlacklist{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(auth.JWTConfig{
		Secret:        "middleware-test-secret",
		Expiry:        15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "eduverse-api",
	})
}

func createMiddlewareTestUser(t *testing.T, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()

	user := &model.User{Username: username, PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := db.Create(&model.Profile{UserID: user.ID, Role: role}).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return user
}

func accessTokenFor(t *testing.T, jwtManager *auth.JWTManager, user *model.User, role model.Role) string {
	t.Helper()

	token, _, err := jwtManager.GenerateAccessToken(user, role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func TestRequiredRejectsMissingToken(t *testing.T) {
	db := openMiddlewareTestDB(t)
	m := NewAuthMiddleware(newTestJWTManager(), db)

	app := fiber.New()
	app.Get("/protected", m.Required(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
}

func TestRequiredAcceptsValidToken(t *testing.T) {
	db := openMiddlewareTestDB(t)
	jwtManager := newTestJWTManager()
	m := NewAuthMiddleware(jwtManager, db)
	user := createMiddlewareTestUser(t, db, "alice", model.RoleStudent)

	app := fiber.New()
	app.Get("/protected", m.Required(), func(c *fiber.Ctx) error {
		id, ok := GetUserID(c)
		if !ok || id != user.ID {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtManager, user, model.RoleStudent))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestRequiredRejectsRefreshToken(t *testing.T) {
	db := openMiddlewareTestDB(t)
	jwtManager := newTestJWTManager()
	m := NewAuthMiddleware(jwtManager, db)
	user := createMiddlewareTestUser(t, db, "alice", model.RoleStudent)

	refresh, _, err := jwtManager.GenerateRefreshToken(user, model.RoleStudent)
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	app := fiber.New()
	app.Get("/protected", m.Required(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
}

func TestRequiredRejectsStaleTokenVersion(t *testing.T) {
	db := openMiddlewareTestDB(t)
	jwtManager := newTestJWTManager()
	m := NewAuthMiddleware(jwtManager, db)
	user := createMiddlewareTestUser(t, db, "alice", model.RoleStudent)

	token := accessTokenFor(t, jwtManager, user, model.RoleStudent)

	if err := db.Model(&model.User{}).Where("id = ?", user.ID).
		Update("token_version", gorm.Expr("token_version + 1")).Error; err != nil {
		t.Fatalf("failed to bump token version: %v", err)
	}

	app := fiber.New()
	app.Get("/protected", m.Required(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
	db := openMiddlewareTestDB(t)
	jwtManager := newTestJWTManager()
	m := NewAuthMiddleware(jwtManager, db)
	user := createMiddlewareTestUser(t, db, "alice", model.RoleStudent)

	app := fiber.New()
	app.Post("/videos", m.Required(), m.RequireRole(model.RoleTeacher), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	req := httptest.NewRequest("POST", "/videos", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtManager, user, model.RoleStudent))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusForbidden)
	}
}

func TestRequireDashboardRedirectsAnonymousToLogin(t *testing.T) {
	db := openMiddlewareTestDB(t)
	m := NewAuthMiddleware(newTestJWTManager(), db)

	app := fiber.New()
	app.Get("/student-dashboard/", m.RequireDashboard(model.RoleStudent), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/student-dashboard/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/login/" {
		t.Errorf("Location = %q, want %q", loc, "/login/")
	}
}

func TestRequireDashboardRedirectsWrongRoleHome(t *testing.T) {
	db := openMiddlewareTestDB(t)
	jwtManager := newTestJWTManager()
	m := NewAuthMiddleware(jwtManager, db)
	user := createMiddlewareTestUser(t, db, "alice", model.RoleStudent)

	app := fiber.New()
	app.Get("/teacher-dashboard/", m.RequireDashboard(model.RoleTeacher), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/teacher-dashboard/", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtManager, user, model.RoleStudent))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
}

func TestRequireDashboardAllowsMatchingRole(t *testing.T) {
	db := openMiddlewareTestDB(t)
	jwtManager := newTestJWTManager()
	m := NewAuthMiddleware(jwtManager, db)
	user := createMiddlewareTestUser(t, db, "alice", model.RoleStudent)

	app := fiber.New()
	app.Get("/student-dashboard/", m.RequireDashboard(model.RoleStudent), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/student-dashboard/", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtManager, user, model.RoleStudent))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestOptionalAllowsAnonymous(t *testing.T) {
	db := openMiddlewareTestDB(t)
	jwtManager := newTestJWTManager()
	m := NewAuthMiddleware(jwtManager, db)
	user := createMiddlewareTestUser(t, db, "alice", model.RoleTeacher)

	app := fiber.New()
	app.Get("/", m.Optional(), func(c *fiber.Ctx) error {
		if role, ok := GetUserRole(c); ok {
			return c.SendString(string(role))
		}
		return c.SendString("anonymous")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("anonymous status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtManager, user, model.RoleTeacher))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("authenticated status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}
