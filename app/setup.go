package app

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/api"
	"github.com/eduverse/eduverse-api/config"
	"github.com/eduverse/eduverse-api/database"
	"github.com/eduverse/eduverse-api/router"
	"github.com/eduverse/eduverse-api/services/cron"
	"github.com/eduverse/eduverse-api/services/storage"
	"github.com/eduverse/eduverse-api/utils/auth"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Enum types must exist before AutoMigrate references them.
	rawStore, err := database.Start()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}
	if err := rawStore.Init(); err != nil {
		print("Failed to initialize database enums\n")
		return err
	}
	rawStore.Close()

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	// Seed the default subject taxonomy
	if err := store.SeedSubjects(); err != nil {
		print("Warning: Failed to seed subjects\n")
	}

	// Demo accounts for local development only
	if getEnv.GO_ENV != "production" && os.Getenv("SEED_DEMO_ACCOUNTS") == "true" {
		if err := store.SeedDemoAccounts("password123"); err != nil {
			print("Warning: Failed to seed demo accounts\n")
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
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
					print("Warning: Failed to initialize object storage for cron jobs\n")
					spaces = nil
				}
			}

			cronManager = cron.NewCronManager(db, auth.NewBlacklistService(db), spaces)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	// Custom Logger
	app.Use(logger.New())

	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()

}
