package database

import (
	"os"
	"testing"

	"github.com/eduverse/eduverse-api/model"
)

// Exercises the full Postgres boot path: enum creation, AutoMigrate, seeding.
// Needs a running database, so it is opt-in.
func TestPostgresBoot(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	rawStore, err := Start()
	if err != nil {
		t.Fatalf("failed to connect raw store: %v", err)
	}
	if err := rawStore.Init(); err != nil {
		t.Fatalf("failed to create enums: %v", err)
	}
	rawStore.Close()

	store, err := StartGORM()
	if err != nil {
		t.Fatalf("failed to connect GORM store: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := store.HealthCheck(); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.SeedSubjects(); err != nil {
		t.Fatalf("failed to seed subjects: %v", err)
	}

	var count int64
	if err := store.DB().Model(&model.Subject{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count subjects: %v", err)
	}
	if count < int64(len(defaultSubjects)) {
		t.Errorf("subject count = %d, want at least %d", count, len(defaultSubjects))
	}
}
