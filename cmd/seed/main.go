package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/eduverse/eduverse-api/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Enum types first, then schema, then data.
	rawStore, err := database.Start()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := rawStore.Init(); err != nil {
		log.Fatalf("Failed to initialize enums: %v", err)
	}
	rawStore.Close()

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("EduVerse - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	if err := store.SeedSubjects(); err != nil {
		log.Fatalf("Seeding subjects failed: %v", err)
	}

	if password := os.Getenv("DEMO_ACCOUNT_PASSWORD"); password != "" {
		if err := store.SeedDemoAccounts(password); err != nil {
			log.Fatalf("Seeding demo accounts failed: %v", err)
		}
	} else {
		fmt.Println("DEMO_ACCOUNT_PASSWORD not set, skipping demo accounts.")
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("Seeding completed successfully!")
	fmt.Println(separator)
}
