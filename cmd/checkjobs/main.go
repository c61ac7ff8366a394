package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eduverse/eduverse-api/model"
)

// checkjobs prints the recent maintenance job runs so a stuck or failing
// schedule is visible without querying the database by hand.
func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		dbHost,
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		dbPort,
		os.Getenv("DB_SSL_MODE"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	limit := 20
	if raw := os.Getenv("CHECKJOBS_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var runs []model.CronJobLog
	err = db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		log.Fatalf("Failed to query job runs: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No job runs recorded yet.")
		return
	}

	fmt.Printf("%-26s %-10s %-22s %s\n", "JOB", "STATUS", "STARTED", "DETAIL")
	for _, run := range runs {
		detail := run.Message
		if run.Status == "failed" {
			detail = run.ErrorMsg
		}
		if run.Status == "running" && time.Since(run.StartedAt) > time.Hour {
			detail = "possibly stuck (running for " + time.Since(run.StartedAt).Round(time.Minute).String() + ")"
		}
		fmt.Printf("%-26s %-10s %-22s %s\n",
			run.JobName,
			run.Status,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			detail,
		)
	}
}
