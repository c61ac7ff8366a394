package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	// All variables
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration
	JWT_SECRET         string
	JWT_ISSUER         string
	JWT_ACCESS_MINUTES int
	JWT_REFRESH_HOURS  int
	// Redis Configuration
	REDIS_URL      string
	REDIS_PASSWORD string
	REDIS_DB       string
	// Spaces (S3-compatible) Configuration
	SPACES_KEY      string
	SPACES_SECRET   string
	SPACES_BUCKET   string
	SPACES_REGION   string
	SPACES_ENDPOINT string
	SPACES_CDN_URL  string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	accessMinutes, err := strconv.Atoi(os.Getenv("JWT_ACCESS_MINUTES"))
	if err != nil || accessMinutes <= 0 {
		accessMinutes = 15
	}

	refreshHours, err := strconv.Atoi(os.Getenv("JWT_REFRESH_HOURS"))
	if err != nil || refreshHours <= 0 {
		refreshHours = 24 * 7
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// JWT
		JWT_SECRET:         os.Getenv("JWT_SECRET"),
		JWT_ISSUER:         os.Getenv("JWT_ISSUER"),
		JWT_ACCESS_MINUTES: accessMinutes,
		JWT_REFRESH_HOURS:  refreshHours,
		// Redis
		REDIS_URL:      os.Getenv("REDIS_URL"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:       os.Getenv("REDIS_DB"),
		// Spaces
		SPACES_KEY:      os.Getenv("SPACES_KEY"),
		SPACES_SECRET:   os.Getenv("SPACES_SECRET"),
		SPACES_BUCKET:   os.Getenv("SPACES_BUCKET"),
		SPACES_REGION:   os.Getenv("SPACES_REGION"),
		SPACES_ENDPOINT: os.Getenv("SPACES_ENDPOINT"),
		SPACES_CDN_URL:  os.Getenv("SPACES_CDN_URL"),
	}

	return envVariables, nil
}
