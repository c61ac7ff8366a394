package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/eduverse/eduverse-api/config"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// GORM DB access
	GetDB() interface{} // Returns *gorm.DB for GORMStore, *sql.DB for PostgreSQLStore
}

// PostgreSQLStore is the raw connection used for DDL GORM cannot express,
// enum types in particular. It runs before AutoMigrate.
type PostgreSQLStore struct {
	db *sql.DB
}

func Start() (*PostgreSQLStore, error) {
	getEnv, err := config.Get()

	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME, getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		fmt.Println("Unable to Start PostgresSQL Databse.")
		return nil, err
	}

	log.Println("Successfully connected to PostgresSQL Database.")
	return &PostgreSQLStore{
		db: db,
	}, nil
}

func (s *PostgreSQLStore) Init() error {
	log.Println("Initializing PostgresSQL Database.")
	err := s.Initialize()
	return err
}

func (s *PostgreSQLStore) Close() error {
	log.Println("Closing PostgresSQL Database.")
	return s.db.Close()
}

// HealthCheck verifies the database connection is alive
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

// GetDB returns the underlying *sql.DB
func (s *PostgreSQLStore) GetDB() interface{} {
	return s.db
}
