package database

import (
	"log"
)

func (s *PostgreSQLStore) Initialize() error {
	// Init all enums
	log.Println("Initializing PostgresSQL Database.", "Initializing Enums")
	if err := s.InitEnums(); err != nil {
		return err
	}
	return nil
}

// InitEnums creates the database enum types AutoMigrate references through
// column type tags. Creation is idempotent.
func (s *PostgreSQLStore) InitEnums() error {
	query := `
		DO $$
		BEGIN
           	IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
				CREATE TYPE user_role AS ENUM ('student', 'teacher');
           	END IF;
		END $$;

		DO $$
		BEGIN
           	IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'upload_content_type') THEN
				CREATE TYPE upload_content_type AS ENUM ('video', 'note');
           	END IF;
		END $$;
	`
	_, err := s.db.Exec(query)

	return err
}
