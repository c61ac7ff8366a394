package database

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/utils/auth"
)

var defaultSubjects = []model.Subject{
	{Name: "Mathematics", Description: "Algebra, calculus, geometry and statistics"},
	{Name: "Physics", Description: "Mechanics, electromagnetism and modern physics"},
	{Name: "Chemistry", Description: "Organic, inorganic and physical chemistry"},
	{Name: "Biology", Description: "Cell biology, genetics and ecology"},
	{Name: "Computer Science", Description: "Programming, algorithms and systems"},
	{Name: "English", Description: "Literature, grammar and composition"},
	{Name: "History", Description: "World and regional history"},
}

// SeedSubjects inserts the default subject taxonomy. Existing names are left
// untouched so the seed is safe to rerun.
func (s *GORMStore) SeedSubjects() error {
	for _, subject := range defaultSubjects {
		var existing model.Subject
		err := s.db.Where("name = ?", subject.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.db.Create(&subject).Error; err != nil {
			return err
		}
		log.Printf("Seeded subject: %s", subject.Name)
	}
	return nil
}

type demoAccount struct {
	username string
	email    string
	fullName string
	role     model.Role
}

var demoAccounts = []demoAccount{
	{username: "demo_student", email: "student@example.com", fullName: "Demo Student", role: model.RoleStudent},
	{username: "demo_teacher", email: "teacher@example.com", fullName: "Demo Teacher", role: model.RoleTeacher},
}

// SeedDemoAccounts creates one student and one teacher for local development.
// Never call this in production.
func (s *GORMStore) SeedDemoAccounts(password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	for _, acc := range demoAccounts {
		var count int64
		if err := s.db.Model(&model.User{}).Where("username = ?", acc.username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			user := &model.User{
				Username:     acc.username,
				Email:        acc.email,
				PasswordHash: hash,
				FullName:     acc.fullName,
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			return tx.Create(&model.Profile{
				UserID: user.ID,
				Role:   acc.role,
			}).Error
		})
		if err != nil {
			return err
		}
		log.Printf("Seeded demo account: %s (%s)", acc.username, acc.role)
	}
	return nil
}
