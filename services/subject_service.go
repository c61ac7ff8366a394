package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
)

// ErrSubjectExists signals a duplicate subject name.
var ErrSubjectExists = errors.New("subject already exists")

// SubjectService owns the subject taxonomy.
type SubjectService struct {
	db *gorm.DB
}

// NewSubjectService creates a new subject service
func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{db: db}
}

// CreateSubject adds a subject with a unique name.
func (s *SubjectService) CreateSubject(ctx context.Context, name, description string) (*model.Subject, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Subject{}).
		Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSubjectExists
	}

	subject := &model.Subject{Name: name, Description: description}
	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubjectExists
		}
		return nil, err
	}
	return subject, nil
}

// ListSubjects returns all subjects ordered by name.
func (s *SubjectService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	err := s.db.WithContext(ctx).Order("name ASC").Find(&subjects).Error
	return subjects, err
}

// GetSubject loads one subject.
func (s *SubjectService) GetSubject(ctx context.Context, id uint) (*model.Subject, error) {
	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &subject, nil
}

// DeleteSubject removes a subject. Videos referencing it fall back to no
// subject instead of disappearing.
func (s *SubjectService) DeleteSubject(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Subject{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}
