package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/utils/auth"
)

var (
	// ErrUsernameTaken signals a registration against an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidRole signals a role outside {student, teacher}.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials is the expected outcome for a bad username or
	// password. It is not an internal error.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrProfileMissing signals a user without a profile. The register
	// transaction makes this impossible, so hitting it is a consistency
	// violation, never a silent default.
	ErrProfileMissing = errors.New("profile missing for user")
	// ErrRoleMismatch signals an operation reserved for the other role.
	ErrRoleMismatch = errors.New("operation not allowed for this role")
	// ErrTeacherProfileExists signals a duplicate teacher profile.
	ErrTeacherProfileExists = errors.New("teacher profile already exists")
)

// AccountService owns the identity and profile lifecycle.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates a new account service
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     model.Role

	// Optional demographic fields
	Bio         string
	PhoneNumber string
	Address     string
	Grade       string
}

// Register creates the user and its profile in a single transaction, so an
// identity can never exist without a profile.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		profile := &model.Profile{
			UserID:      user.ID,
			Role:        in.Role,
			Bio:         in.Bio,
			PhoneNumber: in.PhoneNumber,
			Address:     in.Address,
			Grade:       in.Grade,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		user.Profile = profile
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair. A wrong pair returns
// ErrInvalidCredentials, indistinguishable between unknown user and wrong
// password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &user, nil
}

// ResolveRole returns the role of an authenticated user from its profile.
func (s *AccountService) ResolveRole(ctx context.Context, userID uint) (model.Role, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}

// GetProfile loads the profile for a user. A missing profile is a
// ConsistencyViolation surfaced as ErrProfileMissing.
func (s *AccountService) GetProfile(ctx context.Context, userID uint) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrProfileMissing, userID)
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateProfileInput carries owner-editable profile fields. The role is
// immutable after creation and deliberately absent here.
type UpdateProfileInput struct {
	FullName    *string
	Bio         *string
	PhoneNumber *string
	Address     *string
	Grade       *string
	PictureKey  *string
}

// UpdateProfile applies owner edits to the user and profile rows.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*model.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return profile, s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.FullName != nil {
			if err := tx.Model(&model.User{}).Where("id = ?", userID).
				Update("full_name", *in.FullName).Error; err != nil {
				return err
			}
		}

		if in.Bio != nil {
			profile.Bio = *in.Bio
		}
		if in.PhoneNumber != nil {
			profile.PhoneNumber = *in.PhoneNumber
		}
		if in.Address != nil {
			profile.Address = *in.Address
		}
		if in.Grade != nil {
			profile.Grade = *in.Grade
		}
		if in.PictureKey != nil {
			profile.PictureKey = *in.PictureKey
		}

		return tx.Save(profile).Error
	})
}

// TeacherProfileInput carries the explicit teacher extension workflow input.
type TeacherProfileInput struct {
	Bio             string
	SubjectIDs      []uint
	ExperienceYears int
	Qualification   string
	HourlyRate      *float64
	PictureKey      string
}

// CreateTeacherProfile creates the 1:1 teacher extension. Only teacher
// accounts may have one, and only one per account.
func (s *AccountService) CreateTeacherProfile(ctx context.Context, userID uint, in TeacherProfileInput) (*model.TeacherProfile, error) {
	role, err := s.ResolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleTeacher {
		return nil, fmt.Errorf("%w: teacher profile requires teacher role", ErrRoleMismatch)
	}

	tp := &model.TeacherProfile{
		UserID:          userID,
		Bio:             in.Bio,
		ExperienceYears: in.ExperienceYears,
		Qualification:   in.Qualification,
		HourlyRate:      in.HourlyRate,
		PictureKey:      in.PictureKey,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.TeacherProfile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTeacherProfileExists
		}

		if len(in.SubjectIDs) > 0 {
			var subjects []model.Subject
			if err := tx.Where("id IN ?", in.SubjectIDs).Find(&subjects).Error; err != nil {
				return err
			}
			tp.Subjects = subjects
		}

		return tx.Create(tp).Error
	})
	if err != nil {
		return nil, err
	}

	return tp, nil
}

// ChangePassword verifies the current password, stores the new hash and
// invalidates all outstanding tokens.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return err
	}

	if err := auth.VerifyPassword(user.PasswordHash, current); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash": hash,
		"token_version": gorm.Expr("token_version + ?", 1),
	}).Error
}

// DeleteAccount removes the user. Database cascades take the profile, teacher
// profile and all owned content with it.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Delete(&model.User{}, userID).Error
}
