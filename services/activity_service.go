package services

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
)

// ActivityService records and summarizes per-user activity. It backs the
// dashboard feed, the learning streak and the achievement list.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService creates a new activity service
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// LogActivity appends one entry to the user's feed.
func (s *ActivityService) LogActivity(ctx context.Context, userID uint, activityType model.ActivityType, text, badge string, metadata datatypes.JSON) error {
	entry := &model.UserActivity{
		UserID:       userID,
		ActivityType: activityType,
		Text:         text,
		Badge:        badge,
		Metadata:     metadata,
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// RecentActivity returns the newest feed entries, newest first.
func (s *ActivityService) RecentActivity(ctx context.Context, userID uint, limit int) ([]model.UserActivity, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []model.UserActivity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// LearningStreak counts consecutive days with at least one activity, ending
// today or yesterday. A user who did nothing today keeps yesterday's streak
// until the day rolls over.
func (s *ActivityService) LearningStreak(ctx context.Context, userID uint) (int, error) {
	var stamps []time.Time
	err := s.db.WithContext(ctx).
		Model(&model.UserActivity{}).
		Where("user_id = ? AND created_at > ?", userID, time.Now().AddDate(-1, 0, 0)).
		Order("created_at DESC").
		Limit(2000).
		Pluck("created_at", &stamps).Error
	if err != nil {
		return 0, err
	}
	if len(stamps) == 0 {
		return 0, nil
	}

	days := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		day := truncateDay(ts.UTC())
		if len(days) == 0 || !days[len(days)-1].Equal(day) {
			days = append(days, day)
		}
	}

	today := truncateDay(time.Now().UTC())
	cursor := days[0]
	if today.Sub(cursor) > 24*time.Hour {
		return 0, nil
	}

	streak := 1
	for _, d := range days[1:] {
		if cursor.Sub(d) != 24*time.Hour {
			break
		}
		streak++
		cursor = d
	}
	return streak, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AwardAchievement stores a badge for the user, once per title.
func (s *ActivityService) AwardAchievement(ctx context.Context, userID uint, title, badge string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Achievement{}).
		Where("user_id = ? AND title = ?", userID, title).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return s.db.WithContext(ctx).Create(&model.Achievement{
		UserID:    userID,
		Title:     title,
		Badge:     badge,
		AwardedAt: time.Now().UTC(),
	}).Error
}

// Achievements lists earned badges, newest first.
func (s *ActivityService) Achievements(ctx context.Context, userID uint) ([]model.Achievement, error) {
	var list []model.Achievement
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("awarded_at DESC, id DESC").
		Find(&list).Error
	return list, err
}
