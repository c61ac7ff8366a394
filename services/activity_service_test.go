package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/eduverse/eduverse-api/model"
)

func logActivityAt(t *testing.T, db *gorm.DB, userID uint, at time.Time) {
	t.Helper()
	entry := &model.UserActivity{
		UserID:       userID,
		ActivityType: model.ActivityTypeVideo,
		Text:         "Watched a video",
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create activity: %v", err)
	}
	if err := db.Model(entry).Update("created_at", at).Error; err != nil {
		t.Fatalf("failed to pin created_at: %v", err)
	}
}

func TestLearningStreakConsecutiveDays(t *testing.T) {
	db := openTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "streaker", model.RoleStudent)

	now := time.Now().UTC()
	for _, daysAgo := range []int{0, 1, 2} {
		logActivityAt(t, db, user.ID, now.AddDate(0, 0, -daysAgo))
	}
	// A gap: day 4 has activity but day 3 does not, so it must not count.
	logActivityAt(t, db, user.ID, now.AddDate(0, 0, -4))

	streak, err := svc.LearningStreak(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("LearningStreak failed: %v", err)
	}
	if streak != 3 {
		t.Errorf("expected streak 3, got %d", streak)
	}
}

func TestLearningStreakKeepsYesterday(t *testing.T) {
	db := openTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "pauser", model.RoleStudent)

	now := time.Now().UTC()
	logActivityAt(t, db, user.ID, now.AddDate(0, 0, -1))
	logActivityAt(t, db, user.ID, now.AddDate(0, 0, -2))

	streak, err := svc.LearningStreak(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("LearningStreak failed: %v", err)
	}
	if streak != 2 {
		t.Errorf("expected streak 2 ending yesterday, got %d", streak)
	}
}

func TestLearningStreakBrokenAfterTwoIdleDays(t *testing.T) {
	db := openTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "lapsed", model.RoleStudent)

	now := time.Now().UTC()
	logActivityAt(t, db, user.ID, now.AddDate(0, 0, -3))
	logActivityAt(t, db, user.ID, now.AddDate(0, 0, -4))

	streak, err := svc.LearningStreak(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("LearningStreak failed: %v", err)
	}
	if streak != 0 {
		t.Errorf("expected broken streak 0, got %d", streak)
	}
}

func TestLearningStreakNoActivity(t *testing.T) {
	db := openTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "idle", model.RoleStudent)

	streak, err := svc.LearningStreak(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("LearningStreak failed: %v", err)
	}
	if streak != 0 {
		t.Errorf("expected streak 0, got %d", streak)
	}
}

func TestAwardAchievementOncePerTitle(t *testing.T) {
	db := openTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "collector", model.RoleStudent)

	for i := 0; i < 3; i++ {
		if err := svc.AwardAchievement(context.Background(), user.ID, "First Video", "star"); err != nil {
			t.Fatalf("AwardAchievement failed: %v", err)
		}
	}

	list, err := svc.Achievements(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Achievements failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 achievement, got %d", len(list))
	}
}

func TestRecentActivityNewestFirst(t *testing.T) {
	db := openTestDB(t)
	svc := NewActivityService(db)
	user := createTestUser(t, db, "busy", model.RoleStudent)

	now := time.Now().UTC()
	for i := 0; i < 15; i++ {
		logActivityAt(t, db, user.ID, now.Add(time.Duration(-i)*time.Hour))
	}

	entries, err := svc.RecentActivity(context.Background(), user.ID, 10)
	if err != nil {
		t.Fatalf("RecentActivity failed: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Errorf("entries out of order at %d", i)
		}
	}
}
