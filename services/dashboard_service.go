package services

import (
	"context"
	"fmt"
	"time"

	"github.com/eduverse/eduverse-api/model"
	"github.com/eduverse/eduverse-api/utils/cache"
)

const (
	dashboardCacheTTL  = 2 * time.Minute
	recommendedLimit   = 4
	activityFeedLimit  = 10
	watchHistoryLimit  = 5
	recentUploadsLimit = 5
	studentCacheFormat = "dashboard:student:%d"
	teacherCacheFormat = "dashboard:teacher:%d"
)

// WatchCounter reports how many videos a student has watched.
type WatchCounter interface {
	WatchedCount(ctx context.Context, userID uint) (int64, error)
}

// NoteCounter reports how many notes a student has taken.
type NoteCounter interface {
	NotesTaken(ctx context.Context, userID uint) (int64, error)
}

// StreakTracker reports a student's consecutive learning days.
type StreakTracker interface {
	LearningStreak(ctx context.Context, userID uint) (int, error)
}

// AchievementLister reports a student's earned badges.
type AchievementLister interface {
	Achievements(ctx context.Context, userID uint) ([]model.Achievement, error)
}

// ActivityFeeder reports a user's recent activity entries.
type ActivityFeeder interface {
	RecentActivity(ctx context.Context, userID uint, limit int) ([]model.UserActivity, error)
}

// StudentDashboard aggregates everything the student landing page shows.
type StudentDashboard struct {
	User            DashboardUser        `json:"user"`
	WatchedCount    int64                `json:"watched_count"`
	NotesTaken      int64                `json:"notes_taken"`
	LearningStreak  int                  `json:"learning_streak"`
	Achievements    []model.Achievement  `json:"achievements"`
	RecentActivity  []model.UserActivity `json:"recent_activity"`
	Recommendations []model.VideoContent `json:"recommendations"`
	WatchHistory    []model.WatchedVideo `json:"watch_history"`
}

// TeacherDashboard aggregates everything the teacher landing page shows.
type TeacherDashboard struct {
	User           DashboardUser        `json:"user"`
	VideoCount     int64                `json:"video_count"`
	PublishedCount int64                `json:"published_count"`
	TotalViews     int64                `json:"total_views"`
	NoteCount      int64                `json:"note_count"`
	SubjectCount   int64                `json:"subject_count"`
	Videos         []model.VideoContent `json:"videos"`
	RecentActivity []model.UserActivity `json:"recent_activity"`
	HasProfile     bool                 `json:"has_teacher_profile"`
	IsApproved     bool                 `json:"is_approved"`
}

// DashboardUser is the identity slice both dashboards embed.
type DashboardUser struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role"`
}

// DashboardService assembles role-specific dashboards from the content,
// activity and account services. Optional collaborators may be nil; a nil
// collaborator contributes zero values instead of failing the page.
type DashboardService struct {
	accounts *AccountService
	content  *ContentService
	cache    *cache.RedisCache

	watchCounter WatchCounter
	noteCounter  NoteCounter
	streaks      StreakTracker
	achievements AchievementLister
	feed         ActivityFeeder
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(accounts *AccountService, content *ContentService, activity *ActivityService, redisCache *cache.RedisCache) *DashboardService {
	s := &DashboardService{
		accounts: accounts,
		content:  content,
		cache:    redisCache,
	}
	if activity != nil {
		s.streaks = activity
		s.achievements = activity
		s.feed = activity
	}
	if content != nil {
		s.watchCounter = content
		s.noteCounter = content
	}
	return s
}

// StudentDashboard builds the student aggregate. Results are cached briefly
// per user; a cold or unavailable cache falls through to the database.
func (s *DashboardService) StudentDashboard(ctx context.Context, user *model.User, role model.Role) (*StudentDashboard, error) {
	key := fmt.Sprintf(studentCacheFormat, user.ID)
	if s.cache != nil {
		var cached StudentDashboard
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	dash := &StudentDashboard{
		User: DashboardUser{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     role,
		},
		Achievements:   []model.Achievement{},
		RecentActivity: []model.UserActivity{},
		WatchHistory:   []model.WatchedVideo{},
	}

	if s.watchCounter != nil {
		count, err := s.watchCounter.WatchedCount(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		dash.WatchedCount = count
	}

	if s.noteCounter != nil {
		count, err := s.noteCounter.NotesTaken(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		dash.NotesTaken = count
	}

	if s.streaks != nil {
		streak, err := s.streaks.LearningStreak(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		dash.LearningStreak = streak
	}

	if s.achievements != nil {
		list, err := s.achievements.Achievements(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		dash.Achievements = list
	}

	if s.feed != nil {
		entries, err := s.feed.RecentActivity(ctx, user.ID, activityFeedLimit)
		if err != nil {
			return nil, err
		}
		dash.RecentActivity = entries
	}

	recs, err := s.content.RecommendedVideos(ctx, recommendedLimit)
	if err != nil {
		return nil, err
	}
	dash.Recommendations = recs

	history, err := s.content.WatchHistory(ctx, user.ID, watchHistoryLimit)
	if err != nil {
		return nil, err
	}
	dash.WatchHistory = history

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, dash, dashboardCacheTTL)
	}
	return dash, nil
}

// TeacherDashboard builds the teacher aggregate.
func (s *DashboardService) TeacherDashboard(ctx context.Context, user *model.User, role model.Role) (*TeacherDashboard, error) {
	key := fmt.Sprintf(teacherCacheFormat, user.ID)
	if s.cache != nil {
		var cached TeacherDashboard
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	dash := &TeacherDashboard{
		User: DashboardUser{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
			Role:     role,
		},
		Videos:         []model.VideoContent{},
		RecentActivity: []model.UserActivity{},
	}

	videos, err := s.content.ListTeacherVideos(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	dash.VideoCount = int64(len(videos))

	subjects := make(map[uint]struct{})
	for _, v := range videos {
		if v.IsPublished {
			dash.PublishedCount++
		}
		if v.SubjectID != nil {
			subjects[*v.SubjectID] = struct{}{}
		}
	}
	dash.SubjectCount = int64(len(subjects))

	// The page shows the most recent uploads; counts cover everything.
	if len(videos) > recentUploadsLimit {
		videos = videos[:recentUploadsLimit]
	}
	dash.Videos = videos

	views, err := s.content.TotalViews(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	dash.TotalViews = views

	noteCount, err := s.content.TeacherNoteCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	dash.NoteCount = noteCount

	if s.feed != nil {
		entries, err := s.feed.RecentActivity(ctx, user.ID, activityFeedLimit)
		if err != nil {
			return nil, err
		}
		dash.RecentActivity = entries
	}

	if tp, err := s.teacherProfile(ctx, user.ID); err == nil && tp != nil {
		dash.HasProfile = true
		dash.IsApproved = tp.IsApproved
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, dash, dashboardCacheTTL)
	}
	return dash, nil
}

func (s *DashboardService) teacherProfile(ctx context.Context, userID uint) (*model.TeacherProfile, error) {
	var tp model.TeacherProfile
	err := s.accounts.db.WithContext(ctx).Where("user_id = ?", userID).First(&tp).Error
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

// InvalidateDashboard drops the cached aggregates after a mutation so the
// next page load reflects it.
func (s *DashboardService) InvalidateDashboard(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx,
		fmt.Sprintf(studentCacheFormat, userID),
		fmt.Sprintf(teacherCacheFormat, userID),
	)
}
