package services

import (
	"context"
	"testing"

	"github.com/eduverse/eduverse-api/model"
)

func TestStudentDashboardZeroState(t *testing.T) {
	db := openTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	activity := NewActivityService(db)
	svc := NewDashboardService(accounts, content, activity, nil)

	student := createTestUser(t, db, "fresh", model.RoleStudent)

	dash, err := svc.StudentDashboard(context.Background(), student, model.RoleStudent)
	if err != nil {
		t.Fatalf("StudentDashboard failed: %v", err)
	}

	if dash.WatchedCount != 0 {
		t.Errorf("expected 0 watched, got %d", dash.WatchedCount)
	}
	if dash.NotesTaken != 0 {
		t.Errorf("expected 0 notes taken, got %d", dash.NotesTaken)
	}
	if dash.LearningStreak != 0 {
		t.Errorf("expected 0 streak, got %d", dash.LearningStreak)
	}
	if len(dash.Achievements) != 0 || len(dash.RecentActivity) != 0 {
		t.Errorf("expected empty achievement and activity lists")
	}
	if dash.User.Username != "fresh" || dash.User.Role != model.RoleStudent {
		t.Errorf("unexpected identity slice: %+v", dash.User)
	}
}

func TestStudentDashboardNilCollaborators(t *testing.T) {
	db := openTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	// No activity service wired: streak, achievements and feed must degrade
	// to zero values, not fail.
	svc := NewDashboardService(accounts, content, nil, nil)

	student := createTestUser(t, db, "solo", model.RoleStudent)

	dash, err := svc.StudentDashboard(context.Background(), student, model.RoleStudent)
	if err != nil {
		t.Fatalf("StudentDashboard failed: %v", err)
	}
	if dash.LearningStreak != 0 || len(dash.Achievements) != 0 {
		t.Errorf("expected zero collaborator values, got %+v", dash)
	}
}

func TestStudentDashboardRecommendationLimit(t *testing.T) {
	db := openTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	activity := NewActivityService(db)
	svc := NewDashboardService(accounts, content, activity, nil)

	teacher := createTestUser(t, db, "prolific", model.RoleTeacher)
	student := createTestUser(t, db, "viewer", model.RoleStudent)

	for i := 0; i < 7; i++ {
		if _, err := content.CreateVideo(context.Background(), teacher.ID, CreateVideoInput{
			Title:   "Video",
			FileKey: "videos/v.mp4",
		}); err != nil {
			t.Fatalf("CreateVideo failed: %v", err)
		}
	}

	dash, err := svc.StudentDashboard(context.Background(), student, model.RoleStudent)
	if err != nil {
		t.Fatalf("StudentDashboard failed: %v", err)
	}
	if len(dash.Recommendations) != 4 {
		t.Errorf("expected 4 recommendations, got %d", len(dash.Recommendations))
	}
}

func TestTeacherDashboardAggregates(t *testing.T) {
	db := openTestDB(t)
	accounts := NewAccountService(db)
	content := NewContentService(db)
	activity := NewActivityService(db)
	svc := NewDashboardService(accounts, content, activity, nil)

	teacher := createTestUser(t, db, "presenter", model.RoleTeacher)
	student := createTestUser(t, db, "audience", model.RoleStudent)

	var firstVideo uint
	for i := 0; i < 2; i++ {
		video, err := content.CreateVideo(context.Background(), teacher.ID, CreateVideoInput{
			Title:   "Talk",
			FileKey: "videos/talk.mp4",
		})
		if err != nil {
			t.Fatalf("CreateVideo failed: %v", err)
		}
		if firstVideo == 0 {
			firstVideo = video.ID
		}
	}
	if err := content.MarkWatched(context.Background(), student.ID, firstVideo); err != nil {
		t.Fatalf("MarkWatched failed: %v", err)
	}
	if _, err := content.CreateNote(context.Background(), teacher.ID, CreateNoteInput{
		Title:   "Talk notes",
		VideoID: firstVideo,
	}); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	dash, err := svc.TeacherDashboard(context.Background(), teacher, model.RoleTeacher)
	if err != nil {
		t.Fatalf("TeacherDashboard failed: %v", err)
	}
	if dash.VideoCount != 2 {
		t.Errorf("expected video count 2, got %d", dash.VideoCount)
	}
	if dash.PublishedCount != 2 {
		t.Errorf("expected published count 2, got %d", dash.PublishedCount)
	}
	if dash.TotalViews != 1 {
		t.Errorf("expected 1 total view, got %d", dash.TotalViews)
	}
	if dash.NoteCount != 1 {
		t.Errorf("expected note count 1, got %d", dash.NoteCount)
	}
	if dash.HasProfile {
		t.Error("expected no teacher profile yet")
	}

	if _, err := accounts.CreateTeacherProfile(context.Background(), teacher.ID, TeacherProfileInput{}); err != nil {
		t.Fatalf("CreateTeacherProfile failed: %v", err)
	}

	dash, err = svc.TeacherDashboard(context.Background(), teacher, model.RoleTeacher)
	if err != nil {
		t.Fatalf("TeacherDashboard failed: %v", err)
	}
	if !dash.HasProfile || dash.IsApproved {
		t.Errorf("expected unapproved teacher profile, got has=%v approved=%v", dash.HasProfile, dash.IsApproved)
	}
}
