package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eduverse/eduverse-api/model"
)

func TestValidateVideoFilename(t *testing.T) {
	valid := []string{"lecture.mp4", "clip.webm", "audio.ogg", "UPPER.MP4"}
	for _, name := range valid {
		if err := ValidateVideoFilename(name); err != nil {
			t.Errorf("expected %s to be accepted: %v", name, err)
		}
	}

	invalid := []string{"movie.avi", "slides.pdf", "script.sh", "noext"}
	for _, name := range invalid {
		if err := ValidateVideoFilename(name); !errors.Is(err, ErrUnsupportedVideoFormat) {
			t.Errorf("expected %s to be rejected, got %v", name, err)
		}
	}
}

func TestMarkWatchedCountsViewerOnce(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	teacher := createTestUser(t, db, "teacher1", model.RoleTeacher)
	student := createTestUser(t, db, "student1", model.RoleStudent)

	video, err := svc.CreateVideo(context.Background(), teacher.ID, CreateVideoInput{
		Title:   "Intro",
		FileKey: "videos/1_intro.mp4",
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	if err := svc.MarkWatched(context.Background(), student.ID, video.ID); err != nil {
		t.Fatalf("first MarkWatched failed: %v", err)
	}
	if err := svc.MarkWatched(context.Background(), student.ID, video.ID); err != nil {
		t.Fatalf("second MarkWatched failed: %v", err)
	}

	count, err := svc.WatchedCount(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("WatchedCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected watched count 1 after rewatch, got %d", count)
	}

	fresh, err := svc.GetVideo(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if fresh.ViewCount != 2 {
		t.Errorf("expected view count 2, got %d", fresh.ViewCount)
	}
}

func TestMarkWatchedUnknownVideo(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	student := createTestUser(t, db, "student2", model.RoleStudent)

	if err := svc.MarkWatched(context.Background(), student.ID, 9999); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestNotesTakenCountsNoteUploads(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	ctx := context.Background()

	student := createTestUser(t, db, "scribbler", model.RoleStudent)

	for i := 0; i < 2; i++ {
		if _, err := svc.RecordUpload(ctx, student.ID, "Scan", model.ContentTypeNote, "uploads/scan.pdf"); err != nil {
			t.Fatalf("RecordUpload failed: %v", err)
		}
	}
	if _, err := svc.RecordUpload(ctx, student.ID, "Clip", model.ContentTypeVideo, "uploads/clip.mp4"); err != nil {
		t.Fatalf("RecordUpload failed: %v", err)
	}

	count, err := svc.NotesTaken(ctx, student.ID)
	if err != nil {
		t.Fatalf("NotesTaken failed: %v", err)
	}
	if count != 2 {
		t.Errorf("notes taken = %d, want 2", count)
	}
}

func TestListVideosFiltersAndPaginates(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	subjects := NewSubjectService(db)
	teacher := createTestUser(t, db, "teacher2", model.RoleTeacher)

	math, err := subjects.CreateSubject(context.Background(), "Mathematics", "")
	if err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		in := CreateVideoInput{Title: "Video", FileKey: "videos/v.mp4"}
		if i == 0 {
			in.SubjectID = &math.ID
		}
		if _, err := svc.CreateVideo(context.Background(), teacher.ID, in); err != nil {
			t.Fatalf("CreateVideo failed: %v", err)
		}
	}

	all, total, err := svc.ListVideos(context.Background(), nil, 1, 10)
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("expected 3 videos, got total=%d len=%d", total, len(all))
	}

	filtered, total, err := svc.ListVideos(context.Background(), &math.ID, 1, 10)
	if err != nil {
		t.Fatalf("filtered ListVideos failed: %v", err)
	}
	if total != 1 || len(filtered) != 1 {
		t.Errorf("expected 1 video for subject, got total=%d len=%d", total, len(filtered))
	}
}

func TestRecommendedVideosNewestFirst(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	teacher := createTestUser(t, db, "teacher3", model.RoleTeacher)

	base := time.Now().Add(-time.Hour)
	var ids []uint
	for i := 0; i < 6; i++ {
		video, err := svc.CreateVideo(context.Background(), teacher.ID, CreateVideoInput{
			Title:   "Video",
			FileKey: "videos/v.mp4",
		})
		if err != nil {
			t.Fatalf("CreateVideo failed: %v", err)
		}
		// Pin created_at so ordering is under test control.
		if err := db.Model(video).Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error; err != nil {
			t.Fatalf("failed to pin created_at: %v", err)
		}
		ids = append(ids, video.ID)
	}

	recs, err := svc.RecommendedVideos(context.Background(), 4)
	if err != nil {
		t.Fatalf("RecommendedVideos failed: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 recommendations, got %d", len(recs))
	}
	for i, want := range []uint{ids[5], ids[4], ids[3], ids[2]} {
		if recs[i].ID != want {
			t.Errorf("position %d: expected video %d, got %d", i, want, recs[i].ID)
		}
	}
}

func TestRecommendedVideosTiebreakOnID(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	teacher := createTestUser(t, db, "teacher4", model.RoleTeacher)

	stamp := time.Now().Truncate(time.Second)
	var ids []uint
	for i := 0; i < 3; i++ {
		video, err := svc.CreateVideo(context.Background(), teacher.ID, CreateVideoInput{
			Title:   "Video",
			FileKey: "videos/v.mp4",
		})
		if err != nil {
			t.Fatalf("CreateVideo failed: %v", err)
		}
		if err := db.Model(video).Update("created_at", stamp).Error; err != nil {
			t.Fatalf("failed to pin created_at: %v", err)
		}
		ids = append(ids, video.ID)
	}

	recs, err := svc.RecommendedVideos(context.Background(), 3)
	if err != nil {
		t.Fatalf("RecommendedVideos failed: %v", err)
	}
	for i, want := range []uint{ids[2], ids[1], ids[0]} {
		if recs[i].ID != want {
			t.Errorf("position %d: expected video %d, got %d", i, want, recs[i].ID)
		}
	}
}

func TestDeleteVideoOwnership(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	owner := createTestUser(t, db, "owner2", model.RoleTeacher)
	other := createTestUser(t, db, "other2", model.RoleTeacher)

	video, err := svc.CreateVideo(context.Background(), owner.ID, CreateVideoInput{
		Title:   "Mine",
		FileKey: "videos/mine.mp4",
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	if err := svc.DeleteVideo(context.Background(), other.ID, video.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := svc.DeleteVideo(context.Background(), owner.ID, video.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	if _, err := svc.GetVideo(context.Background(), video.ID); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound after delete, got %v", err)
	}
}

func TestCreateNoteRequiresVideoOwnership(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	owner := createTestUser(t, db, "owner3", model.RoleTeacher)
	other := createTestUser(t, db, "other3", model.RoleTeacher)

	video, err := svc.CreateVideo(context.Background(), owner.ID, CreateVideoInput{
		Title:   "Lecture",
		FileKey: "videos/lec.mp4",
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	if _, err := svc.CreateNote(context.Background(), other.ID, CreateNoteInput{
		Title:   "Intruder note",
		VideoID: video.ID,
	}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	note, err := svc.CreateNote(context.Background(), owner.ID, CreateNoteInput{
		Title:   "Chapter summary",
		VideoID: video.ID,
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	notes, err := svc.ListNotes(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != note.ID {
		t.Errorf("expected the created note, got %+v", notes)
	}
}

func TestGetNoteLoadsStoredAttachmentKey(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	teacher := createTestUser(t, db, "keeper", model.RoleTeacher)

	video, err := svc.CreateVideo(context.Background(), teacher.ID, CreateVideoInput{
		Title:   "Lecture",
		FileKey: "videos/lec.mp4",
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	created, err := svc.CreateNote(context.Background(), teacher.ID, CreateNoteInput{
		Title:   "Handout",
		FileKey: "notes/handout.pdf",
		VideoID: video.ID,
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	note, err := svc.GetNote(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if note.FileKey != "notes/handout.pdf" {
		t.Errorf("expected stored file key, got %q", note.FileKey)
	}

	if _, err := svc.GetNote(context.Background(), created.ID+100); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestDeleteVideoCascadesNotesAndWatches(t *testing.T) {
	db := openTestDB(t)
	svc := NewContentService(db)
	teacher := createTestUser(t, db, "teacher5", model.RoleTeacher)
	student := createTestUser(t, db, "student5", model.RoleStudent)

	video, err := svc.CreateVideo(context.Background(), teacher.ID, CreateVideoInput{
		Title:   "Doomed",
		FileKey: "videos/doomed.mp4",
	})
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	if _, err := svc.CreateNote(context.Background(), teacher.ID, CreateNoteInput{
		Title:   "Doomed note",
		VideoID: video.ID,
	}); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if err := svc.MarkWatched(context.Background(), student.ID, video.ID); err != nil {
		t.Fatalf("MarkWatched failed: %v", err)
	}

	if err := svc.DeleteVideo(context.Background(), teacher.ID, video.ID); err != nil {
		t.Fatalf("DeleteVideo failed: %v", err)
	}

	var notes, watches int64
	db.Model(&model.Note{}).Count(&notes)
	db.Model(&model.WatchedVideo{}).Count(&watches)
	if notes != 0 || watches != 0 {
		t.Errorf("cascade incomplete: %d notes, %d watches left", notes, watches)
	}
}
