package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eduverse/eduverse-api/model"
)

var (
	// ErrUnsupportedVideoFormat signals a video upload outside the allow list.
	ErrUnsupportedVideoFormat = errors.New("unsupported video format")
	// ErrContentNotFound signals a lookup for content that does not exist.
	ErrContentNotFound = errors.New("content not found")
	// ErrNotOwner signals a mutation by someone other than the owner.
	ErrNotOwner = errors.New("not the owner of this content")
)

// ContentService owns the video, note and upload catalog.
type ContentService struct {
	db *gorm.DB
}

// NewContentService creates a new content service
func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

// ValidateVideoFilename enforces the video extension allow list before any
// bytes move to storage.
func ValidateVideoFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !model.AllowedVideoExtensions[ext] {
		return fmt.Errorf("%w: %s", ErrUnsupportedVideoFormat, ext)
	}
	return nil
}

// CreateVideoInput carries a validated video creation request.
type CreateVideoInput struct {
	Title           string
	Description     string
	FileKey         string
	ThumbnailKey    string
	DurationSeconds int
	SubjectID       *uint
}

// CreateVideo stores video metadata owned by a teacher.
func (s *ContentService) CreateVideo(ctx context.Context, teacherID uint, in CreateVideoInput) (*model.VideoContent, error) {
	video := &model.VideoContent{
		Title:           in.Title,
		Description:     in.Description,
		FileKey:         in.FileKey,
		ThumbnailKey:    in.ThumbnailKey,
		DurationSeconds: in.DurationSeconds,
		TeacherID:       teacherID,
		SubjectID:       in.SubjectID,
		IsPublished:     true,
	}
	if err := s.db.WithContext(ctx).Create(video).Error; err != nil {
		return nil, err
	}
	return video, nil
}

// GetVideo loads one video with its teacher and subject.
func (s *ContentService) GetVideo(ctx context.Context, videoID uint) (*model.VideoContent, error) {
	var video model.VideoContent
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Preload("Notes").
		First(&video, videoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &video, nil
}

// ListVideos returns published videos newest first, optionally filtered by
// subject, with total count for pagination.
func (s *ContentService) ListVideos(ctx context.Context, subjectID *uint, page, perPage int) ([]model.VideoContent, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	q := s.db.WithContext(ctx).Model(&model.VideoContent{}).Where("is_published = ?", true)
	if subjectID != nil {
		q = q.Where("subject_id = ?", *subjectID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.VideoContent
	err := q.Preload("Subject").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&videos).Error
	return videos, total, err
}

// ListTeacherVideos returns everything a teacher uploaded, published or not.
func (s *ContentService) ListTeacherVideos(ctx context.Context, teacherID uint) ([]model.VideoContent, error) {
	var videos []model.VideoContent
	err := s.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC, id DESC").
		Find(&videos).Error
	return videos, err
}

// RecommendedVideos returns the newest published videos for the dashboard.
// The ordering tiebreak on id keeps same-timestamp rows deterministic.
func (s *ContentService) RecommendedVideos(ctx context.Context, limit int) ([]model.VideoContent, error) {
	if limit <= 0 {
		limit = 4
	}
	var videos []model.VideoContent
	err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("is_published = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

// DeleteVideo removes a video owned by the caller. Cascades take its notes
// and watch records.
func (s *ContentService) DeleteVideo(ctx context.Context, teacherID, videoID uint) error {
	var video model.VideoContent
	if err := s.db.WithContext(ctx).First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContentNotFound
		}
		return err
	}
	if video.TeacherID != teacherID {
		return ErrNotOwner
	}
	return s.db.WithContext(ctx).Delete(&video).Error
}

// CreateNoteInput carries a validated note creation request.
type CreateNoteInput struct {
	Title   string
	Content string
	FileKey string
	VideoID uint
}

// CreateNote attaches a note to a video. Only the video's owner may do so.
func (s *ContentService) CreateNote(ctx context.Context, teacherID uint, in CreateNoteInput) (*model.Note, error) {
	var video model.VideoContent
	if err := s.db.WithContext(ctx).First(&video, in.VideoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	if video.TeacherID != teacherID {
		return nil, ErrNotOwner
	}

	note := &model.Note{
		Title:   in.Title,
		Content: in.Content,
		FileKey: in.FileKey,
		VideoID: in.VideoID,
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// ListNotes returns the notes attached to a video.
func (s *ContentService) ListNotes(ctx context.Context, videoID uint) ([]model.Note, error) {
	var notes []model.Note
	err := s.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC, id DESC").
		Find(&notes).Error
	return notes, err
}

// GetNote loads a single note.
func (s *ContentService) GetNote(ctx context.Context, noteID uint) (*model.Note, error) {
	var note model.Note
	if err := s.db.WithContext(ctx).First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note from a video owned by the caller.
func (s *ContentService) DeleteNote(ctx context.Context, teacherID, noteID uint) error {
	var note model.Note
	if err := s.db.WithContext(ctx).Preload("Video").First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContentNotFound
		}
		return err
	}
	if note.Video.TeacherID != teacherID {
		return ErrNotOwner
	}
	return s.db.WithContext(ctx).Delete(&note).Error
}

// RecordUpload stores generic upload metadata.
func (s *ContentService) RecordUpload(ctx context.Context, userID uint, title string, contentType model.ContentType, fileKey string) (*model.UploadedContent, error) {
	if !contentType.Valid() {
		return nil, fmt.Errorf("invalid content type %q", contentType)
	}
	upload := &model.UploadedContent{
		Title:        title,
		ContentType:  contentType,
		FileKey:      fileKey,
		UploadedByID: userID,
	}
	if err := s.db.WithContext(ctx).Create(upload).Error; err != nil {
		return nil, err
	}
	return upload, nil
}

// ListUploads returns a user's generic uploads, newest first.
func (s *ContentService) ListUploads(ctx context.Context, userID uint) ([]model.UploadedContent, error) {
	var uploads []model.UploadedContent
	err := s.db.WithContext(ctx).
		Where("uploaded_by_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&uploads).Error
	return uploads, err
}

// MarkWatched records a watch event and bumps the view count atomically. A
// rewatch refreshes the timestamp but counts the viewer only once.
func (s *ContentService) MarkWatched(ctx context.Context, userID, videoID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var video model.VideoContent
		if err := tx.First(&video, videoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContentNotFound
			}
			return err
		}

		now := time.Now().UTC()
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"watched_at": now}),
		}).Create(&model.WatchedVideo{
			UserID:    userID,
			VideoID:   videoID,
			WatchedAt: now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&model.VideoContent{}).
			Where("id = ?", videoID).
			Update("view_count", gorm.Expr("view_count + ?", 1)).Error
	})
}

// WatchedCount counts distinct videos the user has watched.
func (s *ContentService) WatchedCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.WatchedVideo{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// WatchHistory returns the user's watch records, most recent first.
func (s *ContentService) WatchHistory(ctx context.Context, userID uint, limit int) ([]model.WatchedVideo, error) {
	if limit <= 0 {
		limit = 20
	}
	var history []model.WatchedVideo
	err := s.db.WithContext(ctx).
		Preload("Video").
		Where("user_id = ?", userID).
		Order("watched_at DESC, id DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}

// NotesTaken counts the note uploads a user has recorded.
func (s *ContentService) NotesTaken(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.UploadedContent{}).
		Where("uploaded_by_id = ? AND content_type = ?", userID, model.ContentTypeNote).
		Count(&count).Error
	return count, err
}

// TeacherNoteCount counts notes across all of a teacher's videos.
func (s *ContentService) TeacherNoteCount(ctx context.Context, teacherID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Note{}).
		Joins("JOIN video_contents ON video_contents.id = notes.video_id").
		Where("video_contents.teacher_id = ?", teacherID).
		Count(&count).Error
	return count, err
}

// TotalViews sums view counts across a teacher's videos.
func (s *ContentService) TotalViews(ctx context.Context, teacherID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&model.VideoContent{}).
		Where("teacher_id = ?", teacherID).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&total).Error
	return total, err
}
