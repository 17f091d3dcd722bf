package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/utils/cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const courseListCacheTTL = 5 * time.Minute

// CourseService persists course documents: the whole document as an opaque
// JSON blob plus denormalized title/introduction/timestamp columns so
// listing and search stay cheap.
type CourseService struct {
	store     *database.Store
	cache     *cache.RedisCache // optional, may be nil
	listeners []CourseSavedListener
}

// NewCourseService creates a new course service
func NewCourseService(store *database.Store, redisCache *cache.RedisCache) *CourseService {
	return &CourseService{
		store: store,
		cache: redisCache,
	}
}

// AddListener registers a listener for CourseSaved events
func (s *CourseService) AddListener(l CourseSavedListener) {
	s.listeners = append(s.listeners, l)
}

func courseListCacheKey(userID string) string {
	return "courses:user:" + userID
}

// SaveCourse upserts a course document for a user. A missing id or
// timestamp is assigned here; re-saving with the same id replaces the row.
// After the row is durably written, CourseSaved is emitted to listeners.
func (s *CourseService) SaveCourse(ctx context.Context, doc *model.CourseDocument, userID string) (*model.CourseDocument, error) {
	if doc == nil || userID == "" {
		return nil, fmt.Errorf("%w: course document and user id are required", ErrInvalidArgument)
	}

	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	if doc.ID == "" {
		doc.ID = "course_" + uuid.NewString()
	}
	if doc.Timestamp == 0 {
		doc.Timestamp = time.Now().UnixMilli()
	}
	doc.UserID = userID

	row, err := model.NewCourseRow(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize course document: %w", err)
	}

	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to save course: %w", err)
	}

	s.invalidateUserCache(ctx, userID)

	event := CourseSaved{ID: doc.ID, Title: doc.Title, Modules: doc.Modules}
	for _, l := range s.listeners {
		if err := l.OnCourseSaved(event); err != nil {
			return nil, fmt.Errorf("course saved but listener failed: %w", err)
		}
	}

	return doc, nil
}

// GetCoursesByUserID returns all of a user's courses newest first, each with
// its progress record merged in when one exists. Unknown users get an empty
// slice; engine faults degrade to empty with a log line so the UI stays up.
func (s *CourseService) GetCoursesByUserID(ctx context.Context, userID string) ([]*model.CourseDocument, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached []*model.CourseDocument
		if err := s.cache.GetJSON(ctx, courseListCacheKey(userID), &cached); err == nil {
			return cached, nil
		}
	}

	var rows []model.Course
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&rows).Error; err != nil {
		log.Println("Failed to fetch courses:", err)
		return []*model.CourseDocument{}, nil
	}

	docs := make([]*model.CourseDocument, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].Document()
		if err != nil {
			log.Printf("Skipping undecodable course %s: %v", rows[i].ID, err)
			continue
		}
		if progress, err := s.loadProgress(ctx, rows[i].ID, userID); err == nil && progress != nil {
			doc.Progress = progress
		}
		docs = append(docs, doc)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, courseListCacheKey(userID), docs, courseListCacheTTL); err != nil {
			log.Println("Failed to cache course list:", err)
		}
	}

	return docs, nil
}

// GetAllCourses returns every stored course newest first, without progress
func (s *CourseService) GetAllCourses(ctx context.Context) ([]*model.CourseDocument, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	var rows []model.Course
	if err := db.WithContext(ctx).Order("timestamp DESC").Find(&rows).Error; err != nil {
		log.Println("Failed to fetch courses:", err)
		return []*model.CourseDocument{}, nil
	}

	return decodeRows(rows), nil
}

// GetCourse returns the document for id, or nil when no row exists
func (s *CourseService) GetCourse(ctx context.Context, courseID string) (*model.CourseDocument, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	var row model.Course
	result := db.WithContext(ctx).Where("id = ?", courseID).Limit(1).Find(&row)
	if result.Error != nil {
		log.Println("Failed to fetch course:", result.Error)
		return nil, nil
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	doc, err := row.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to decode course %s: %w", courseID, err)
	}
	return doc, nil
}

// DeleteCourse removes the course row together with its progress record and
// chat history in one transaction.
func (s *CourseService) DeleteCourse(ctx context.Context, courseID string) error {
	db, err := s.store.DB()
	if err != nil {
		return err
	}

	// Row is fetched first so the right user's list cache gets dropped.
	var row model.Course
	lookup := db.WithContext(ctx).Select("id", "user_id").Where("id = ?", courseID).Limit(1).Find(&row)
	if lookup.Error != nil {
		return fmt.Errorf("failed to look up course: %w", lookup.Error)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&model.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete chat history: %w", err)
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&model.CourseProgress{}).Error; err != nil {
			return fmt.Errorf("failed to delete progress: %w", err)
		}
		if err := tx.Where("id = ?", courseID).Delete(&model.Course{}).Error; err != nil {
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if lookup.RowsAffected > 0 {
		s.invalidateUserCache(ctx, row.UserID)
	}
	return nil
}

// SearchCourses runs a case-insensitive substring match over the
// denormalized title and introduction columns of one user's courses.
func (s *CourseService) SearchCourses(ctx context.Context, query, userID string) ([]*model.CourseDocument, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var rows []model.Course
	if err := db.WithContext(ctx).
		Where("user_id = ? AND (LOWER(title) LIKE ? OR LOWER(introduction) LIKE ?)", userID, pattern, pattern).
		Order("timestamp DESC").
		Find(&rows).Error; err != nil {
		log.Println("Failed to search courses:", err)
		return []*model.CourseDocument{}, nil
	}

	return decodeRows(rows), nil
}

func (s *CourseService) loadProgress(ctx context.Context, courseID, userID string) (*model.CourseProgress, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	var progress model.CourseProgress
	result := db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Limit(1).
		Find(&progress)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &progress, nil
}

func (s *CourseService) invalidateUserCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, courseListCacheKey(userID)); err != nil {
		log.Println("Failed to invalidate course list cache:", err)
	}
}

func decodeRows(rows []model.Course) []*model.CourseDocument {
	docs := make([]*model.CourseDocument, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].Document()
		if err != nil {
			log.Printf("Skipping undecodable course %s: %v", rows[i].ID, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
