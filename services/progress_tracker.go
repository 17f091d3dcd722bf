package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/utils/cache"
	"gorm.io/gorm/clause"
)

// ProgressTracker owns the per-user, per-course completion records. The
// read-modify-write in MarkSectionCompleted is serialized by a per-course
// mutex so two near-simultaneous completion calls cannot lose an update.
type ProgressTracker struct {
	store *database.Store
	cache *cache.RedisCache // optional, may be nil

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(store *database.Store, redisCache *cache.RedisCache) *ProgressTracker {
	return &ProgressTracker{
		store: store,
		cache: redisCache,
		locks: make(map[string]*sync.Mutex),
	}
}

func (t *ProgressTracker) lockFor(courseID, userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := courseID + "|" + userID
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}

// GetCourseProgress returns the progress record, or nil when none exists.
// Engine faults degrade to nil with a log line.
func (t *ProgressTracker) GetCourseProgress(ctx context.Context, courseID, userID string) (*model.CourseProgress, error) {
	progress, err := t.loadProgress(ctx, courseID, userID)
	if err != nil {
		if err == database.ErrNotInitialized {
			return nil, err
		}
		log.Println("Failed to get progress:", err)
		return nil, nil
	}
	return progress, nil
}

// SaveCourseProgress upserts the record keyed by (course_id, user_id)
func (t *ProgressTracker) SaveCourseProgress(ctx context.Context, progress *model.CourseProgress) error {
	if progress == nil || progress.CourseID == "" || progress.UserID == "" {
		return fmt.Errorf("%w: progress record with course and user ids is required", ErrInvalidArgument)
	}

	db, err := t.store.DB()
	if err != nil {
		return err
	}

	if progress.CompletedModules == nil {
		progress.CompletedModules = model.IntList{}
	}
	if progress.CompletedSections == nil {
		progress.CompletedSections = model.SectionRefs{}
	}

	// Insert a copy without the autoincrement id so the only conflict the
	// upsert can hit is the (course_id, user_id) unique index.
	row := *progress
	row.ID = 0
	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"completed_modules",
				"completed_sections",
				"last_accessed_at",
				"progress_percentage",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	t.invalidateUserCache(ctx, progress.UserID)
	return nil
}

// MarkSectionCompleted records a completed section and recomputes the
// percentage from the caller-supplied section total. Repeating the call for
// the same section is a no-op. The tracker trusts totalSections; it does not
// re-count the course's sections.
func (t *ProgressTracker) MarkSectionCompleted(ctx context.Context, courseID, userID string, moduleIndex, sectionIndex, totalSections int) (*model.CourseProgress, error) {
	if totalSections <= 0 {
		return nil, fmt.Errorf("%w: totalSections must be positive", ErrInvalidArgument)
	}
	if moduleIndex < 0 || sectionIndex < 0 {
		return nil, fmt.Errorf("%w: section position must not be negative", ErrInvalidArgument)
	}

	lock := t.lockFor(courseID, userID)
	lock.Lock()
	defer lock.Unlock()

	progress, err := t.loadOrInitProgress(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	if progress.CompletedSections.Contains(moduleIndex, sectionIndex) {
		return progress, nil
	}

	progress.CompletedSections = append(progress.CompletedSections, model.SectionRef{
		ModuleIndex:  moduleIndex,
		SectionIndex: sectionIndex,
	})
	progress.ProgressPercentage = float64(len(progress.CompletedSections)) / float64(totalSections) * 100
	progress.LastAccessedAt = time.Now().UnixMilli()

	if err := t.SaveCourseProgress(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// MarkModuleCompleted records a fully completed module, idempotently
func (t *ProgressTracker) MarkModuleCompleted(ctx context.Context, courseID, userID string, moduleIndex int) (*model.CourseProgress, error) {
	if moduleIndex < 0 {
		return nil, fmt.Errorf("%w: module index must not be negative", ErrInvalidArgument)
	}

	lock := t.lockFor(courseID, userID)
	lock.Lock()
	defer lock.Unlock()

	progress, err := t.loadOrInitProgress(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	if progress.CompletedModules.Contains(moduleIndex) {
		return progress, nil
	}

	progress.CompletedModules = append(progress.CompletedModules, moduleIndex)
	progress.LastAccessedAt = time.Now().UnixMilli()

	if err := t.SaveCourseProgress(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// loadProgress surfaces engine faults to internal callers; the public read
// path swallows them instead.
func (t *ProgressTracker) loadProgress(ctx context.Context, courseID, userID string) (*model.CourseProgress, error) {
	db, err := t.store.DB()
	if err != nil {
		return nil, err
	}

	var progress model.CourseProgress
	result := db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Limit(1).
		Find(&progress)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &progress, nil
}

func (t *ProgressTracker) loadOrInitProgress(ctx context.Context, courseID, userID string) (*model.CourseProgress, error) {
	progress, err := t.loadProgress(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &model.CourseProgress{
			CourseID:           courseID,
			UserID:             userID,
			CompletedModules:   model.IntList{},
			CompletedSections:  model.SectionRefs{},
			LastAccessedAt:     time.Now().UnixMilli(),
			ProgressPercentage: 0,
		}
	}
	return progress, nil
}

func (t *ProgressTracker) invalidateUserCache(ctx context.Context, userID string) {
	if t.cache == nil {
		return
	}
	// Course lists embed progress, so completion events drop the cached list.
	if err := t.cache.Delete(ctx, courseListCacheKey(userID)); err != nil {
		log.Println("Failed to invalidate course list cache:", err)
	}
}
