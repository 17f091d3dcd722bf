package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/studyforge/study-assistant/model"
)

func TestMarkSectionCompleted(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	progress, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", 0, 1, 4)
	if err != nil {
		t.Fatalf("failed to mark section: %v", err)
	}
	if len(progress.CompletedSections) != 1 {
		t.Fatalf("expected 1 completed section, got %d", len(progress.CompletedSections))
	}
	if progress.ProgressPercentage != 25 {
		t.Errorf("expected 25%%, got %v", progress.ProgressPercentage)
	}
	if progress.LastAccessedAt == 0 {
		t.Error("expected last accessed time to be set")
	}
}

func TestMarkSectionCompletedIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	if _, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", 0, 1, 4); err != nil {
		t.Fatalf("failed to mark section: %v", err)
	}
	progress, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", 0, 1, 4)
	if err != nil {
		t.Fatalf("failed to re-mark section: %v", err)
	}
	if len(progress.CompletedSections) != 1 {
		t.Errorf("expected the duplicate mark to be a no-op, got %d sections", len(progress.CompletedSections))
	}
	if progress.ProgressPercentage != 25 {
		t.Errorf("expected 25%% after duplicate mark, got %v", progress.ProgressPercentage)
	}
}

func TestMarkSectionCompletedReachesExactlyHundred(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	var progress *model.CourseProgress
	var err error
	for module := 0; module < 2; module++ {
		for section := 0; section < 2; section++ {
			progress, err = tracker.MarkSectionCompleted(ctx, "c1", "u1", module, section, 4)
			if err != nil {
				t.Fatalf("failed to mark section %d/%d: %v", module, section, err)
			}
		}
	}
	if progress.ProgressPercentage != 100 {
		t.Errorf("expected exactly 100%%, got %v", progress.ProgressPercentage)
	}
	if len(progress.CompletedSections) != 4 {
		t.Errorf("expected 4 completed sections, got %d", len(progress.CompletedSections))
	}
}

func TestMarkSectionCompletedRejectsBadInput(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	cases := []struct {
		name                                     string
		moduleIndex, sectionIndex, totalSections int
	}{
		{"zero total sections", 0, 0, 0},
		{"negative total sections", 0, 0, -1},
		{"negative module index", -1, 0, 4},
		{"negative section index", 0, -1, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", tc.moduleIndex, tc.sectionIndex, tc.totalSections)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestMarkModuleCompleted(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	progress, err := tracker.MarkModuleCompleted(ctx, "c1", "u1", 2)
	if err != nil {
		t.Fatalf("failed to mark module: %v", err)
	}
	if !progress.CompletedModules.Contains(2) {
		t.Error("expected module 2 to be recorded")
	}

	progress, err = tracker.MarkModuleCompleted(ctx, "c1", "u1", 2)
	if err != nil {
		t.Fatalf("failed to re-mark module: %v", err)
	}
	if len(progress.CompletedModules) != 1 {
		t.Errorf("expected the duplicate mark to be a no-op, got %d modules", len(progress.CompletedModules))
	}
}

func TestGetCourseProgressMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)

	progress, err := tracker.GetCourseProgress(context.Background(), "c1", "u1")
	if err != nil {
		t.Fatalf("expected no error for missing progress, got %v", err)
	}
	if progress != nil {
		t.Errorf("expected nil, got %+v", progress)
	}
}

func TestSaveCourseProgressUpserts(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	first := &model.CourseProgress{
		CourseID:           "c1",
		UserID:             "u1",
		CompletedSections:  model.SectionRefs{{ModuleIndex: 0, SectionIndex: 0}},
		ProgressPercentage: 25,
		LastAccessedAt:     1000,
	}
	if err := tracker.SaveCourseProgress(ctx, first); err != nil {
		t.Fatalf("failed to save progress: %v", err)
	}

	second := &model.CourseProgress{
		CourseID: "c1",
		UserID:   "u1",
		CompletedSections: model.SectionRefs{
			{ModuleIndex: 0, SectionIndex: 0},
			{ModuleIndex: 0, SectionIndex: 1},
		},
		ProgressPercentage: 50,
		LastAccessedAt:     2000,
	}
	if err := tracker.SaveCourseProgress(ctx, second); err != nil {
		t.Fatalf("failed to re-save progress: %v", err)
	}

	got, err := tracker.GetCourseProgress(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("failed to get progress: %v", err)
	}
	if got == nil {
		t.Fatal("expected a progress record")
	}
	if got.ProgressPercentage != 50 {
		t.Errorf("expected the later save to win, got %v%%", got.ProgressPercentage)
	}
	if len(got.CompletedSections) != 2 {
		t.Errorf("expected 2 completed sections, got %d", len(got.CompletedSections))
	}
	if got.LastAccessedAt != 2000 {
		t.Errorf("expected last accessed 2000, got %d", got.LastAccessedAt)
	}
}

func TestProgressIsolatedPerUser(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	if _, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", 0, 0, 4); err != nil {
		t.Fatalf("failed to mark section: %v", err)
	}
	if _, err := tracker.MarkSectionCompleted(ctx, "c1", "u2", 0, 0, 2); err != nil {
		t.Fatalf("failed to mark section: %v", err)
	}

	p1, err := tracker.GetCourseProgress(ctx, "c1", "u1")
	if err != nil || p1 == nil {
		t.Fatalf("failed to get u1 progress: %v", err)
	}
	p2, err := tracker.GetCourseProgress(ctx, "c1", "u2")
	if err != nil || p2 == nil {
		t.Fatalf("failed to get u2 progress: %v", err)
	}
	if p1.ProgressPercentage != 25 || p2.ProgressPercentage != 50 {
		t.Errorf("expected 25%% and 50%%, got %v%% and %v%%", p1.ProgressPercentage, p2.ProgressPercentage)
	}
}

func TestMarkSectionCompletedConcurrent(t *testing.T) {
	store := newTestStore(t)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	const sections = 8
	var wg sync.WaitGroup
	for i := 0; i < sections; i++ {
		wg.Add(1)
		go func(section int) {
			defer wg.Done()
			if _, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", 0, section, sections); err != nil {
				t.Errorf("failed to mark section %d: %v", section, err)
			}
		}(i)
	}
	wg.Wait()

	progress, err := tracker.GetCourseProgress(ctx, "c1", "u1")
	if err != nil || progress == nil {
		t.Fatalf("failed to get progress: %v", err)
	}
	if len(progress.CompletedSections) != sections {
		t.Errorf("expected %d completed sections, got %d", sections, len(progress.CompletedSections))
	}
	if progress.ProgressPercentage != 100 {
		t.Errorf("expected 100%%, got %v", progress.ProgressPercentage)
	}
}
