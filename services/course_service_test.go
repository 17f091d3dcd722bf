package services

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestSaveCourseAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)

	doc := testCourse("", "Linear Algebra")
	saved := saveTestCourse(t, svc, doc, "u1")

	if saved.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if !strings.HasPrefix(saved.ID, "course_") {
		t.Errorf("unexpected id format: %s", saved.ID)
	}
	if saved.Timestamp == 0 {
		t.Error("expected a timestamp to be assigned")
	}
	if saved.UserID != "u1" {
		t.Errorf("expected owner u1, got %s", saved.UserID)
	}
}

func TestSaveCourseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)

	original := testCourse("c1", "Compilers")
	saveTestCourse(t, svc, original, "u1")

	got, err := svc.GetCourse(context.Background(), "c1")
	if err != nil {
		t.Fatalf("failed to get course: %v", err)
	}
	if got == nil {
		t.Fatal("expected a course, got nil")
	}
	if !reflect.DeepEqual(got.Modules, original.Modules) {
		t.Error("modules did not survive the round trip")
	}
	if !reflect.DeepEqual(got.VideoSuggestions, original.VideoSuggestions) {
		t.Error("video suggestions did not survive the round trip")
	}
	if !reflect.DeepEqual(got.References, original.References) {
		t.Error("references did not survive the round trip")
	}
	if got.Title != original.Title || got.Introduction != original.Introduction {
		t.Error("denormalized fields did not survive the round trip")
	}
}

func TestSaveCourseUpsertDoesNotDuplicate(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)

	doc := testCourse("c1", "Databases")
	saveTestCourse(t, svc, doc, "u1")

	doc.Title = "Databases, Revised"
	saveTestCourse(t, svc, doc, "u1")

	docs, err := svc.GetCoursesByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("failed to list courses: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 course after re-save, got %d", len(docs))
	}
	if docs[0].Title != "Databases, Revised" {
		t.Errorf("expected updated title, got %q", docs[0].Title)
	}
}

func TestGetCoursesByUserIDOrdersNewestFirst(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)

	older := testCourse("c1", "Old Course")
	older.Timestamp = 1000
	newer := testCourse("c2", "New Course")
	newer.Timestamp = 2000
	saveTestCourse(t, svc, older, "u1")
	saveTestCourse(t, svc, newer, "u1")

	docs, err := svc.GetCoursesByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("failed to list courses: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(docs))
	}
	if docs[0].ID != "c2" || docs[1].ID != "c1" {
		t.Errorf("expected newest first, got %s then %s", docs[0].ID, docs[1].ID)
	}
}

func TestGetCoursesByUserIDMergesProgress(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)
	tracker := NewProgressTracker(store, nil)

	saveTestCourse(t, svc, testCourse("c1", "Networking"), "u1")
	if _, err := tracker.MarkSectionCompleted(context.Background(), "c1", "u1", 0, 0, 4); err != nil {
		t.Fatalf("failed to mark section: %v", err)
	}

	docs, err := svc.GetCoursesByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("failed to list courses: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 course, got %d", len(docs))
	}
	if docs[0].Progress == nil {
		t.Fatal("expected progress to be merged into the course")
	}
	if docs[0].Progress.ProgressPercentage != 25 {
		t.Errorf("expected 25%%, got %v", docs[0].Progress.ProgressPercentage)
	}
}

func TestGetCoursesByUserIDUnknownUserReturnsEmpty(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil)

	docs, err := svc.GetCoursesByUserID(context.Background(), "unknown-user")
	if err != nil {
		t.Fatalf("expected no error for unknown user, got %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty result, got %d courses", len(docs))
	}
}

func TestGetCourseMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil)

	doc, err := svc.GetCourse(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected no error for missing course, got %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil, got %+v", doc)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)
	tracker := NewProgressTracker(store, nil)
	chats := NewChatService(store)
	ctx := context.Background()

	saveTestCourse(t, svc, testCourse("c1", "Operating Systems"), "u1")
	if _, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", 0, 0, 4); err != nil {
		t.Fatalf("failed to mark section: %v", err)
	}
	if err := chats.SaveChatMessage(ctx, "c1", "u1", "user", "What is a mutex?"); err != nil {
		t.Fatalf("failed to save message: %v", err)
	}

	if err := svc.DeleteCourse(ctx, "c1"); err != nil {
		t.Fatalf("failed to delete course: %v", err)
	}

	if doc, _ := svc.GetCourse(ctx, "c1"); doc != nil {
		t.Error("expected course to be gone")
	}
	if progress, _ := tracker.GetCourseProgress(ctx, "c1", "u1"); progress != nil {
		t.Error("expected progress to be gone")
	}
	history, err := chats.GetChatHistory(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty chat history, got %d entries", len(history))
	}
}

func TestSearchCoursesMatchesCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	createTestUser(t, store, "u2")
	svc := NewCourseService(store, nil)
	ctx := context.Background()

	saveTestCourse(t, svc, testCourse("c1", "Machine Learning Basics"), "u1")
	saveTestCourse(t, svc, testCourse("c2", "Cooking"), "u1")
	saveTestCourse(t, svc, testCourse("c3", "Machine Learning Advanced"), "u2")

	docs, err := svc.SearchCourses(ctx, "machine learning", "u1")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "c1" {
		t.Fatalf("expected only u1's matching course, got %d results", len(docs))
	}

	// Introduction text matches too.
	docs, err = svc.SearchCourses(ctx, "introduction to cooking", "u1")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "c2" {
		t.Fatalf("expected introduction match, got %d results", len(docs))
	}

	docs, err = svc.SearchCourses(ctx, "no such thing", "u1")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no results, got %d", len(docs))
	}
}

type recordingListener struct {
	events []CourseSaved
}

func (l *recordingListener) OnCourseSaved(event CourseSaved) error {
	l.events = append(l.events, event)
	return nil
}

func TestSaveCourseEmitsEvent(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)
	listener := &recordingListener{}
	svc.AddListener(listener)

	doc := testCourse("c1", "Statistics")
	saveTestCourse(t, svc, doc, "u1")

	if len(listener.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(listener.events))
	}
	event := listener.events[0]
	if event.ID != "c1" || event.Title != "Statistics" {
		t.Errorf("unexpected event: %+v", event)
	}
	if len(event.Modules) != len(doc.Modules) {
		t.Errorf("expected %d modules in event, got %d", len(doc.Modules), len(event.Modules))
	}
}

func TestStoredBlobExcludesProgress(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "u1")
	svc := NewCourseService(store, nil)
	tracker := NewProgressTracker(store, nil)
	ctx := context.Background()

	doc := testCourse("c1", "Algorithms")
	saveTestCourse(t, svc, doc, "u1")
	if _, err := tracker.MarkSectionCompleted(ctx, "c1", "u1", 0, 0, 4); err != nil {
		t.Fatalf("failed to mark section: %v", err)
	}

	// Re-save the merged document; the progress must stay out of the blob.
	merged, err := svc.GetCoursesByUserID(ctx, "u1")
	if err != nil || len(merged) != 1 {
		t.Fatalf("failed to list courses: %v", err)
	}
	saveTestCourse(t, svc, merged[0], "u1")

	got, err := svc.GetCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("failed to get course: %v", err)
	}
	if got.Progress != nil {
		t.Error("progress leaked into the stored course blob")
	}
}
