package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/model"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()

	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *database.Store, id string) {
	t.Helper()

	db, err := store.DB()
	if err != nil {
		t.Fatalf("failed to get db: %v", err)
	}
	user := model.User{
		ID:        id,
		Name:      "Test " + id,
		Email:     fmt.Sprintf("%s@example.com", id),
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", id, err)
	}
}

func testCourse(id, title string) *model.CourseDocument {
	return &model.CourseDocument{
		ID:           id,
		Title:        title,
		Introduction: "<p>An introduction to " + title + ".</p>",
		Modules: []model.Module{
			{
				ModuleTitle: "Getting Started",
				Sections: []model.Section{
					{
						Heading: "Overview",
						Content: "<p>What this course covers.</p>",
						Resources: []model.Resource{
							{Type: model.ResourceTypeVideo, Title: "Intro video", URL: "https://youtube.com/watch?v=dQw4w9WgXcQ"},
							{Type: model.ResourceTypeArticle, Title: "Intro article", URL: "https://example.com/intro"},
						},
					},
					{
						Heading:     "Setup",
						Content:     "<p>Installing the tools.</p>",
						CodeSnippet: &model.CodeSnippet{Language: "bash", Code: "make install", Description: "Install everything"},
					},
				},
			},
			{
				ModuleTitle: "Going Deeper",
				Sections: []model.Section{
					{Heading: "Internals", Content: "<p>How it works.</p>"},
					{Heading: "Patterns", Content: "<p>How to use it well.</p>"},
				},
			},
		},
		VideoSuggestions: []model.VideoSuggestion{
			{Title: title + " crash course", Query: title + " crash course"},
		},
		References: []model.Reference{
			{Title: "Official docs", URL: "https://example.com/docs"},
		},
	}
}

func saveTestCourse(t *testing.T, svc *CourseService, doc *model.CourseDocument, userID string) *model.CourseDocument {
	t.Helper()

	saved, err := svc.SaveCourse(context.Background(), doc, userID)
	if err != nil {
		t.Fatalf("failed to save course: %v", err)
	}
	return saved
}
