package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/studyforge/study-assistant/config"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/services"
)

// Seeds the local database with the default profile and one sample course,
// so the UI has something to show on a fresh install.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := database.Open(cfg.DB_PATH)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	user, err := store.EnsureDefaultUser(ctx, cfg.DEFAULT_USER_NAME, cfg.DEFAULT_USER_EMAIL)
	if err != nil {
		log.Fatalf("Failed to create default user: %v", err)
	}
	fmt.Println("User:", user.ID)

	courses := services.NewCourseService(store, nil)
	existing, err := courses.GetCoursesByUserID(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to list courses: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("Database already has %d course(s), nothing to seed.\n", len(existing))
		return
	}

	saved, err := courses.SaveCourse(ctx, sampleCourse(), user.ID)
	if err != nil {
		log.Fatalf("Failed to seed sample course: %v", err)
	}
	fmt.Println("Seeded sample course:", saved.ID)
}

func sampleCourse() *model.CourseDocument {
	return &model.CourseDocument{
		Title:        "Welcome to Your Study Assistant",
		Introduction: "<p>A short tour of how courses, progress and chat work together.</p>",
		Modules: []model.Module{
			{
				ModuleTitle: "Getting Around",
				Sections: []model.Section{
					{
						Heading: "Courses",
						Content: "<p>Courses are generated from a topic and saved locally. Open one to start reading.</p>",
					},
					{
						Heading: "Tracking Progress",
						Content: "<p>Mark sections as you finish them; the completion percentage updates automatically.</p>",
					},
				},
			},
			{
				ModuleTitle: "Going Further",
				Sections: []model.Section{
					{
						Heading: "Asking Questions",
						Content: "<p>Each course has its own chat. Ask about anything in the material.</p>",
						Resources: []model.Resource{
							{Type: model.ResourceTypeDocumentation, Title: "Markdown guide", URL: "https://www.markdownguide.org"},
						},
					},
				},
			},
		},
		References: []model.Reference{
			{Title: "Spaced repetition", URL: "https://en.wikipedia.org/wiki/Spaced_repetition"},
		},
	}
}
