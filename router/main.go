package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/handlers"
	chat_handlers "github.com/studyforge/study-assistant/handlers/chat"
	course_handlers "github.com/studyforge/study-assistant/handlers/course"
	progress_handlers "github.com/studyforge/study-assistant/handlers/progress"
	study_handlers "github.com/studyforge/study-assistant/handlers/study"
	user_handlers "github.com/studyforge/study-assistant/handlers/user"
	"github.com/studyforge/study-assistant/services"
	"github.com/studyforge/study-assistant/services/provider"
)

// Deps bundles everything the routes need
type Deps struct {
	Store    *database.Store
	Courses  *services.CourseService
	Tracker  *services.ProgressTracker
	Chats    *services.ChatService
	Study    *services.StudyStateService
	Provider provider.Provider // may be nil
}

// SetupRoutes attaches all endpoints to the app
func SetupRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", handlers.HandleCheckHealth(deps.Store))

	v1 := app.Group("/api/v1")
	v1.Get("/stats", handlers.HandleGetStats(deps.Store))

	userHandler := user_handlers.NewUserHandler(deps.Store)
	users := v1.Group("/users")
	users.Get("/current", userHandler.GetCurrentUser)
	users.Get("/:id", userHandler.GetUser)
	users.Delete("/:id", userHandler.DeleteUser)

	courseHandler := course_handlers.NewCourseHandler(deps.Store, deps.Courses, deps.Provider)
	courses := v1.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Post("/", courseHandler.SaveCourse)
	courses.Post("/generate", courseHandler.GenerateCourse)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)
	courses.Post("/:id/continue", courseHandler.ContinueCourse)

	progressHandler := progress_handlers.NewProgressHandler(deps.Tracker)
	courses.Get("/:id/progress", progressHandler.GetProgress)
	courses.Post("/:id/progress/sections", progressHandler.MarkSection)
	courses.Post("/:id/progress/modules", progressHandler.MarkModule)

	chatHandler := chat_handlers.NewChatHandler(deps.Chats, deps.Courses, deps.Provider)
	courses.Get("/:id/chat", chatHandler.GetHistory)
	courses.Post("/:id/chat", chatHandler.SendMessage)

	studyHandler := study_handlers.NewStudyHandler(deps.Study)
	studyGroup := v1.Group("/study")
	studyGroup.Get("/tasks", studyHandler.ListTasks)
	studyGroup.Post("/tasks", studyHandler.AddTask)
	studyGroup.Put("/tasks/:id", studyHandler.UpdateTask)
	studyGroup.Delete("/tasks/:id", studyHandler.DeleteTask)
	studyGroup.Get("/subjects", studyHandler.ListSubjects)
	studyGroup.Post("/subjects", studyHandler.AddSubject)
	studyGroup.Put("/subjects/:id", studyHandler.UpdateSubject)
	studyGroup.Delete("/subjects/:id", studyHandler.DeleteSubject)
	studyGroup.Get("/goals", studyHandler.ListGoals)
	studyGroup.Post("/goals", studyHandler.AddGoal)
	studyGroup.Put("/goals/:id", studyHandler.UpdateGoal)
	studyGroup.Delete("/goals/:id", studyHandler.DeleteGoal)
}
