package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/services"
	"github.com/studyforge/study-assistant/utils/blob"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *database.Store) {
	t.Helper()

	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	blobs, err := blob.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}
	study, err := services.NewStudyStateService(blobs)
	if err != nil {
		t.Fatalf("failed to create study state service: %v", err)
	}

	courses := services.NewCourseService(store, nil)
	courses.AddListener(study)

	app := fiber.New()
	SetupRoutes(app, Deps{
		Store:   store,
		Courses: courses,
		Tracker: services.NewProgressTracker(store, nil),
		Chats:   services.NewChatService(store),
		Study:   study,
	})
	return app, store
}

func seedUser(t *testing.T, store *database.Store) *model.User {
	t.Helper()

	user, err := store.EnsureDefaultUser(t.Context(), "Student", "student@localhost")
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("failed to decode response for %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode, env
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestCourseEndpoints(t *testing.T) {
	app, store := newTestApp(t)
	user := seedUser(t, store)

	course := map[string]interface{}{
		"course": map[string]interface{}{
			"title":        "HTTP APIs",
			"introduction": "<p>Intro</p>",
			"modules": []map[string]interface{}{
				{"moduleTitle": "Routing", "sections": []map[string]interface{}{
					{"heading": "Basics", "content": "<p>Paths.</p>"},
				}},
			},
		},
	}
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/courses", course)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	var saved model.CourseDocument
	if err := json.Unmarshal(env.Data, &saved); err != nil {
		t.Fatalf("failed to decode saved course: %v", err)
	}
	if saved.ID == "" || saved.UserID != user.ID {
		t.Fatalf("unexpected saved course: %+v", saved)
	}

	status, env = doJSON(t, app, http.MethodGet, "/api/v1/courses/", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 listing courses, got %d", status)
	}
	var listed []model.CourseDocument
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("failed to decode course list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != saved.ID {
		t.Fatalf("unexpected course list: %+v", listed)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/courses/"+saved.ID, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 fetching course, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/courses/nope", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for missing course, got %d", status)
	}

	// Saving a course derives a subject and per-module tasks.
	status, env = doJSON(t, app, http.MethodGet, "/api/v1/study/subjects", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 listing subjects, got %d", status)
	}
	var subjects []model.Subject
	if err := json.Unmarshal(env.Data, &subjects); err != nil {
		t.Fatalf("failed to decode subjects: %v", err)
	}
	if len(subjects) != 1 || subjects[0].Name != "HTTP APIs" {
		t.Fatalf("expected a derived subject, got %+v", subjects)
	}

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/courses/"+saved.ID, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 deleting course, got %d", status)
	}
}

func TestCourseValidation(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store)

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/courses", map[string]interface{}{
		"course": map[string]interface{}{"title": ""},
	})
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for empty course, got %d", status)
	}
}

func TestGenerateUnavailableWithoutProvider(t *testing.T) {
	app, store := newTestApp(t)
	seedUser(t, store)

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/courses/generate", map[string]string{"topic": "Compilers"})
	if status != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a provider, got %d", status)
	}
}

func TestProgressEndpoints(t *testing.T) {
	app, store := newTestApp(t)
	user := seedUser(t, store)

	mark := func(module, section int) (int, envelope) {
		return doJSON(t, app, http.MethodPost, "/api/v1/courses/c1/progress/sections", map[string]interface{}{
			"user_id":        user.ID,
			"module_index":   module,
			"section_index":  section,
			"total_sections": 2,
		})
	}

	status, _ := mark(0, 0)
	if status != http.StatusOK {
		t.Fatalf("expected 200 marking section, got %d", status)
	}
	status, env := mark(0, 1)
	if status != http.StatusOK {
		t.Fatalf("expected 200 marking section, got %d", status)
	}

	var progress model.CourseProgress
	if err := json.Unmarshal(env.Data, &progress); err != nil {
		t.Fatalf("failed to decode progress: %v", err)
	}
	if progress.ProgressPercentage != 100 {
		t.Errorf("expected 100%%, got %v", progress.ProgressPercentage)
	}

	path := fmt.Sprintf("/api/v1/courses/c1/progress?user_id=%s", user.ID)
	status, _ = doJSON(t, app, http.MethodGet, path, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 fetching progress, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/courses/other/progress?user_id="+user.ID, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for untracked course, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/courses/c1/progress/sections", map[string]interface{}{
		"user_id":        user.ID,
		"module_index":   0,
		"section_index":  0,
		"total_sections": 0,
	})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for zero total sections, got %d", status)
	}
}

func TestStudyEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/study/tasks", map[string]string{
		"text":     "Review notes",
		"due_date": "2026-09-15",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 adding task, got %d", status)
	}
	var task model.Task
	if err := json.Unmarshal(env.Data, &task); err != nil {
		t.Fatalf("failed to decode task: %v", err)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/study/tasks", map[string]string{
		"text":     "Bad date",
		"due_date": "15/09/2026",
	})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for malformed due date, got %d", status)
	}

	task.Completed = true
	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/study/tasks/"+task.ID, task)
	if status != http.StatusOK {
		t.Errorf("expected 200 updating task, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/study/tasks/missing", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 deleting missing task, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodDelete, "/api/v1/study/tasks/"+task.ID, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 deleting task, got %d", status)
	}
}

func TestUserEndpoints(t *testing.T) {
	app, store := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/users/current", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 before seeding, got %d", status)
	}

	user := seedUser(t, store)
	status, env := doJSON(t, app, http.MethodGet, "/api/v1/users/current", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 after seeding, got %d", status)
	}
	var got model.User
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}
}
