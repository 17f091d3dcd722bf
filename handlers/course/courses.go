package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/services"
	"github.com/studyforge/study-assistant/services/provider"
	"github.com/studyforge/study-assistant/utils/response"
	"github.com/studyforge/study-assistant/utils/validation"
)

// CourseHandler handles course persistence and generation requests
type CourseHandler struct {
	store     *database.Store
	courses   *services.CourseService
	provider  provider.Provider // nil when generation is not configured
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler. contentProvider may be nil.
func NewCourseHandler(store *database.Store, courses *services.CourseService, contentProvider provider.Provider) *CourseHandler {
	return &CourseHandler{
		store:     store,
		courses:   courses,
		provider:  contentProvider,
		validator: validation.NewValidator(),
	}
}

// SaveCourseRequest represents the request body for saving a course
type SaveCourseRequest struct {
	Course model.CourseDocument `json:"course" validate:"required"`
}

// GenerateCourseRequest represents the request body for generating a course
type GenerateCourseRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=200"`
}

// ContinueCourseRequest represents the request body for extending a course
type ContinueCourseRequest struct {
	Mode string `json:"mode" validate:"required,oneof=new-modules expand-sections"`
}

// resolveUserID picks the user the request operates on: an explicit
// user_id query wins, otherwise the single local profile.
func (h *CourseHandler) resolveUserID(c *fiber.Ctx) (string, error) {
	if id := c.Query("user_id"); id != "" {
		return id, nil
	}
	user, err := h.store.GetCurrentUser(c.Context())
	if err != nil || user == nil {
		return "", errors.New("no user profile")
	}
	return user.ID, nil
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	userID, err := h.resolveUserID(c)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve user")
	}

	if query := c.Query("search"); query != "" {
		docs, err := h.courses.SearchCourses(c.Context(), query, userID)
		if err != nil {
			return response.InternalServerError(c, "Failed to search courses")
		}
		return response.Success(c, docs)
	}

	docs, err := h.courses.GetCoursesByUserID(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}
	return response.Success(c, docs)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	doc, err := h.courses.GetCourse(c.Context(), c.Params("id"))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch course")
	}
	if doc == nil {
		return response.NotFound(c, "Course not found")
	}
	return response.Success(c, doc)
}

// SaveCourse handles POST /api/v1/courses
func (h *CourseHandler) SaveCourse(c *fiber.Ctx) error {
	var req SaveCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Course.Title == "" || len(req.Course.Modules) == 0 {
		return response.BadRequest(c, "Course needs a title and at least one module")
	}

	userID, err := h.resolveUserID(c)
	if err != nil {
		return response.InternalServerError(c, "Failed to resolve user")
	}

	doc, err := h.courses.SaveCourse(c.Context(), &req.Course, userID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to save course")
	}
	return response.Created(c, doc)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.courses.DeleteCourse(c.Context(), c.Params("id")); err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}
	return response.SuccessWithMessage(c, "Course deleted", nil)
}

// GenerateCourse handles POST /api/v1/courses/generate
func (h *CourseHandler) GenerateCourse(c *fiber.Ctx) error {
	if h.provider == nil {
		return response.ServiceUnavailable(c, "Course generation is not configured")
	}

	var req GenerateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	doc, err := h.provider.GenerateCourse(c.Context(), validation.SanitizeString(req.Topic))
	if err != nil {
		return response.InternalServerError(c, "Failed to generate course")
	}
	return response.Success(c, doc)
}

// ContinueCourse handles POST /api/v1/courses/:id/continue. The extended
// document is returned without saving; the client saves explicitly.
func (h *CourseHandler) ContinueCourse(c *fiber.Ctx) error {
	if h.provider == nil {
		return response.ServiceUnavailable(c, "Course generation is not configured")
	}

	var req ContinueCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	doc, err := h.courses.GetCourse(c.Context(), c.Params("id"))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch course")
	}
	if doc == nil {
		return response.NotFound(c, "Course not found")
	}

	extended, err := h.provider.ContinueGeneration(c.Context(), doc, provider.ContinueMode(req.Mode))
	if err != nil {
		return response.InternalServerError(c, "Failed to continue generation")
	}
	return response.Success(c, extended)
}
