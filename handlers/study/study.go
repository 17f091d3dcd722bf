package study

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/services"
	"github.com/studyforge/study-assistant/utils/response"
	"github.com/studyforge/study-assistant/utils/validation"
)

// StudyHandler serves the task/subject/goal board endpoints
type StudyHandler struct {
	state     *services.StudyStateService
	validator *validation.Validator
}

// NewStudyHandler creates a new study-state handler
func NewStudyHandler(state *services.StudyStateService) *StudyHandler {
	return &StudyHandler{
		state:     state,
		validator: validation.NewValidator(),
	}
}

// AddTaskRequest represents the request body for adding a task
type AddTaskRequest struct {
	Text    string `json:"text" validate:"required,min=1,max=500"`
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// AddSubjectRequest represents the request body for adding a subject
type AddSubjectRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// AddGoalRequest represents the request body for adding a goal
type AddGoalRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

func (h *StudyHandler) writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrItemNotFound) {
		return response.NotFound(c, err.Error())
	}
	return response.InternalServerError(c, "Failed to update study state")
}

// ==================== TASKS ====================

// ListTasks handles GET /api/v1/study/tasks
func (h *StudyHandler) ListTasks(c *fiber.Ctx) error {
	return response.Success(c, h.state.Tasks())
}

// AddTask handles POST /api/v1/study/tasks
func (h *StudyHandler) AddTask(c *fiber.Ctx) error {
	var req AddTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	task, err := h.state.AddTask(validation.SanitizeString(req.Text), req.DueDate)
	if err != nil {
		return h.writeError(c, err)
	}
	return response.Created(c, task)
}

// UpdateTask handles PUT /api/v1/study/tasks/:id
func (h *StudyHandler) UpdateTask(c *fiber.Ctx) error {
	var task model.Task
	if err := c.BodyParser(&task); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	task.ID = c.Params("id")

	if err := h.state.UpdateTask(task); err != nil {
		return h.writeError(c, err)
	}
	return response.Success(c, task)
}

// DeleteTask handles DELETE /api/v1/study/tasks/:id
func (h *StudyHandler) DeleteTask(c *fiber.Ctx) error {
	if err := h.state.DeleteTask(c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return response.SuccessWithMessage(c, "Task deleted", nil)
}

// ==================== SUBJECTS ====================

// ListSubjects handles GET /api/v1/study/subjects
func (h *StudyHandler) ListSubjects(c *fiber.Ctx) error {
	return response.Success(c, h.state.Subjects())
}

// AddSubject handles POST /api/v1/study/subjects
func (h *StudyHandler) AddSubject(c *fiber.Ctx) error {
	var req AddSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	subject, err := h.state.AddSubject(validation.SanitizeString(req.Name))
	if err != nil {
		return h.writeError(c, err)
	}
	return response.Created(c, subject)
}

// UpdateSubject handles PUT /api/v1/study/subjects/:id
func (h *StudyHandler) UpdateSubject(c *fiber.Ctx) error {
	var subject model.Subject
	if err := c.BodyParser(&subject); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	subject.ID = c.Params("id")
	if subject.Progress < 0 || subject.Progress > 100 {
		return response.BadRequest(c, "Progress must be between 0 and 100")
	}

	if err := h.state.UpdateSubject(subject); err != nil {
		return h.writeError(c, err)
	}
	return response.Success(c, subject)
}

// DeleteSubject handles DELETE /api/v1/study/subjects/:id
func (h *StudyHandler) DeleteSubject(c *fiber.Ctx) error {
	if err := h.state.DeleteSubject(c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return response.SuccessWithMessage(c, "Subject deleted", nil)
}

// ==================== GOALS ====================

// ListGoals handles GET /api/v1/study/goals
func (h *StudyHandler) ListGoals(c *fiber.Ctx) error {
	return response.Success(c, h.state.Goals())
}

// AddGoal handles POST /api/v1/study/goals
func (h *StudyHandler) AddGoal(c *fiber.Ctx) error {
	var req AddGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	goal, err := h.state.AddGoal(validation.SanitizeString(req.Text))
	if err != nil {
		return h.writeError(c, err)
	}
	return response.Created(c, goal)
}

// UpdateGoal handles PUT /api/v1/study/goals/:id
func (h *StudyHandler) UpdateGoal(c *fiber.Ctx) error {
	var goal model.Goal
	if err := c.BodyParser(&goal); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	goal.ID = c.Params("id")

	if err := h.state.UpdateGoal(goal); err != nil {
		return h.writeError(c, err)
	}
	return response.Success(c, goal)
}

// DeleteGoal handles DELETE /api/v1/study/goals/:id
func (h *StudyHandler) DeleteGoal(c *fiber.Ctx) error {
	if err := h.state.DeleteGoal(c.Params("id")); err != nil {
		return h.writeError(c, err)
	}
	return response.SuccessWithMessage(c, "Goal deleted", nil)
}
