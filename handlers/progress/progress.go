package progress

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/services"
	"github.com/studyforge/study-assistant/utils/response"
	"github.com/studyforge/study-assistant/utils/validation"
)

// ProgressHandler handles completion-tracking requests
type ProgressHandler struct {
	tracker   *services.ProgressTracker
	validator *validation.Validator
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(tracker *services.ProgressTracker) *ProgressHandler {
	return &ProgressHandler{
		tracker:   tracker,
		validator: validation.NewValidator(),
	}
}

// MarkSectionRequest represents the request body for completing a section
type MarkSectionRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	ModuleIndex   *int   `json:"module_index" validate:"required,gte=0"`
	SectionIndex  *int   `json:"section_index" validate:"required,gte=0"`
	TotalSections int    `json:"total_sections" validate:"required,gte=1"`
}

// MarkModuleRequest represents the request body for completing a module
type MarkModuleRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	ModuleIndex *int   `json:"module_index" validate:"required,gte=0"`
}

// GetProgress handles GET /api/v1/courses/:id/progress
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return response.BadRequest(c, "user_id is required")
	}

	record, err := h.tracker.GetCourseProgress(c.Context(), c.Params("id"), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch progress")
	}
	if record == nil {
		return response.NotFound(c, "No progress recorded yet")
	}
	return response.Success(c, record)
}

// MarkSection handles POST /api/v1/courses/:id/progress/sections
func (h *ProgressHandler) MarkSection(c *fiber.Ctx) error {
	var req MarkSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	record, err := h.tracker.MarkSectionCompleted(c.Context(), c.Params("id"), req.UserID,
		*req.ModuleIndex, *req.SectionIndex, req.TotalSections)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to record completion")
	}
	return response.Success(c, record)
}

// MarkModule handles POST /api/v1/courses/:id/progress/modules
func (h *ProgressHandler) MarkModule(c *fiber.Ctx) error {
	var req MarkModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	record, err := h.tracker.MarkModuleCompleted(c.Context(), c.Params("id"), req.UserID, *req.ModuleIndex)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to record completion")
	}
	return response.Success(c, record)
}
