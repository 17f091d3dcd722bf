package chat

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/services"
	"github.com/studyforge/study-assistant/services/provider"
	"github.com/studyforge/study-assistant/utils/response"
	"github.com/studyforge/study-assistant/utils/validation"
)

// ChatHandler serves course conversations: transcript reads, and message
// sends that go through the content provider and append both sides to the
// transcript.
type ChatHandler struct {
	chats     *services.ChatService
	courses   *services.CourseService
	provider  provider.Provider // nil when the assistant is not configured
	validator *validation.Validator

	mu       sync.Mutex
	sessions map[string]provider.ChatSession // keyed by course id
}

// NewChatHandler creates a new chat handler. contentProvider may be nil.
func NewChatHandler(chats *services.ChatService, courses *services.CourseService, contentProvider provider.Provider) *ChatHandler {
	return &ChatHandler{
		chats:     chats,
		courses:   courses,
		provider:  contentProvider,
		validator: validation.NewValidator(),
		sessions:  make(map[string]provider.ChatSession),
	}
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// GetHistory handles GET /api/v1/courses/:id/chat
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return response.BadRequest(c, "user_id is required")
	}

	entries, err := h.chats.GetChatHistory(c.Context(), c.Params("id"), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch chat history")
	}
	return response.Success(c, entries)
}

// SendMessage handles POST /api/v1/courses/:id/chat
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	if h.provider == nil {
		return response.ServiceUnavailable(c, "Study assistant is not configured")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	courseID := c.Params("id")
	session, err := h.sessionFor(c, courseID)
	if err != nil {
		return response.NotFound(c, "Course not found")
	}

	if err := h.chats.SaveChatMessage(c.Context(), courseID, req.UserID, model.ChatSenderUser, req.Message); err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to save message")
	}

	reply, err := session.Send(c.Context(), req.Message)
	if err != nil {
		return response.InternalServerError(c, "Failed to get assistant reply")
	}

	if err := h.chats.SaveChatMessage(c.Context(), courseID, req.UserID, model.ChatSenderAI, reply); err != nil {
		return response.InternalServerError(c, "Failed to save reply")
	}

	return response.Success(c, model.ChatEntry{Sender: model.ChatSenderAI, Text: reply})
}

// sessionFor returns the running session for a course, starting one seeded
// with the course summary on first use.
func (h *ChatHandler) sessionFor(c *fiber.Ctx, courseID string) (provider.ChatSession, error) {
	h.mu.Lock()
	if session, ok := h.sessions[courseID]; ok {
		h.mu.Unlock()
		return session, nil
	}
	h.mu.Unlock()

	doc, err := h.courses.GetCourse(c.Context(), courseID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("course not found")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if session, ok := h.sessions[courseID]; ok {
		return session, nil
	}
	session := h.provider.NewChatSession(doc)
	h.sessions[courseID] = session
	return session, nil
}
