package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/utils/response"
)

// UserHandler serves the local profile endpoints
type UserHandler struct {
	store *database.Store
}

// NewUserHandler creates a new user handler
func NewUserHandler(store *database.Store) *UserHandler {
	return &UserHandler{store: store}
}

// GetCurrentUser handles GET /api/v1/users/current. The profile is created
// at startup, so a missing row means seeding has not run yet.
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	user, err := h.store.GetCurrentUser(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load user profile")
	}
	if user == nil {
		return response.NotFound(c, "No user profile yet")
	}
	return response.Success(c, user)
}

// GetUser handles GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.store.GetUserByID(c.Context(), c.Params("id"))
	if err != nil {
		return response.InternalServerError(c, "Failed to load user")
	}
	if user == nil {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, user)
}

// DeleteUser handles DELETE /api/v1/users/:id and removes all data owned by
// the user.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.store.DeleteUserData(c.Context(), c.Params("id")); err != nil {
		return response.InternalServerError(c, "Failed to delete user data")
	}
	return response.SuccessWithMessage(c, "User data deleted", nil)
}
