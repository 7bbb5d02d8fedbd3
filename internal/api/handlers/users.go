package handlers

import (
	"octofit/internal/models"
	"octofit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves /api/users
type UserHandler struct {
	tracker *service.TrackerService
}

// NewUserHandler creates a new user handler
func NewUserHandler(tracker *service.TrackerService) *UserHandler {
	return &UserHandler{tracker: tracker}
}

// List handles GET /api/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.tracker.ListUsers(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// Get handles GET /api/users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.tracker.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// Create handles POST /api/users
// @Param request body models.User true "User to create"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var user models.User
	if err := parseBody(c, &user); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.CreateUser(c.Context(), &user); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Update handles PUT /api/users/:id
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var user models.User
	if err := parseBody(c, &user); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.UpdateUser(c.Context(), c.Params("id"), &user); err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// Delete handles DELETE /api/users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.tracker.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ByTeam handles GET /api/users/by_team?team=
// @Param team query string true "Team name"
// @Success 200 {array} models.User
// @Failure 400 {object} models.ErrorResponse
func (h *UserHandler) ByTeam(c *fiber.Ctx) error {
	users, err := h.tracker.UsersByTeam(c.Context(), c.Query("team"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// Activities handles GET /api/users/:id/activities
func (h *UserHandler) Activities(c *fiber.Ctx) error {
	activities, err := h.tracker.ActivitiesOf(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(activities)
}
