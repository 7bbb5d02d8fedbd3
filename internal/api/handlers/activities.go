package handlers

import (
	"octofit/internal/models"
	"octofit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ActivityHandler serves /api/activities
type ActivityHandler struct {
	tracker *service.TrackerService
	limits  Limits
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(tracker *service.TrackerService, limits Limits) *ActivityHandler {
	return &ActivityHandler{tracker: tracker, limits: limits}
}

// List handles GET /api/activities
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	activities, err := h.tracker.ListActivities(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(activities)
}

// Get handles GET /api/activities/:id
func (h *ActivityHandler) Get(c *fiber.Ctx) error {
	activity, err := h.tracker.GetActivity(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(activity)
}

// Create handles POST /api/activities
// @Param request body models.Activity true "Activity to log"
// @Success 201 {object} models.Activity
// @Failure 400 {object} models.ErrorResponse
func (h *ActivityHandler) Create(c *fiber.Ctx) error {
	var activity models.Activity
	if err := parseBody(c, &activity); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.CreateActivity(c.Context(), &activity); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(activity)
}

// Update handles PUT /api/activities/:id
func (h *ActivityHandler) Update(c *fiber.Ctx) error {
	var activity models.Activity
	if err := parseBody(c, &activity); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.UpdateActivity(c.Context(), c.Params("id"), &activity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(activity)
}

// Delete handles DELETE /api/activities/:id
func (h *ActivityHandler) Delete(c *fiber.Ctx) error {
	if err := h.tracker.DeleteActivity(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ByType handles GET /api/activities/by_type?type=
func (h *ActivityHandler) ByType(c *fiber.Ctx) error {
	activities, err := h.tracker.ActivitiesByType(c.Context(), c.Query("type"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(activities)
}

// Recent handles GET /api/activities/recent?limit=
// @Param limit query int false "Number of activities" default(10)
// @Success 200 {array} models.Activity
func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	activities, err := h.tracker.RecentActivities(c.Context(), h.limits.resolve(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(activities)
}
