package handlers

import (
	"octofit/internal/models"
	"octofit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// WorkoutHandler serves /api/workouts
type WorkoutHandler struct {
	tracker *service.TrackerService
}

// NewWorkoutHandler creates a new workout handler
func NewWorkoutHandler(tracker *service.TrackerService) *WorkoutHandler {
	return &WorkoutHandler{tracker: tracker}
}

// List handles GET /api/workouts
func (h *WorkoutHandler) List(c *fiber.Ctx) error {
	workouts, err := h.tracker.ListWorkouts(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workouts)
}

// Get handles GET /api/workouts/:id
func (h *WorkoutHandler) Get(c *fiber.Ctx) error {
	workout, err := h.tracker.GetWorkout(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// Create handles POST /api/workouts
func (h *WorkoutHandler) Create(c *fiber.Ctx) error {
	var workout models.Workout
	if err := parseBody(c, &workout); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.CreateWorkout(c.Context(), &workout); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(workout)
}

// Update handles PUT /api/workouts/:id
func (h *WorkoutHandler) Update(c *fiber.Ctx) error {
	var workout models.Workout
	if err := parseBody(c, &workout); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.UpdateWorkout(c.Context(), c.Params("id"), &workout); err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// Delete handles DELETE /api/workouts/:id
func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	if err := h.tracker.DeleteWorkout(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ByDifficulty handles GET /api/workouts/by_difficulty?difficulty=
// @Param difficulty query string true "beginner, intermediate, advanced or expert"
// @Success 200 {array} models.Workout
// @Failure 400 {object} models.ErrorResponse
func (h *WorkoutHandler) ByDifficulty(c *fiber.Ctx) error {
	workouts, err := h.tracker.WorkoutsByDifficulty(c.Context(), c.Query("difficulty"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workouts)
}
