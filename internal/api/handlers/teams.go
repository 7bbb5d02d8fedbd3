package handlers

import (
	"octofit/internal/models"
	"octofit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TeamHandler serves /api/teams
type TeamHandler struct {
	tracker     *service.TrackerService
	leaderboard *service.LeaderboardService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(tracker *service.TrackerService, leaderboard *service.LeaderboardService) *TeamHandler {
	return &TeamHandler{tracker: tracker, leaderboard: leaderboard}
}

// List handles GET /api/teams
func (h *TeamHandler) List(c *fiber.Ctx) error {
	teams, err := h.tracker.ListTeams(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(teams)
}

// Get handles GET /api/teams/:id
func (h *TeamHandler) Get(c *fiber.Ctx) error {
	team, err := h.tracker.GetTeam(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(team)
}

// Create handles POST /api/teams
func (h *TeamHandler) Create(c *fiber.Ctx) error {
	var team models.Team
	if err := parseBody(c, &team); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.CreateTeam(c.Context(), &team); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

// Update handles PUT /api/teams/:id
func (h *TeamHandler) Update(c *fiber.Ctx) error {
	var team models.Team
	if err := parseBody(c, &team); err != nil {
		return respondError(c, err)
	}
	if err := h.tracker.UpdateTeam(c.Context(), c.Params("id"), &team); err != nil {
		return respondError(c, err)
	}
	return c.JSON(team)
}

// Delete handles DELETE /api/teams/:id
func (h *TeamHandler) Delete(c *fiber.Ctx) error {
	if err := h.tracker.DeleteTeam(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Members handles GET /api/teams/:id/members
func (h *TeamHandler) Members(c *fiber.Ctx) error {
	users, err := h.tracker.MembersOf(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// Leaderboard handles GET /api/teams/:id/leaderboard
func (h *TeamHandler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.leaderboard.OfTeam(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
