package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RootHandler serves the API index
type RootHandler struct {
	baseURL string
}

// NewRootHandler creates a root handler advertising baseURL
func NewRootHandler(baseURL string) *RootHandler {
	return &RootHandler{baseURL: strings.TrimRight(baseURL, "/")}
}

// Index handles GET / and GET /api
func (h *RootHandler) Index(c *fiber.Ctx) error {
	base := h.baseURL
	if base == "" {
		base = c.BaseURL()
	}
	api := base + "/api"

	return c.JSON(fiber.Map{
		"message":  "Welcome to OctoFit Tracker API",
		"base_url": base,
		"endpoints": fiber.Map{
			"users":       api + "/users/",
			"teams":       api + "/teams/",
			"workouts":    api + "/workouts/",
			"activities":  api + "/activities/",
			"leaderboard": api + "/leaderboard/",
		},
		"custom_actions": fiber.Map{
			"users_by_team":          api + "/users/by_team/?team=Team%20Marvel",
			"user_activities":        api + "/users/{user_id}/activities/",
			"team_members":           api + "/teams/{team_id}/members/",
			"team_leaderboard":       api + "/teams/{team_id}/leaderboard/",
			"workouts_by_difficulty": api + "/workouts/by_difficulty/?difficulty=advanced",
			"activities_by_type":     api + "/activities/by_type/?type=running",
			"recent_activities":      api + "/activities/recent/?limit=10",
			"top_leaderboard":        api + "/leaderboard/top/?limit=10",
			"leaderboard_by_team":    api + "/leaderboard/by_team/?team=Team%20Marvel",
			"rebuild_leaderboard":    api + "/leaderboard/rebuild/",
		},
		"websocket": strings.Replace(strings.Replace(base, "https://", "wss://", 1), "http://", "ws://", 1) + "/ws",
	})
}
