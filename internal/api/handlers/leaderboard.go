package handlers

import (
	"octofit/internal/models"
	"octofit/internal/service"
	"octofit/internal/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// LeaderboardHandler handles HTTP requests for the leaderboard
type LeaderboardHandler struct {
	service *service.LeaderboardService
	hub     *websocket.Hub
	limits  Limits
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(service *service.LeaderboardService, hub *websocket.Hub, limits Limits) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		hub:     hub,
		limits:  limits,
	}
}

// List handles GET /api/leaderboard
// @Summary Get leaderboard
// @Description Retrieves every entry of the current leaderboard ordered by rank
// @Produce json
// @Success 200 {array} models.LeaderboardEntry
// @Failure 500 {object} models.ErrorResponse
// @Router /api/leaderboard [get]
func (h *LeaderboardHandler) List(c *fiber.Ctx) error {
	entries, err := h.service.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// Get handles GET /api/leaderboard/:id
func (h *LeaderboardHandler) Get(c *fiber.Ctx) error {
	entry, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// Top handles GET /api/leaderboard/top?limit=
// @Summary Top entries
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {array} models.LeaderboardEntry
// @Router /api/leaderboard/top [get]
func (h *LeaderboardHandler) Top(c *fiber.Ctx) error {
	entries, err := h.service.Top(c.Context(), h.limits.resolve(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// ByTeam handles GET /api/leaderboard/by_team?team=
func (h *LeaderboardHandler) ByTeam(c *fiber.Ctx) error {
	entries, err := h.service.ByTeam(c.Context(), c.Query("team"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// Rebuild handles POST /api/leaderboard/rebuild[?async=true]
// @Summary Rebuild leaderboard
// @Description Recomputes the leaderboard now, or queues a rebuild when async is set
// @Param async query bool false "Queue the rebuild instead of waiting for it"
// @Success 200 {object} models.RebuildResponse
// @Success 202 {object} models.RebuildResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/leaderboard/rebuild [post]
func (h *LeaderboardHandler) Rebuild(c *fiber.Ctx) error {
	if c.QueryBool("async") {
		queued := h.service.RequestRebuild("api request")
		version, err := h.service.Version(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(models.RebuildResponse{
			Version: version,
			BuiltAt: h.service.BuiltAt(),
			Queued:  queued,
		})
	}

	snap, err := h.service.Rebuild(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.RebuildResponse{
		Version: snap.Version,
		BuiltAt: snap.BuiltAt,
		Total:   len(snap.Entries),
		Entries: snap.Entries,
	})
}

// HandleWebSocket attaches a client to the version hub
func (h *LeaderboardHandler) HandleWebSocket(c *fiberws.Conn) {
	websocket.ServeWS(h.hub, c)
}

// HealthCheck handles GET /api/health
// @Summary Health check
// @Description Checks the health of the service and its dependencies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.ErrorResponse
// @Router /api/health [get]
func (h *LeaderboardHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.service.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:   "Health check failed",
			Message: err.Error(),
		})
	}

	version, _ := h.service.Version(c.Context())
	clients := 0
	if h.hub != nil {
		clients = h.hub.GetClientCount()
	}
	return c.JSON(fiber.Map{
		"status":              "healthy",
		"message":             "All systems operational",
		"leaderboard_version": version,
		"websocket_clients":   clients,
	})
}
