// Package api wires the HTTP handlers into a fiber application.
package api

import (
	"octofit/internal/api/handlers"
	"octofit/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
)

// Handlers groups every route handler
type Handlers struct {
	Root        *handlers.RootHandler
	Users       *handlers.UserHandler
	Teams       *handlers.TeamHandler
	Workouts    *handlers.WorkoutHandler
	Activities  *handlers.ActivityHandler
	Leaderboard *handlers.LeaderboardHandler
}

// NewApp creates the fiber application with middleware and routes
func NewApp(h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "OctoFit Tracker",
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	SetupRoutes(app, h)
	return app
}

// SetupRoutes registers every route on app. Collection actions are
// registered before the :id routes they would otherwise shadow.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/", h.Root.Index)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")
	api.Get("/", h.Root.Index)
	api.Get("/health", h.Leaderboard.HealthCheck)

	users := api.Group("/users")
	users.Get("/", h.Users.List)
	users.Post("/", h.Users.Create)
	users.Get("/by_team", h.Users.ByTeam)
	users.Get("/:id", h.Users.Get)
	users.Put("/:id", h.Users.Update)
	users.Delete("/:id", h.Users.Delete)
	users.Get("/:id/activities", h.Users.Activities)

	teams := api.Group("/teams")
	teams.Get("/", h.Teams.List)
	teams.Post("/", h.Teams.Create)
	teams.Get("/:id", h.Teams.Get)
	teams.Put("/:id", h.Teams.Update)
	teams.Delete("/:id", h.Teams.Delete)
	teams.Get("/:id/members", h.Teams.Members)
	teams.Get("/:id/leaderboard", h.Teams.Leaderboard)

	workouts := api.Group("/workouts")
	workouts.Get("/", h.Workouts.List)
	workouts.Post("/", h.Workouts.Create)
	workouts.Get("/by_difficulty", h.Workouts.ByDifficulty)
	workouts.Get("/:id", h.Workouts.Get)
	workouts.Put("/:id", h.Workouts.Update)
	workouts.Delete("/:id", h.Workouts.Delete)

	activities := api.Group("/activities")
	activities.Get("/", h.Activities.List)
	activities.Post("/", h.Activities.Create)
	activities.Get("/by_type", h.Activities.ByType)
	activities.Get("/recent", h.Activities.Recent)
	activities.Get("/:id", h.Activities.Get)
	activities.Put("/:id", h.Activities.Update)
	activities.Delete("/:id", h.Activities.Delete)

	board := api.Group("/leaderboard")
	board.Get("/", h.Leaderboard.List)
	board.Get("/top", h.Leaderboard.Top)
	board.Get("/by_team", h.Leaderboard.ByTeam)
	board.Post("/rebuild", h.Leaderboard.Rebuild)
	board.Get("/:id", h.Leaderboard.Get)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", fiberws.New(h.Leaderboard.HandleWebSocket))
}
