package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"octofit/internal/api"
	"octofit/internal/api/handlers"
	"octofit/internal/config"
	"octofit/internal/jobs"
	"octofit/internal/logger"
	"octofit/internal/repository"
	"octofit/internal/service"
	"octofit/internal/websocket"
	"octofit/internal/worker"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("%v, using info", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	logger.Success("Connected to %s store", cfg.Store.Driver)

	var lbOpts []service.LeaderboardOption
	var cache *repository.RedisCache
	if cfg.Redis.Enabled {
		redisClient, err := initRedis(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis: %v", err)
		}
		logger.Success("Connected to Redis")
		cache = repository.NewRedisCache(redisClient)
		lbOpts = append(lbOpts, service.WithSnapshotCache(cache))
	}

	leaderboardService := service.NewLeaderboardService(store, lbOpts...)

	// Rebuilds triggered by writes run on the pool so requests never wait on them
	workerPool := worker.NewWorkerPool(cfg.Worker.Count, cfg.Worker.QueueSize, leaderboardService)
	workerPool.Start()
	leaderboardService.UseQueue(workerPool)

	trackerService := service.NewTrackerService(store, leaderboardService, cfg.Leaderboard.AutoRebuild)
	if err := trackerService.SyncAllMembers(ctx); err != nil {
		logger.Warn("Failed to sync team members: %v", err)
	}

	hub := websocket.NewHub(leaderboardService)
	go hub.Run(ctx)

	if cfg.Leaderboard.RebuildOnStart {
		snap, err := leaderboardService.Rebuild(ctx)
		if err != nil {
			logger.Error("Initial leaderboard rebuild failed: %v", err)
		} else {
			logger.Success("Leaderboard built: %d entries (version %d)", len(snap.Entries), snap.Version)
		}
	}

	var simulator *jobs.SimulationManager
	if cfg.Simulator.Enabled {
		// With auto rebuild on, every activity write already queues a rebuild
		var rebuilds service.RebuildRequester
		if !cfg.Leaderboard.AutoRebuild {
			rebuilds = leaderboardService
		}
		simulator = jobs.NewSimulationManager(trackerService, rebuilds, jobs.SimulatorConfig{
			TickInterval: cfg.Simulator.TickInterval,
			MinPoints:    cfg.Simulator.MinPoints,
			MaxPoints:    cfg.Simulator.MaxPoints,
		})
		if err := simulator.Start(ctx); err != nil {
			logger.Warn("Failed to start simulator: %v", err)
		}
	}

	limits := handlers.Limits{Default: cfg.Leaderboard.DefaultLimit, Max: cfg.Leaderboard.MaxLimit}
	app := api.NewApp(api.Handlers{
		Root:        handlers.NewRootHandler(cfg.Server.BaseURL),
		Users:       handlers.NewUserHandler(trackerService),
		Teams:       handlers.NewTeamHandler(trackerService, leaderboardService),
		Workouts:    handlers.NewWorkoutHandler(trackerService),
		Activities:  handlers.NewActivityHandler(trackerService, limits),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService, hub, limits),
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server...")

		if simulator != nil {
			simulator.Stop()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown: %v", err)
		}

		// Let a pending rebuild finish before the store goes away
		if err := workerPool.Shutdown(30 * time.Second); err != nil {
			logger.Error("Worker pool shutdown error: %v", err)
		}
		cancel()

		if err := store.Close(); err != nil {
			logger.Error("Error closing store: %v", err)
		}
		if cache != nil {
			if err := cache.Close(); err != nil {
				logger.Error("Error closing Redis: %v", err)
			}
		}

		logger.Success("Server shutdown complete")
	}()

	logger.Info("Server starting on port %d (store=%s, redis=%t)", cfg.Server.Port, cfg.Store.Driver, cfg.Redis.Enabled)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// openStore opens and prepares the configured entity store
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return repository.NewMemoryStore(), nil

	case config.DriverMongo:
		client, err := repository.OpenMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		store := repository.NewMongoStore(client, cfg.Mongo.Database)
		if err := store.EnsureIndexes(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return store, nil

	default:
		// Pool sized for the API plus the rebuild workers
		db, err := repository.OpenPostgres(ctx, cfg.GetDSN(), 30)
		if err != nil {
			return nil, err
		}
		store := repository.NewPostgresStore(db)
		if err := store.AutoMigrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Success("Database migrations completed")
		return store, nil
	}
}

// initRedis initializes the Redis connection used for leaderboard snapshots
func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
