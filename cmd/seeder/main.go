package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"octofit/internal/config"
	"octofit/internal/leaderboard"
	"octofit/internal/logger"
	"octofit/internal/repository"
	"octofit/internal/seed"
	"octofit/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Populate the OctoFit store with the heroes demo dataset",
	Long: `Seeds two teams of heroes, a catalog of workouts and a batch of random
activities from the last 30 days, then rebuilds the leaderboard.

The store is selected by the same configuration the server uses.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

var (
	seedActivities int
	seedReset      bool
	seedNoRebuild  bool
	seedRandom     int64
)

func init() {
	rootCmd.Flags().IntVar(&seedActivities, "activities", 50, "Number of random activities to generate")
	rootCmd.Flags().BoolVar(&seedReset, "reset", true, "Delete existing records before seeding")
	rootCmd.Flags().BoolVar(&seedNoRebuild, "no-rebuild", false, "Skip the leaderboard rebuild")
	rootCmd.Flags().Int64Var(&seedRandom, "seed", 0, "Random seed (default: current time)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("%v, using info", err)
	}
	if seedActivities < 0 {
		return fmt.Errorf("--activities must not be negative")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("Seeding OctoFit %s store...", cfg.Store.Driver)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer store.Close()

	if seedRandom == 0 {
		seedRandom = time.Now().UnixNano()
	}
	start := time.Now()
	res, err := seed.New(store, rand.New(rand.NewSource(seedRandom))).Run(ctx, seed.Options{
		Activities: seedActivities,
		Reset:      seedReset,
	})
	if err != nil {
		return err
	}

	logger.Success("Seeding completed in %v", time.Since(start).Round(time.Millisecond))
	logger.Info("  - Teams: %d", res.Teams)
	logger.Info("  - Users: %d", res.Users)
	logger.Info("  - Workouts: %d", res.Workouts)
	logger.Info("  - Activities: %d", res.Activities)

	if seedNoRebuild {
		return nil
	}

	var opts []service.LeaderboardOption
	if cfg.Redis.Enabled {
		client, err := initRedis(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		cache := repository.NewRedisCache(client)
		defer cache.Close()
		opts = append(opts, service.WithSnapshotCache(cache))
	}

	snap, err := service.NewLeaderboardService(store, opts...).Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild leaderboard: %w", err)
	}
	logger.Success("Leaderboard rebuilt: %d entries (version %d)", len(snap.Entries), snap.Version)

	fmt.Println("\nTop 10:")
	for _, e := range leaderboard.Top(snap.Entries, 10) {
		fmt.Printf("  %s (%s)\n", e, e.Team)
	}
	return nil
}

// openStore opens and prepares the configured entity store
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("Memory store selected; seeded data is discarded on exit")
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
		db, err := repository.OpenPostgres(ctx, cfg.GetDSN(), 10)
		if err != nil {
			return nil, err
		}
		store := repository.NewPostgresStore(db)
		if err := store.AutoMigrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return store, nil
	}
}

// initRedis initializes Redis connection
func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.GetRedisAddr(),
		Username:    cfg.Redis.Username,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  3,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
