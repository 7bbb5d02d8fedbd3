package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all configuration for the application
type Config struct {
	LogLevel    string            `koanf:"log_level"`
	Server      ServerConfig      `koanf:"server"`
	Store       StoreConfig       `koanf:"store"`
	Database    DatabaseConfig    `koanf:"database"`
	Mongo       MongoConfig       `koanf:"mongo"`
	Redis       RedisConfig       `koanf:"redis"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
	Worker      WorkerConfig      `koanf:"worker"`
	Simulator   SimulatorConfig   `koanf:"simulator"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int `koanf:"port"`
	// BaseURL is advertised by the API root endpoint
	BaseURL string `koanf:"base_url"`
}

// StoreConfig selects the entity store backend
type StoreConfig struct {
	Driver string `koanf:"driver"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// LeaderboardConfig controls rebuild triggers and query limits
type LeaderboardConfig struct {
	RebuildOnStart bool `koanf:"rebuild_on_start"`
	// AutoRebuild queues a rebuild after every activity or user write and
	// after a team rename.
	AutoRebuild  bool `koanf:"auto_rebuild"`
	DefaultLimit int  `koanf:"default_limit"`
	MaxLimit     int  `koanf:"max_limit"`
}

// WorkerConfig sizes the rebuild worker pool
type WorkerConfig struct {
	Count     int `koanf:"count"`
	QueueSize int `koanf:"queue_size"`
}

// SimulatorConfig controls the background activity simulator
type SimulatorConfig struct {
	Enabled      bool          `koanf:"enabled"`
	TickInterval time.Duration `koanf:"tick_interval"`
	MinPoints    int           `koanf:"min_points"`
	MaxPoints    int           `koanf:"max_points"`
}

// New returns the default configuration. Plain environment variables
// (DATABASE_URL, DB_HOST, REDIS_HOST, BACKEND_PORT, ...) seed the defaults so
// an existing .env keeps working.
func New() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:    getEnvAsInt("BACKEND_PORT", 8000),
			BaseURL: getEnv("BASE_URL", "http://localhost:8000"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", DriverPostgres),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "octofit_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "octofit_db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Leaderboard: LeaderboardConfig{
			RebuildOnStart: true,
			AutoRebuild:    false,
			DefaultLimit:   10,
			MaxLimit:       100,
		},
		Worker: WorkerConfig{
			Count:     1,
			QueueSize: 16,
		},
		Simulator: SimulatorConfig{
			Enabled:      false,
			TickInterval: 5 * time.Second,
			MinPoints:    10,
			MaxPoints:    50,
		},
	}
}

// Validate checks value ranges and cross-field constraints
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}
	if c.Leaderboard.DefaultLimit < 1 {
		return fmt.Errorf("%w: leaderboard.default_limit must be at least 1", ErrInvalidConfig)
	}
	if c.Leaderboard.MaxLimit < c.Leaderboard.DefaultLimit {
		return fmt.Errorf("%w: leaderboard.max_limit must not be below default_limit", ErrInvalidConfig)
	}
	if c.Worker.Count < 1 || c.Worker.QueueSize < 1 {
		return fmt.Errorf("%w: worker.count and worker.queue_size must be positive", ErrInvalidConfig)
	}
	if c.Simulator.MinPoints > c.Simulator.MaxPoints {
		return fmt.Errorf("%w: simulator.min_points exceeds max_points", ErrInvalidConfig)
	}
	if c.Simulator.Enabled && c.Simulator.TickInterval <= 0 {
		return fmt.Errorf("%w: simulator.tick_interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// GetDSN returns the PostgreSQL DSN
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
