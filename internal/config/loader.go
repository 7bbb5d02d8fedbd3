package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "OCTOFIT_"
	envFileVar = "OCTOFIT_CONFIG"
)

// sections are the nested koanf keys; OCTOFIT_<SECTION>_<FIELD> maps to section.field
var sections = []string{"server", "store", "database", "mongo", "redis", "leaderboard", "worker", "simulator"}

// Load builds a Config by layering, lowest precedence first:
//  1. .env files (parent dir, then cwd) exported into the environment
//  2. defaults from New, including plain env vars such as DATABASE_URL
//  3. YAML file named by OCTOFIT_CONFIG, if set
//  4. OCTOFIT_ prefixed env vars
func Load() (*Config, error) {
	// Missing .env files are fine; the environment may already be populated.
	if err := godotenv.Load("../.env"); err != nil {
		_ = godotenv.Load()
	}
	return load()
}

func load() (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps OCTOFIT_REDIS_ENABLED -> redis.enabled and OCTOFIT_LOG_LEVEL -> log_level.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if s == "config" {
		return ""
	}
	for _, section := range sections {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}
