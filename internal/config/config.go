package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values shared by the API and worker
// processes.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	ScoringBaseURL   string
	ScoringTimeout   time.Duration
	ScoreCacheTTL    time.Duration
	QueueConcurrency int
	InlineGrading    bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Gradeflow API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("scoring.timeout", "15s")
	v.SetDefault("score_cache.ttl", "24h")
	v.SetDefault("queue.concurrency", 50)
	v.SetDefault("inline_grading", false)

	scoringTimeout, err := time.ParseDuration(v.GetString("scoring.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid scoring timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("score_cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid score cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		ScoringBaseURL:   v.GetString("scoring.base_url"),
		ScoringTimeout:   scoringTimeout,
		ScoreCacheTTL:    cacheTTL,
		QueueConcurrency: v.GetInt("queue.concurrency"),
		InlineGrading:    v.GetBool("inline_grading"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ScoringBaseURL == "" {
		return Config{}, fmt.Errorf("scoring base url must be provided")
	}

	if cfg.QueueConcurrency <= 0 {
		cfg.QueueConcurrency = 50
	}

	return cfg, nil
}
