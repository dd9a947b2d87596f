// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Engagement    EngagementConfig    `mapstructure:"engagement"`
	Leaderboard   LeaderboardConfig   `mapstructure:"leaderboard"`
	Prediction    PredictionConfig    `mapstructure:"prediction"`
	Badges        []BadgeConfig       `mapstructure:"badges"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// EngagementConfig contains the score weight schedule and level thresholds.
type EngagementConfig struct {
	Weights WeightsConfig `mapstructure:"weights"`
	Levels  LevelsConfig  `mapstructure:"levels"`
}

// WeightsConfig contains per-category point weights used when recomputing
// a user's engagement score from activity counters.
type WeightsConfig struct {
	ProfileCompleteness float64 `mapstructure:"profile_completeness"`
	MentorshipSession   float64 `mapstructure:"mentorship_session"`
	JobApplication      float64 `mapstructure:"job_application"`
	EventAttendance     float64 `mapstructure:"event_attendance"`
	ForumPost           float64 `mapstructure:"forum_post"`
	ForumComment        float64 `mapstructure:"forum_comment"`
}

// LevelsConfig contains the minimum total score for each level label.
// Totals below Active are Beginner.
type LevelsConfig struct {
	Active  float64 `mapstructure:"active"`
	Veteran float64 `mapstructure:"veteran"`
	Legend  float64 `mapstructure:"legend"`
}

// LeaderboardConfig contains leaderboard serving settings.
type LeaderboardConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	CacheTTL     int `mapstructure:"cache_ttl"` // seconds
}

// PredictionConfig contains career prediction settings.
type PredictionConfig struct {
	MinTransitions int `mapstructure:"min_transitions"`
	MaxSuggestions int `mapstructure:"max_suggestions"`
	CacheTTL       int `mapstructure:"cache_ttl"` // seconds
}

// BadgeConfig represents a badge with its earning criteria, seeded at startup.
type BadgeConfig struct {
	Name        string                 `mapstructure:"name"`
	Description string                 `mapstructure:"description"`
	Icon        string                 `mapstructure:"icon"`
	Rarity      string                 `mapstructure:"rarity"`
	Points      int                    `mapstructure:"points"`
	Criteria    map[string]interface{} `mapstructure:"criteria"`
}

// SchedulerConfig contains nightly recompute job settings.
type SchedulerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	ScoreRecomputeTime  string `mapstructure:"score_recompute_time"`  // cron expression
	BadgeEvaluationTime string `mapstructure:"badge_evaluation_time"` // cron expression
	MatrixRebuildTime   string `mapstructure:"matrix_rebuild_time"`   // cron expression
	Timezone            string `mapstructure:"timezone"`
}

// MetricsConfig contains metrics exporter settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NotificationsConfig contains outbound webhook notification settings.
type NotificationsConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/alumni-engagement/")
	}

	setDefaults(v)

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.score_recompute_time", "SCHEDULER_SCORE_RECOMPUTE_TIME")
	_ = v.BindEnv("scheduler.badge_evaluation_time", "SCHEDULER_BADGE_EVALUATION_TIME")
	_ = v.BindEnv("scheduler.matrix_rebuild_time", "SCHEDULER_MATRIX_REBUILD_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	// Prediction configuration
	_ = v.BindEnv("prediction.min_transitions", "PREDICTION_MIN_TRANSITIONS")

	// Notifications configuration
	_ = v.BindEnv("notifications.webhook_url", "NOTIFICATIONS_WEBHOOK_URL")
	_ = v.BindEnv("notifications.channel", "NOTIFICATIONS_CHANNEL")
	_ = v.BindEnv("notifications.enabled", "NOTIFICATIONS_ENABLED")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults registers defaults for values that are tunable but rarely set.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")

	v.SetDefault("engagement.weights.profile_completeness", 0.5)
	v.SetDefault("engagement.weights.mentorship_session", 25)
	v.SetDefault("engagement.weights.job_application", 5)
	v.SetDefault("engagement.weights.event_attendance", 10)
	v.SetDefault("engagement.weights.forum_post", 3)
	v.SetDefault("engagement.weights.forum_comment", 1)

	v.SetDefault("engagement.levels.active", 100)
	v.SetDefault("engagement.levels.veteran", 500)
	v.SetDefault("engagement.levels.legend", 2000)

	v.SetDefault("leaderboard.default_limit", 10)
	v.SetDefault("leaderboard.cache_ttl", 300)

	v.SetDefault("prediction.min_transitions", 50)
	v.SetDefault("prediction.max_suggestions", 5)
	v.SetDefault("prediction.cache_ttl", 3600)

	v.SetDefault("scheduler.timezone", "UTC")

	v.SetDefault("metrics.prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	if c.Engagement.Levels.Active > c.Engagement.Levels.Veteran ||
		c.Engagement.Levels.Veteran > c.Engagement.Levels.Legend {
		return fmt.Errorf("engagement.levels must be ordered: active <= veteran <= legend")
	}
	if c.Prediction.MinTransitions < 0 {
		return fmt.Errorf("prediction.min_transitions must not be negative")
	}
	if c.Notifications.Enabled && c.Notifications.WebhookURL == "" {
		return fmt.Errorf("notifications.webhook_url is required when notifications are enabled")
	}
	return nil
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LeaderboardTTL returns the leaderboard cache TTL as a duration.
func (c *LeaderboardConfig) LeaderboardTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// PredictionTTL returns the prediction cache TTL as a duration.
func (c *PredictionConfig) PredictionTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}
