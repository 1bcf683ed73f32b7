// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Load layers a YAML file and env vars over the defaults.
//   - Errors wrap this package's sentinels so callers can use errors.Is.
package config

import (
	"context"
	"fmt"
	"regexp"

	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/scoring"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RoundsPerGame is the number of locations in a game.
	RoundsPerGame int `koanf:"rounds_per_game"`

	// ScoreDecay is k in round(5000 * e^(-k * meters)).
	ScoreDecay float64 `koanf:"score_decay"`

	// Campus bounds new locations must lie in.
	CampusNorth float64 `koanf:"campus_north"`
	CampusSouth float64 `koanf:"campus_south"`
	CampusEast  float64 `koanf:"campus_east"`
	CampusWest  float64 `koanf:"campus_west"`

	// StoreBackend keeps sessions and locations: memory or postgres.
	StoreBackend string `koanf:"store_backend"`
	DatabaseURL  string `koanf:"database_url"`

	// LeaderboardBackend ranks completed games: memory or redis.
	LeaderboardBackend string `koanf:"leaderboard_backend"`
	RedisURL           string `koanf:"redis_url"`

	// EventQueueSize bounds the completed-game queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of leaderboard workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many published game ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultLeaderboardLimit is used when GET /leaderboard has no limit.
	DefaultLeaderboardLimit int `koanf:"default_leaderboard_limit"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LocationsFile is an optional YAML seed of playable locations.
	LocationsFile string `koanf:"locations_file"`

	// MetricsNamespace and MetricsSubsystem prefix every Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// Environment and Instance become constant labels on every metric when set.
	Environment string `koanf:"environment"`
	Instance    string `koanf:"instance"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		RoundsPerGame:           5,
		ScoreDecay:              scoring.DefaultDecay,
		CampusNorth:             geo.CampusBounds.North,
		CampusSouth:             geo.CampusBounds.South,
		CampusEast:              geo.CampusBounds.East,
		CampusWest:              geo.CampusBounds.West,
		StoreBackend:            BackendMemory,
		LeaderboardBackend:      BackendMemory,
		EventQueueSize:          10_000,
		WorkerCount:             4,
		DedupeSize:              100_000,
		DefaultLeaderboardLimit: 10,
		MaxLeaderboardLimit:     100,
		MetricsNamespace:        "campusguessr",
	}
}

// MetricLabels returns the constant labels for exported metrics.
func (c *Config) MetricLabels() map[string]string {
	labels := map[string]string{}
	if c.Environment != "" {
		labels["env"] = c.Environment
	}
	if c.Instance != "" {
		labels["instance"] = c.Instance
	}
	return labels
}

// Bounds returns the configured campus bounds.
func (c *Config) Bounds() geo.Bounds {
	return geo.Bounds{
		North: c.CampusNorth,
		South: c.CampusSouth,
		East:  c.CampusEast,
		West:  c.CampusWest,
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format %q must be text or json", c.LogFormat)
	case c.RoundsPerGame < 1:
		return invalid("rounds_per_game must be at least 1, got %d", c.RoundsPerGame)
	case c.ScoreDecay <= 0:
		return invalid("score_decay must be positive, got %v", c.ScoreDecay)
	case c.EventQueueSize < 1:
		return invalid("queue_size must be positive, got %d", c.EventQueueSize)
	case c.WorkerCount < 1:
		return invalid("worker_count must be positive, got %d", c.WorkerCount)
	case c.DefaultLeaderboardLimit < 1 || c.MaxLeaderboardLimit < c.DefaultLeaderboardLimit:
		return invalid("leaderboard limits default=%d max=%d", c.DefaultLeaderboardLimit, c.MaxLeaderboardLimit)
	case !metricName.MatchString(c.MetricsNamespace):
		return invalid("metrics_namespace %q is not a valid metric prefix", c.MetricsNamespace)
	case c.MetricsSubsystem != "" && !metricName.MatchString(c.MetricsSubsystem):
		return invalid("metrics_subsystem %q is not a valid metric prefix", c.MetricsSubsystem)
	}

	if err := c.Bounds().Validate(); err != nil {
		return invalid("campus %v", err)
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return invalid("database_url is required for the postgres store")
		}
	default:
		return invalid("unknown store_backend %q", c.StoreBackend)
	}

	switch c.LeaderboardBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return invalid("redis_url is required for the redis leaderboard")
		}
	default:
		return invalid("unknown leaderboard_backend %q", c.LeaderboardBackend)
	}
	return nil
}
