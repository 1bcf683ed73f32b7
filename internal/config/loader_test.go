package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/campusguessr/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.RoundsPerGame, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CAMPUSGUESSR_ADDR", ":8080")
			_ = os.Setenv("CAMPUSGUESSR_QUEUE_SIZE", "2000")
			_ = os.Setenv("CAMPUSGUESSR_WORKER_COUNT", "16")
			_ = os.Setenv("CAMPUSGUESSR_SCORE_DECAY", "0.004")
			_ = os.Setenv("CAMPUSGUESSR_LOG_FORMAT", "JSON")
			_ = os.Setenv("CAMPUSGUESSR_LEADERBOARD_BACKEND", "Redis")
			_ = os.Setenv("CAMPUSGUESSR_REDIS_URL", "redis://localhost:6379/0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 2000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.ScoreDecay, convey.ShouldEqual, 0.004)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.LeaderboardBackend, convey.ShouldEqual, config.BackendRedis)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
queue_size: 3000
worker_count: 24
campus_north: 41.52
rounds_per_game: 3
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CAMPUSGUESSR_CONFIG", tmpFile)
			_ = os.Setenv("CAMPUSGUESSR_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 3000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.RoundsPerGame, convey.ShouldEqual, 3)
				convey.So(cfg.Bounds().North, convey.ShouldEqual, 41.52)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CAMPUSGUESSR_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CAMPUSGUESSR_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CAMPUSGUESSR_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the postgres store is selected without a DSN", func() {
			_ = os.Setenv("CAMPUSGUESSR_STORE_BACKEND", "postgres")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "database_url")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"CAMPUSGUESSR_CONFIG",
		"CAMPUSGUESSR_ADDR",
		"CAMPUSGUESSR_QUEUE_SIZE",
		"CAMPUSGUESSR_WORKER_COUNT",
		"CAMPUSGUESSR_SCORE_DECAY",
		"CAMPUSGUESSR_LOG_FORMAT",
		"CAMPUSGUESSR_STORE_BACKEND",
		"CAMPUSGUESSR_LEADERBOARD_BACKEND",
		"CAMPUSGUESSR_REDIS_URL",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "campusguessr-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
