package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/campusguessr/internal/app"
	"github.com/okian/campusguessr/internal/config"
	"github.com/okian/campusguessr/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

const seedYAML = `
locations:
  - image_url: https://img.example/1.jpg
    latitude: 41.5045
    longitude: -81.6087
  - image_url: https://img.example/2.jpg
    latitude: 41.5060
    longitude: -81.6070
  - image_url: https://img.example/3.jpg
    latitude: 41.5030
    longitude: -81.6050
  - image_url: https://img.example/4.jpg
    latitude: 41.5080
    longitude: -81.6100
  - image_url: https://img.example/5.jpg
    latitude: 41.5010
    longitude: -81.6020
`

func writeSeed(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "locations-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(seedYAML); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func startService(ctx context.Context, cfg *config.Config, opts []app.Option) (*app.Service, error) {
	svc := app.New(append(opts,
		app.WithRounds(cfg.RoundsPerGame),
		app.WithCampusBounds(cfg.Bounds()),
	)...)
	return svc, svc.Start(ctx)
}

func TestOpenStores(t *testing.T) {
	log := logger.Get()

	convey.Convey("Given the memory backends with a location seed", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.LocationsFile = writeSeed(t)

		opts, closeStores, err := openStores(ctx, cfg, log)
		convey.So(err, convey.ShouldBeNil)
		defer closeStores()

		svc, err := startService(ctx, cfg, opts)
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the seeded locations are playable", func() {
			locs, err := svc.Locations(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(locs, convey.ShouldHaveLength, 5)

			res, err := svc.StartGame(ctx, app.StartGameInput{PlayerName: "seeded"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.LocationIDs, convey.ShouldHaveLength, 5)
		})
	})

	convey.Convey("Given the redis leaderboard", t, func() {
		ctx := context.Background()
		mr := miniredis.RunT(t)
		cfg := config.New(ctx)
		cfg.LocationsFile = writeSeed(t)
		cfg.LeaderboardBackend = config.BackendRedis
		cfg.RedisURL = "redis://" + mr.Addr()

		opts, closeStores, err := openStores(ctx, cfg, log)
		convey.So(err, convey.ShouldBeNil)
		defer closeStores()

		svc, err := startService(ctx, cfg, opts)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then completed games land in redis", func() {
			res, err := svc.StartGame(ctx, app.StartGameInput{PlayerName: "redis_player"})
			convey.So(err, convey.ShouldBeNil)
			for _, id := range res.LocationIDs {
				locs, _ := svc.Locations(ctx)
				for _, l := range locs {
					if l.ID == id {
						_, err := svc.SubmitGuess(ctx, app.SubmitGuessInput{GameID: res.GameID, Guess: l.Coordinate})
						convey.So(err, convey.ShouldBeNil)
					}
				}
			}
			svc.Stop()

			keys := mr.Keys()
			convey.So(len(keys), convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given an unreachable redis", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg := config.New(ctx)
		cfg.LeaderboardBackend = config.BackendRedis
		cfg.RedisURL = "redis://127.0.0.1:1/0"

		convey.Convey("Then opening the stores fails", func() {
			_, _, err := openStores(ctx, cfg, log)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a broken location seed", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.LocationsFile = "/non/existent/locations.yaml"

		convey.Convey("Then opening the stores fails", func() {
			_, _, err := openStores(ctx, cfg, log)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the composed mux", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.LocationsFile = writeSeed(t)

		opts, closeStores, err := openStores(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer closeStores()
		svc, err := startService(ctx, cfg, opts)
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc)
		serve := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		convey.Convey("Then the game API is mounted", func() {
			w := serve(http.MethodPost, "/game/start", `{"playerName":"mux_player"}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			var res app.StartGameResult
			convey.So(json.Unmarshal(w.Body.Bytes(), &res), convey.ShouldBeNil)
			convey.So(res.GameID, convey.ShouldNotBeEmpty)

			w = serve(http.MethodGet, fmt.Sprintf("/game/%s", res.GameID), "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And the docs, metrics and landing page are mounted", func() {
			convey.So(serve(http.MethodGet, "/openapi.yaml", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/api-docs", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/healthz", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/", "").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestConfigureMetrics(t *testing.T) {
	convey.Convey("Given a deployment namespace and instance", t, func() {
		cfg := config.New(context.Background())
		cfg.MetricsNamespace = "cg_main"
		cfg.Instance = "node-a"
		configureMetrics(cfg)
		defer configureMetrics(config.New(context.Background()))

		convey.Convey("Then the health exposition carries the prefix and label", func() {
			svc := app.New()
			w := httptest.NewRecorder()
			newMux(context.Background(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `cg_main_queue_capacity{instance="node-a"}`)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metric updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		svc := app.New()

		convey.Convey("Then they return when the context ends", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("And a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(context.Background(), svc) }, convey.ShouldNotPanic)
		})
	})
}
