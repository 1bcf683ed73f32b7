package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/campusguessr/internal/app"
	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// offsetGuess returns a guess roughly meters north of c.
func offsetGuess(c geo.Coordinate, meters float64) geo.Coordinate {
	return geo.Coordinate{Latitude: c.Latitude + meters/111_195, Longitude: c.Longitude}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with full integration", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store := repository.NewMemoryLocationStore(campusLocations(10)...)
		svc := service.New(
			service.WithLocationStore(store),
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When several named games are played to completion", func() {
			offsets := map[string]float64{"near": 5, "mid": 100, "far": 400}
			ids := map[string]string{}
			for name, off := range offsets {
				start, err := svc.StartGame(ctx, service.StartGameInput{PlayerName: name})
				So(err, ShouldBeNil)
				ids[name] = start.GameID
				for _, lid := range start.LocationIDs {
					loc, err := store.Get(ctx, lid)
					So(err, ShouldBeNil)
					_, err = svc.SubmitGuess(ctx, service.SubmitGuessInput{
						GameID: start.GameID,
						Guess:  offsetGuess(loc.Coordinate, off),
					})
					So(err, ShouldBeNil)
				}
			}
			svc.Stop()

			Convey("Then the leaderboard orders them by total score", func() {
				entries, err := svc.Leaderboard(ctx, types.FilterAllTime, 0)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].Username, ShouldEqual, "near")
				So(entries[1].Username, ShouldEqual, "mid")
				So(entries[2].Username, ShouldEqual, "far")
				for i, e := range entries {
					So(e.Rank, ShouldEqual, i+1)
				}
			})

			Convey("And each game has its all-time rank", func() {
				e, err := svc.Rank(ctx, ids["mid"])
				So(err, ShouldBeNil)
				So(e.Rank, ShouldEqual, 2)
				So(e.GameID, ShouldEqual, ids["mid"])
			})

			Convey("And the today filter includes games played now", func() {
				entries, err := svc.Leaderboard(ctx, types.FilterToday, 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
			})
		})

		Convey("When an anonymous game is completed and then associated", func() {
			start, err := svc.StartGame(ctx, service.StartGameInput{})
			So(err, ShouldBeNil)
			_, err = playPerfect(ctx, svc, store, start)
			So(err, ShouldBeNil)

			beforeAssociate, err := svc.Leaderboard(ctx, types.FilterAllTime, 10)
			So(err, ShouldBeNil)

			_, err = svc.AssociateGame(ctx, start.GameID, "late_player")
			So(err, ShouldBeNil)
			_, err = svc.AssociateGame(ctx, start.GameID, "late_player")
			So(err, ShouldBeNil)
			svc.Stop()

			Convey("Then it reaches the leaderboard exactly once", func() {
				So(beforeAssociate, ShouldBeEmpty)
				entries, err := svc.Leaderboard(ctx, types.FilterAllTime, 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Username, ShouldEqual, "late_player")
				So(entries[0].Score, ShouldEqual, 25000)
			})
		})

		Convey("When many guesses race on the same game", func() {
			start, err := svc.StartGame(ctx, service.StartGameInput{PlayerName: "racer"})
			So(err, ShouldBeNil)

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				accepted  int
				completed int
				other     []error
			)
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := svc.SubmitGuess(ctx, service.SubmitGuessInput{GameID: start.GameID, Guess: geo.CampusCenter})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						accepted++
					case errors.Is(err, model.ErrGameComplete):
						completed++
					default:
						other = append(other, err)
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one guess per round is accepted", func() {
				So(other, ShouldBeEmpty)
				So(accepted, ShouldEqual, 5)
				So(completed, ShouldEqual, 15)

				gs, err := svc.Game(ctx, start.GameID)
				So(err, ShouldBeNil)
				So(gs.Guesses, ShouldHaveLength, 5)
				sum := 0
				for i, g := range gs.Guesses {
					So(g.Round, ShouldEqual, i+1)
					So(g.LocationID, ShouldEqual, start.LocationIDs[i])
					sum += g.Score
				}
				So(gs.TotalScore, ShouldEqual, sum)
			})
		})
	})
}

func TestServiceIntegration_WarmStart(t *testing.T) {
	Convey("Given a session store holding finished named games", t, func() {
		ctx := context.Background()
		sessions := repository.NewMemorySessionStore()
		now := time.Now().UTC()
		for i := range 3 {
			gs, err := model.NewGameSession(fmt.Sprintf("game-%d", i), []string{"a"}, fmt.Sprintf("player_%d", i), now)
			So(err, ShouldBeNil)
			So(gs.RecordGuess(model.Guess{Round: 1, LocationID: "a", Score: 1000 * (i + 1), CreatedAt: now}, now), ShouldBeNil)
			So(sessions.Create(ctx, gs), ShouldBeNil)
		}
		anon, _ := model.NewGameSession("anon", []string{"a"}, "", now)
		So(sessions.Create(ctx, anon), ShouldBeNil)

		svc := service.New(service.WithSessionStore(sessions))

		Convey("When the service starts", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then the leaderboard is rebuilt from the store", func() {
				entries, err := svc.Leaderboard(ctx, types.FilterAllTime, 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0].GameID, ShouldEqual, "game-2")
				So(entries[0].Score, ShouldEqual, 3000)
				So(svc.GetStats(ctx)["rankedGames"], ShouldEqual, 3)
			})
		})
	})
}
