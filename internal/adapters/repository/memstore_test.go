package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/campusguessr/internal/domain/geo"
	"github.com/okian/campusguessr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	Convey("Given a store holding one session", t, func() {
		store := NewMemorySessionStore()
		s, err := model.NewGameSession("g1", []string{"a", "b"}, "", now)
		So(err, ShouldBeNil)
		So(store.Create(ctx, s), ShouldBeNil)

		Convey("Then it can be read back and counted", func() {
			got, err := store.Get(ctx, "g1")
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, "g1")
			n, _ := store.Count(ctx)
			So(n, ShouldEqual, 1)
		})

		Convey("Then creating it again fails", func() {
			So(errors.Is(store.Create(ctx, s), ErrAlreadyExists), ShouldBeTrue)
		})

		Convey("Then unknown ids are not found", func() {
			_, err := store.Get(ctx, "nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			_, err = store.Update(ctx, "nope", func(*model.GameSession) error { return nil })
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When an update fails", func() {
			boom := errors.New("boom")
			_, err := store.Update(ctx, "g1", func(s *model.GameSession) error {
				s.TotalScore = 999
				return boom
			})

			Convey("Then the stored session is unchanged", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				got, _ := store.Get(ctx, "g1")
				So(got.TotalScore, ShouldEqual, 0)
			})
		})

		Convey("When the caller mutates a returned session", func() {
			got, _ := store.Get(ctx, "g1")
			got.TotalScore = 1234

			Convey("Then the store keeps its own copy", func() {
				again, _ := store.Get(ctx, "g1")
				So(again.TotalScore, ShouldEqual, 0)
			})
		})

		Convey("When many goroutines update concurrently", func() {
			var wg sync.WaitGroup
			for range 100 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = store.Update(ctx, "g1", func(s *model.GameSession) error {
						s.TotalScore++
						return nil
					})
				}()
			}
			wg.Wait()

			Convey("Then no update is lost", func() {
				got, _ := store.Get(ctx, "g1")
				So(got.TotalScore, ShouldEqual, 100)
			})
		})
	})
}

func TestMemoryLocationStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded location store", t, func() {
		store := NewMemoryLocationStore(
			model.Location{ID: "l1", Coordinate: geo.Coordinate{Latitude: 41.50, Longitude: -81.60}},
			model.Location{ID: "l2", Coordinate: geo.Coordinate{Latitude: 41.51, Longitude: -81.61}, CreatedBy: "map-7"},
			model.Location{ID: "l3", Coordinate: geo.Coordinate{Latitude: 41.505, Longitude: -81.605}},
		)

		Convey("Then List keeps insertion order", func() {
			all, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 3)
			So(all[0].ID, ShouldEqual, "l1")
			So(all[2].ID, ShouldEqual, "l3")
		})

		Convey("Then ListByCreator filters by owner", func() {
			def, _ := store.ListByCreator(ctx, "")
			custom, _ := store.ListByCreator(ctx, "map-7")
			none, _ := store.ListByCreator(ctx, "map-0")
			So(def, ShouldHaveLength, 2)
			So(custom, ShouldHaveLength, 1)
			So(custom[0].ID, ShouldEqual, "l2")
			So(none, ShouldBeEmpty)
		})

		Convey("Then Get finds by id", func() {
			l, err := store.Get(ctx, "l2")
			So(err, ShouldBeNil)
			So(l.Latitude, ShouldEqual, 41.51)
			_, err = store.Get(ctx, "zz")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Then duplicate ids are rejected", func() {
			So(errors.Is(store.Add(ctx, model.Location{ID: "l1"}), ErrAlreadyExists), ShouldBeTrue)
		})
	})
}
