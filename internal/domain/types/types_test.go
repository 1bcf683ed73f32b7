package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/campusguessr/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryJSON(t *testing.T) {
	Convey("Given a leaderboard entry", t, func() {
		e := types.Entry{Rank: 1, GameID: "g-1", Username: "alice", Score: 21000,
			CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

		Convey("When encoded", func() {
			b, err := json.Marshal(e)

			Convey("Then the wire names are camel case", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual,
					`{"rank":1,"gameId":"g-1","username":"alice","score":21000,"createdAt":"2025-01-02T03:04:05Z"}`)
			})
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given a reference time", t, func() {
		now := time.Date(2025, 6, 15, 17, 30, 0, 0, time.UTC)

		Convey("Then parsing falls back to all-time", func() {
			So(types.ParseFilter("today"), ShouldEqual, types.FilterToday)
			So(types.ParseFilter("week"), ShouldEqual, types.FilterWeek)
			So(types.ParseFilter("all-time"), ShouldEqual, types.FilterAllTime)
			So(types.ParseFilter(""), ShouldEqual, types.FilterAllTime)
			So(types.ParseFilter("month"), ShouldEqual, types.FilterAllTime)
		})

		Convey("Then today starts at UTC midnight", func() {
			So(types.FilterToday.Since(now), ShouldEqual, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
		})

		Convey("Then week covers the last seven days", func() {
			So(types.FilterWeek.Since(now), ShouldEqual, now.Add(-7*24*time.Hour))
		})

		Convey("Then all-time has no lower bound", func() {
			So(types.FilterAllTime.Since(now).IsZero(), ShouldBeTrue)
		})
	})
}
