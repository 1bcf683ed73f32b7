package scoring_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/okian/campusguessr/internal/domain/geo"
	scoring "github.com/okian/campusguessr/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreFromDistance(t *testing.T) {
	Convey("Given the default scorer", t, func() {
		s := scoring.NewGeoScorer()

		Convey("When the distance is zero", func() {
			pts, err := s.ScoreFromDistance(0)

			Convey("Then the full round score is awarded", func() {
				So(err, ShouldBeNil)
				So(pts, ShouldEqual, scoring.MaxRoundScore)
			})
		})

		Convey("When the distance is 111 meters", func() {
			pts, err := s.ScoreFromDistance(111)

			Convey("Then the score follows the exponential decay", func() {
				So(err, ShouldBeNil)
				So(pts, ShouldBeBetweenOrEqual, 2567, 2571)
			})
		})

		Convey("When the distance is far away", func() {
			tenKm, err1 := s.ScoreFromDistance(10_000)
			farAway, err2 := s.ScoreFromDistance(1_000_000)

			Convey("Then the score is effectively zero", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(tenKm, ShouldBeLessThanOrEqualTo, 1)
				So(farAway, ShouldEqual, 0)
			})
		})

		Convey("When scoring increasing distances", func() {
			Convey("Then the score never increases", func() {
				prev := scoring.MaxRoundScore
				for d := 0.0; d <= 2000; d += 7.5 {
					pts, err := s.ScoreFromDistance(d)
					So(err, ShouldBeNil)
					So(pts, ShouldBeLessThanOrEqualTo, prev)
					So(pts, ShouldBeGreaterThanOrEqualTo, 0)
					prev = pts
				}
			})
		})

		Convey("When scoring the same distance repeatedly", func() {
			Convey("Then the result is identical", func() {
				first, _ := s.ScoreFromDistance(237)
				for range 100 {
					again, _ := s.ScoreFromDistance(237)
					So(again, ShouldEqual, first)
				}
				pkg, _ := scoring.ScoreFromDistance(237)
				So(pkg, ShouldEqual, first)
			})
		})

		Convey("When the distance is negative or NaN", func() {
			_, errNeg := s.ScoreFromDistance(-1)
			_, errNaN := s.ScoreFromDistance(math.NaN())

			Convey("Then ErrNegativeDistance is returned", func() {
				So(errors.Is(errNeg, scoring.ErrNegativeDistance), ShouldBeTrue)
				So(errors.Is(errNaN, scoring.ErrNegativeDistance), ShouldBeTrue)
			})
		})
	})

	Convey("Given a scorer with a custom decay", t, func() {
		s := scoring.NewGeoScorer(scoring.WithDecay(0.001))

		Convey("Then scores fall off more slowly", func() {
			slow, _ := s.ScoreFromDistance(500)
			fast, _ := scoring.ScoreFromDistance(500)
			So(s.Decay(), ShouldEqual, 0.001)
			So(slow, ShouldBeGreaterThan, fast)
		})

		Convey("Then invalid decays are ignored", func() {
			So(scoring.NewGeoScorer(scoring.WithDecay(-1)).Decay(), ShouldEqual, scoring.DefaultDecay)
			So(scoring.NewGeoScorer(scoring.WithDecay(0)).Decay(), ShouldEqual, scoring.DefaultDecay)
		})
	})
}

func TestMaxPossibleScore(t *testing.T) {
	Convey("Given a number of rounds", t, func() {
		So(scoring.MaxPossibleScore(5), ShouldEqual, 25000)
		So(scoring.MaxPossibleScore(1), ShouldEqual, 5000)
		So(scoring.MaxPossibleScore(0), ShouldEqual, 0)
		So(scoring.MaxPossibleScore(-3), ShouldEqual, 0)
		So(scoring.NewGeoScorer().MaxPossibleScore(3), ShouldEqual, 15000)
	})
}

func TestGeoScorer_Score(t *testing.T) {
	Convey("Given the campus center as the actual location", t, func() {
		s := scoring.NewGeoScorer()
		actual := geo.Coordinate{Latitude: 41.5045, Longitude: -81.6087}

		Convey("When the guess is exact", func() {
			res, err := s.Score(scoring.Input{Guess: actual, Actual: actual})

			Convey("Then the distance is 0 and the score is 5000", func() {
				So(err, ShouldBeNil)
				So(res.DistanceMeters, ShouldEqual, 0)
				So(res.Score, ShouldEqual, 5000)
			})
		})

		Convey("When the guess is 0.001 degrees north", func() {
			res, err := s.Score(scoring.Input{
				Guess:  geo.Coordinate{Latitude: 41.5055, Longitude: -81.6087},
				Actual: actual,
			})

			Convey("Then about 111 meters earn a partial score", func() {
				So(err, ShouldBeNil)
				So(res.DistanceMeters, ShouldBeBetweenOrEqual, 109, 113)
				So(res.Score, ShouldBeGreaterThan, 0)
				So(res.Score, ShouldBeLessThan, 5000)
			})
		})

		Convey("When the guess is invalid", func() {
			_, err := s.Score(scoring.Input{Guess: geo.Coordinate{Latitude: 91}, Actual: actual})

			Convey("Then the coordinate error surfaces", func() {
				So(errors.Is(err, geo.ErrInvalidCoordinate), ShouldBeTrue)
			})
		})

		Convey("When many goroutines score concurrently", func() {
			guess := geo.Coordinate{Latitude: 41.51, Longitude: -81.60}
			want, _ := s.Score(scoring.Input{Guess: guess, Actual: actual})

			var wg sync.WaitGroup
			results := make([]scoring.Result, 32)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = s.Score(scoring.Input{Guess: guess, Actual: actual})
				}(i)
			}
			wg.Wait()

			Convey("Then every result matches", func() {
				for _, r := range results {
					So(r, ShouldResemble, want)
				}
			})
		})
	})
}

func TestQualityLabels(t *testing.T) {
	Convey("Given distances", t, func() {
		So(scoring.DistanceQuality(0), ShouldEqual, "Spot on!")
		So(scoring.DistanceQuality(9), ShouldEqual, "Spot on!")
		So(scoring.DistanceQuality(10), ShouldEqual, "Very close!")
		So(scoring.DistanceQuality(99), ShouldEqual, "Close!")
		So(scoring.DistanceQuality(249), ShouldEqual, "Not too far!")
		So(scoring.DistanceQuality(499), ShouldEqual, "Getting warmer!")
		So(scoring.DistanceQuality(500), ShouldEqual, "Keep exploring!")
	})

	Convey("Given totals against 25000", t, func() {
		So(scoring.ScoreQuality(22500, 25000), ShouldEqual, "Perfect!")
		So(scoring.ScoreQuality(20000, 25000), ShouldEqual, "Excellent!")
		So(scoring.ScoreQuality(15000, 25000), ShouldEqual, "Great!")
		So(scoring.ScoreQuality(10000, 25000), ShouldEqual, "Good!")
		So(scoring.ScoreQuality(5000, 25000), ShouldEqual, "Not bad!")
		So(scoring.ScoreQuality(4999, 25000), ShouldEqual, "Keep trying!")
		So(scoring.ScoreQuality(100, 0), ShouldEqual, "Keep trying!")
	})
}
