// Package scoring turns the distance between a guess and the real location
// into round points.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/campusguessr/internal/domain/geo"
)

// Scoring constants.
const (
	// MaxRoundScore is awarded for a perfect guess.
	MaxRoundScore = 5000
	// DefaultDecay is the exponential decay per meter.
	DefaultDecay = 0.006
)

// ErrNegativeDistance is returned for a negative or NaN distance.
var ErrNegativeDistance = errors.New("distance must be a non-negative number")

// Option applies a configuration option to the GeoScorer.
type Option func(*GeoScorer)

// WithDecay sets the decay constant k in 5000·e^(−k·d). Non-positive values are ignored.
func WithDecay(k float64) Option {
	return func(s *GeoScorer) {
		if k > 0 && !math.IsInf(k, 0) {
			s.decay = k
		}
	}
}

// Input is one guess against the location it was made for.
type Input struct {
	Guess  geo.Coordinate
	Actual geo.Coordinate
}

// Result is the evaluated guess.
type Result struct {
	DistanceMeters int
	Score          int
}

// Scorer evaluates guesses.
type Scorer interface {
	Score(in Input) (Result, error)
	MaxPossibleScore(rounds int) int
}

// GeoScorer scores guesses by haversine distance with exponential decay.
// It holds no mutable state and is safe for concurrent use.
type GeoScorer struct {
	decay float64
}

// NewGeoScorer creates a scorer with configuration options.
func NewGeoScorer(opts ...Option) *GeoScorer {
	s := &GeoScorer{decay: DefaultDecay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decay returns the decay constant in use.
func (s *GeoScorer) Decay() float64 { return s.decay }

// Score measures the guess distance and converts it to points.
func (s *GeoScorer) Score(in Input) (Result, error) {
	d, err := geo.DistanceMeters(in.Guess, in.Actual)
	if err != nil {
		return Result{}, fmt.Errorf("score: %w", err)
	}
	pts, err := s.ScoreFromDistance(float64(d))
	if err != nil {
		return Result{}, fmt.Errorf("score: %w", err)
	}
	return Result{DistanceMeters: d, Score: pts}, nil
}

// ScoreFromDistance returns round(5000·e^(−k·d)) clamped to [0, 5000].
func (s *GeoScorer) ScoreFromDistance(distance float64) (int, error) {
	if math.IsNaN(distance) || distance < 0 {
		return 0, fmt.Errorf("%w: %v", ErrNegativeDistance, distance)
	}
	raw := math.Round(MaxRoundScore * math.Exp(-s.decay*distance))
	return int(math.Max(0, math.Min(MaxRoundScore, raw))), nil
}

// MaxPossibleScore returns rounds × 5000.
func (s *GeoScorer) MaxPossibleScore(rounds int) int {
	return MaxPossibleScore(rounds)
}

var defaultScorer = NewGeoScorer()

// ScoreFromDistance scores a distance with the default decay.
func ScoreFromDistance(distance float64) (int, error) {
	return defaultScorer.ScoreFromDistance(distance)
}

// MaxPossibleScore returns the best total achievable over rounds.
func MaxPossibleScore(rounds int) int {
	if rounds < 0 {
		return 0
	}
	return rounds * MaxRoundScore
}
