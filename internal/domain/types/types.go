// Package types contains read-model shapes returned to API clients.
package types

import "time"

// Entry represents a leaderboard row.
type Entry struct {
	Rank      int       `json:"rank"`
	GameID    string    `json:"gameId"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filter selects the time window of a leaderboard query.
type Filter string

// Leaderboard filters.
const (
	FilterAllTime Filter = "all-time"
	FilterToday   Filter = "today"
	FilterWeek    Filter = "week"
)

// ParseFilter maps a query value to a Filter. Unknown or empty values mean all-time.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterToday:
		return FilterToday
	case FilterWeek:
		return FilterWeek
	default:
		return FilterAllTime
	}
}

// Since returns the earliest created_at included by f, relative to now.
// The zero time means no lower bound.
func (f Filter) Since(now time.Time) time.Time {
	switch f {
	case FilterToday:
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case FilterWeek:
		return now.Add(-7 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}
