// Package daily tracks solo play: one record per player holding the day's
// result and the consecutive-day streak.
package daily

import "time"

type Record struct {
	Username      string     `json:"username"`
	Points        int        `json:"points"`
	Distance      int        `json:"distance"`
	Played        bool       `json:"played"`
	LastPlayed    *time.Time `json:"last_played,omitempty"`
	LastVersus    *time.Time `json:"last_versus,omitempty"`
	CurrentStreak int        `json:"current_streak"`
	FirstPlayed   *time.Time `json:"first_played,omitempty"`
}

// Standing is one row of the day's leaderboard.
type Standing struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
}

// DateOf returns the calendar date of t in loc as midnight UTC, so dates
// compare with Equal regardless of the server's zone.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date as YYYY-MM-DD.
func DateKey(day time.Time) string {
	return day.Format(time.DateOnly)
}

func sameDay(stored *time.Time, day time.Time) bool {
	return stored != nil && DateKey(*stored) == DateKey(day)
}

// NextStreak applies the streak rule: a first play or any gap starts over at
// one, a play on the day after the last one extends the streak. Playing twice
// on the same day also starts over.
func NextStreak(lastPlayed *time.Time, today time.Time, current int) int {
	if lastPlayed == nil {
		return 1
	}
	if sameDay(lastPlayed, today.AddDate(0, 0, -1)) {
		return current + 1
	}
	return 1
}
