package alert

import "time"

// Outcome is where a single alert ended up after one showtime check.
type Outcome string

const (
	OutcomeNotMatched   Outcome = "NOT_MATCHED"
	OutcomeQueryFailed  Outcome = "QUERY_FAILED"
	OutcomeNotifyFailed Outcome = "NOTIFY_FAILED"
	OutcomeRetireFailed Outcome = "RETIRE_FAILED" // notified, delete failed; will notify again
	OutcomeRetired      Outcome = "RETIRED"
)

// Triggered is emitted once an alert has been notified and removed.
type Triggered struct {
	AlertID     int64     `json:"alert_id"`
	OwnerID     int64     `json:"owner_id"`
	FilmID      string    `json:"film_id"`
	FilmTitle   string    `json:"film_title"`
	CinemaID    string    `json:"cinema_id"`
	TheaterName string    `json:"theater_name"`
	Date        string    `json:"date"`
	Times       []string  `json:"times"`
	TriggeredAt time.Time `json:"triggered_at"`
}
