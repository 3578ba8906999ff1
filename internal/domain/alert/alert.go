package alert

import "time"

// Alert is a user's standing request to be told when a film shows up in a theater's listings.
// Corresponds to the 'alerts' table.
type Alert struct {
	ID          int64
	OwnerID     int64  // Telegram user ID of the subscriber
	FilmID      string // MovieGlu film_id
	TheaterID   int64  // Foreign Key to theaters.id
	CinemaID    string // MovieGlu cinema_id, denormalised for the checker
	FilmTitle   string
	TheaterName string
	PlayerID    string // OneSignal player id the push is sent to
	CreatedAt   time.Time
}
