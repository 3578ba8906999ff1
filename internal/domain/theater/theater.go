package theater

import "time"

// Theater represents a cinema known to the bot.
type Theater struct {
	ID        int64
	CinemaID  string // MovieGlu cinema_id, unique
	Name      string
	CreatedAt time.Time
}
