package showtime

import (
	"context"
	"time"
)

// DateLayout is the calendar date format the provider expects.
const DateLayout = "2006-01-02"

// Film is one entry of a venue's listing for a single day.
// Times holds the provider's display strings across all showing versions, in response order.
type Film struct {
	ID    string   `json:"film_id"`
	Title string   `json:"film_title"`
	Times []string `json:"times"`
}

// Cinema is a venue returned by a location search.
type Cinema struct {
	CinemaID string `json:"cinema_id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
}

// Provider queries an external listings service.
type Provider interface {
	FetchShowtimes(ctx context.Context, cinemaID string, date time.Time) ([]Film, error)
	FetchCinemasNearby(ctx context.Context, latitude, longitude float64) ([]Cinema, error)
}

// FindFilm returns the listing entry whose ID equals filmID exactly.
func FindFilm(films []Film, filmID string) (Film, bool) {
	for _, f := range films {
		if f.ID == filmID {
			return f, true
		}
	}
	return Film{}, false
}
