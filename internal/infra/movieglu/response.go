package movieglu

import (
	"bytes"
	"encoding/json"
	"fmt"

	"showtime_alert_bot/internal/domain/showtime"
)

type showtimesResponse struct {
	Films *[]film `json:"films"`
}

type film struct {
	FilmID   flexString `json:"film_id"`
	FilmName string     `json:"film_name"`
	Showings showings   `json:"showings"`
}

type showingVersion struct {
	FilmID   flexString    `json:"film_id"`
	FilmName string        `json:"film_name"`
	Times    []showingTime `json:"times"`
}

type showingTime struct {
	StartTime        string `json:"start_time"`
	DisplayStartTime string `json:"display_start_time"`
	BookingURL       string `json:"booking_url,omitempty"`
}

type cinemasResponse struct {
	Cinemas *[]cinema `json:"cinemas"`
}

type cinema struct {
	CinemaID   flexString `json:"cinema_id"`
	CinemaName string     `json:"cinema_name"`
	Address    string     `json:"address"`
}

// namedVersion is one entry of a film's showings object, e.g. "Standard" or "3D".
type namedVersion struct {
	Name    string
	Version showingVersion
}

// showings is decoded from a JSON object keyed by version name, keeping the key order of the response.
type showings []namedVersion

func (s *showings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("showings: expected object, got %v", tok)
	}

	var out showings
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)
		var v showingVersion
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("showings %q: %w", name, err)
		}
		out = append(out, namedVersion{Name: name, Version: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// flexString accepts both JSON numbers and strings; MovieGlu sends numeric ids.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flattenFilms collapses every showing version of a film into one entry.
// Only display_start_time is kept; it is already adjusted by the provider.
func flattenFilms(films []film) []showtime.Film {
	out := make([]showtime.Film, 0, len(films))
	for _, f := range films {
		times := make([]string, 0)
		for _, v := range f.Showings {
			for _, t := range v.Version.Times {
				times = append(times, t.DisplayStartTime)
			}
		}
		out = append(out, showtime.Film{
			ID:    string(f.FilmID),
			Title: f.FilmName,
			Times: times,
		})
	}
	return out
}

func toCinemas(cinemas []cinema) []showtime.Cinema {
	out := make([]showtime.Cinema, 0, len(cinemas))
	for _, c := range cinemas {
		out = append(out, showtime.Cinema{
			CinemaID: string(c.CinemaID),
			Name:     c.CinemaName,
			Address:  c.Address,
		})
	}
	return out
}
