package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"showtime_alert_bot/internal/app"
	"showtime_alert_bot/internal/domain/alert"
	"showtime_alert_bot/internal/domain/showtime"
	"showtime_alert_bot/internal/domain/theater"
)

const deleteAlertCallbackPrefix = "del_alert_"

// alertArgs is the parsed form of "/alert <cinema_id> <film_id> <player_id> [title...]".
type alertArgs struct {
	CinemaID  string
	FilmID    string
	PlayerID  string
	FilmTitle string
}

func parseAlertArgs(args []string) (alertArgs, error) {
	if len(args) < 3 {
		return alertArgs{}, fmt.Errorf("expected at least 3 arguments, got %d", len(args))
	}
	return alertArgs{
		CinemaID:  args[0],
		FilmID:    args[1],
		PlayerID:  args[2],
		FilmTitle: strings.Join(args[3:], " "),
	}, nil
}

func parseCoordinates(args []string) (lat, lng float64, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	if lat, err = strconv.ParseFloat(args[0], 64); err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", args[0], err)
	}
	if lng, err = strconv.ParseFloat(args[1], 64); err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", args[1], err)
	}
	return lat, lng, nil
}

func deleteAlertCallbackData(alertID int64) string {
	return deleteAlertCallbackPrefix + strconv.FormatInt(alertID, 10)
}

// parseDeleteAlertCallback extracts the alert id from callback data like "del_alert_42".
func parseDeleteAlertCallback(data string) (int64, bool) {
	rest, ok := strings.CutPrefix(data, deleteAlertCallbackPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formatTheaters(theaters []*theater.Theater) string {
	if len(theaters) == 0 {
		return "No cinemas found near that location."
	}
	var b strings.Builder
	b.WriteString("Cinemas nearby:\n")
	for _, t := range theaters {
		fmt.Fprintf(&b, "%s (cinema id: %s)\n", t.Name, t.CinemaID)
	}
	return b.String()
}

func formatShowtimes(cinemaID string, films []showtime.Film) string {
	if len(films) == 0 {
		return fmt.Sprintf("No showtimes listed today for cinema %s.", cinemaID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Today at cinema %s:\n", cinemaID)
	for _, f := range films {
		fmt.Fprintf(&b, "%s (film id: %s): %s\n", f.Title, f.ID, strings.Join(f.Times, ", "))
	}
	return b.String()
}

func formatAlerts(alerts []*alert.Alert) string {
	var b strings.Builder
	b.WriteString("Your alerts:\n")
	for _, a := range alerts {
		fmt.Fprintf(&b, "#%d %s at %s (since %s)\n", a.ID, a.FilmTitle, a.TheaterName, a.CreatedAt.Format(showtime.DateLayout))
	}
	return b.String()
}

func formatSummary(s *app.RunSummary) string {
	return fmt.Sprintf(
		"Check %s for %s: %d alerts across %d venues, %d matched, %d notified, %d retired, %d failed (%s).",
		s.RunID, s.Date, s.Alerts, s.Venues, s.Matched, s.Notified, s.Retired, s.Failed, s.Duration.Round(time.Millisecond),
	)
}
