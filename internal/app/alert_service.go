package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"showtime_alert_bot/internal/domain/alert"
	"showtime_alert_bot/internal/domain/showtime"
	"showtime_alert_bot/internal/domain/theater"
	"showtime_alert_bot/internal/infra/clock"
	idb "showtime_alert_bot/internal/infra/database" // For ErrAlertNotFound, ErrTheaterNotFound
)

// Custom application-level errors for alert service
var ErrNotAlertOwner = fmt.Errorf("alert belongs to another user")
var ErrUnknownTheater = fmt.Errorf("theater is unknown, search for it first")
var ErrInvalidAlert = fmt.Errorf("invalid alert")

type AlertService struct {
	alertRepo   alert.Repository
	theaterRepo theater.Repository
	provider    showtime.Provider
	clock       clock.Clock
	location    *time.Location
}

func NewAlertService(ar alert.Repository, tr theater.Repository, p showtime.Provider, c clock.Clock, loc *time.Location) *AlertService {
	if loc == nil {
		loc = time.Local
	}
	return &AlertService{
		alertRepo:   ar,
		theaterRepo: tr,
		provider:    p,
		clock:       c,
		location:    loc,
	}
}

// CreateAlertInput carries what a user supplies when subscribing.
type CreateAlertInput struct {
	OwnerID   int64
	CinemaID  string
	FilmID    string
	FilmTitle string
	PlayerID  string
}

// CreateAlert subscribes a user to a film at a theater the bot already knows.
func (s *AlertService) CreateAlert(ctx context.Context, in CreateAlertInput) (*alert.Alert, error) {
	in.CinemaID = strings.TrimSpace(in.CinemaID)
	in.FilmID = strings.TrimSpace(in.FilmID)
	in.PlayerID = strings.TrimSpace(in.PlayerID)
	in.FilmTitle = strings.TrimSpace(in.FilmTitle)
	switch {
	case in.CinemaID == "":
		return nil, fmt.Errorf("%w: cinema id is required", ErrInvalidAlert)
	case in.FilmID == "":
		return nil, fmt.Errorf("%w: film id is required", ErrInvalidAlert)
	case in.PlayerID == "":
		return nil, fmt.Errorf("%w: push player id is required", ErrInvalidAlert)
	}
	if in.FilmTitle == "" {
		in.FilmTitle = in.FilmID
	}

	th, err := s.theaterRepo.GetByCinemaID(ctx, in.CinemaID)
	if err != nil {
		if errors.Is(err, idb.ErrTheaterNotFound) {
			return nil, ErrUnknownTheater
		}
		return nil, fmt.Errorf("failed to look up theater: %w", err)
	}

	newAlert := &alert.Alert{
		OwnerID:     in.OwnerID,
		FilmID:      in.FilmID,
		TheaterID:   th.ID,
		CinemaID:    th.CinemaID,
		FilmTitle:   in.FilmTitle,
		TheaterName: th.Name,
		PlayerID:    in.PlayerID,
	}
	if err := s.alertRepo.Create(ctx, newAlert); err != nil {
		return nil, fmt.Errorf("failed to create alert in repository: %w", err)
	}
	return newAlert, nil
}

// ListAlerts returns the user's alerts, newest first.
func (s *AlertService) ListAlerts(ctx context.Context, ownerID int64) ([]*alert.Alert, error) {
	alerts, err := s.alertRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// DeleteAlert removes one of the user's alerts.
func (s *AlertService) DeleteAlert(ctx context.Context, ownerID int64, alertID int64) error {
	existing, err := s.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, idb.ErrAlertNotFound) {
			return idb.ErrAlertNotFound
		}
		return fmt.Errorf("failed to get alert for removal: %w", err)
	}
	if existing.OwnerID != ownerID {
		return ErrNotAlertOwner
	}
	if err := s.alertRepo.DeleteOwned(ctx, alertID, ownerID); err != nil {
		if errors.Is(err, idb.ErrAlertNotFound) {
			return idb.ErrAlertNotFound
		}
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

// FindTheaters searches cinemas near a coordinate and records each one so alerts can point at it.
func (s *AlertService) FindTheaters(ctx context.Context, latitude, longitude float64) ([]*theater.Theater, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("coordinates out of range: %f, %f", latitude, longitude)
	}
	cinemas, err := s.provider.FetchCinemasNearby(ctx, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to search cinemas: %w", err)
	}

	theaters := make([]*theater.Theater, 0, len(cinemas))
	for _, c := range cinemas {
		if c.CinemaID == "" {
			continue
		}
		th, err := s.theaterRepo.Ensure(ctx, c.CinemaID, c.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to store theater %s: %w", c.CinemaID, err)
		}
		theaters = append(theaters, th)
	}
	return theaters, nil
}

// TodaysShowtimes returns the current listing for a cinema.
func (s *AlertService) TodaysShowtimes(ctx context.Context, cinemaID string) ([]showtime.Film, error) {
	cinemaID = strings.TrimSpace(cinemaID)
	if cinemaID == "" {
		return nil, fmt.Errorf("%w: cinema id is required", ErrInvalidAlert)
	}
	today := s.clock.Now().In(s.location)
	films, err := s.provider.FetchShowtimes(ctx, cinemaID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch showtimes: %w", err)
	}
	return films, nil
}
