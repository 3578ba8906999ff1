package database

import (
	"context"
	"database/sql"
	"fmt"

	"showtime_alert_bot/internal/domain/alert"
)

// Custom errors specific to alert repository
var ErrAlertNotFound = fmt.Errorf("alert not found")

const alertColumns = `id, owner_id, film_id, theater_id, cinema_id, film_title, theater_name, player_id, created_at`

type PostgresAlertRepository struct {
	db *sql.DB
}

func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{db: db}
}

func (r *PostgresAlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	query := `INSERT INTO alerts (owner_id, film_id, theater_id, cinema_id, film_title, theater_name, player_id)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		a.OwnerID, a.FilmID, a.TheaterID, a.CinemaID, a.FilmTitle, a.TheaterName, a.PlayerID,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating alert: %w", err)
	}
	return nil
}

func (r *PostgresAlertRepository) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	a := &alert.Alert{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.OwnerID, &a.FilmID, &a.TheaterID, &a.CinemaID,
		&a.FilmTitle, &a.TheaterName, &a.PlayerID, &a.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("error getting alert by ID: %w", err)
	}
	return a, nil
}

// ListAll returns every alert in insertion order.
func (r *PostgresAlertRepository) ListAll(ctx context.Context) ([]*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// ListByOwner returns an owner's alerts, newest first.
func (r *PostgresAlertRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts by owner: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (r *PostgresAlertRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting alert %d: %w", id, err)
	}
	return nil
}

func (r *PostgresAlertRepository) DeleteOwned(ctx context.Context, id int64, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("error deleting alert %d for owner %d: %w", id, ownerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading deleted rows for alert %d: %w", id, err)
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// Helper to scan multiple rows
func scanAlerts(rows *sql.Rows) ([]*alert.Alert, error) {
	alerts := make([]*alert.Alert, 0)
	for rows.Next() {
		a := &alert.Alert{}
		if err := rows.Scan(
			&a.ID, &a.OwnerID, &a.FilmID, &a.TheaterID, &a.CinemaID,
			&a.FilmTitle, &a.TheaterName, &a.PlayerID, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning alert row: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return alerts, nil
}
