package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"showtime_alert_bot/internal/domain/theater"

	"github.com/lib/pq"
)

// Custom errors
var ErrTheaterNotFound = fmt.Errorf("theater not found")

const uniqueViolation = "23505"

type PostgresTheaterRepository struct {
	db *sql.DB
}

func NewPostgresTheaterRepository(db *sql.DB) *PostgresTheaterRepository {
	return &PostgresTheaterRepository{db: db}
}

// Ensure looks the theater up by its provider code and inserts it when missing.
// A concurrent insert of the same code loses on the unique constraint and re-reads the winner's row.
func (r *PostgresTheaterRepository) Ensure(ctx context.Context, cinemaID string, name string) (*theater.Theater, error) {
	existing, err := r.GetByCinemaID(ctx, cinemaID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrTheaterNotFound) {
		return nil, err
	}

	query := `INSERT INTO theaters (cinema_id, name)
               VALUES ($1, $2)
               RETURNING id, cinema_id, name, created_at`
	t := &theater.Theater{}
	err = r.db.QueryRowContext(ctx, query, cinemaID, name).Scan(&t.ID, &t.CinemaID, &t.Name, &t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return r.GetByCinemaID(ctx, cinemaID)
		}
		return nil, fmt.Errorf("error creating theater: %w", err)
	}
	return t, nil
}

func (r *PostgresTheaterRepository) GetByID(ctx context.Context, id int64) (*theater.Theater, error) {
	query := `SELECT id, cinema_id, name, created_at FROM theaters WHERE id = $1`
	t := &theater.Theater{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.CinemaID, &t.Name, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTheaterNotFound
		}
		return nil, fmt.Errorf("error getting theater by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTheaterRepository) GetByCinemaID(ctx context.Context, cinemaID string) (*theater.Theater, error) {
	query := `SELECT id, cinema_id, name, created_at FROM theaters WHERE cinema_id = $1`
	t := &theater.Theater{}
	err := r.db.QueryRowContext(ctx, query, cinemaID).Scan(&t.ID, &t.CinemaID, &t.Name, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTheaterNotFound
		}
		return nil, fmt.Errorf("error getting theater by cinema ID: %w", err)
	}
	return t, nil
}
