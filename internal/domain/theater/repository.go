package theater

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Theater entities.
type Repository interface {
	// Ensure returns the theater with the given provider code, creating it if needed.
	// Repeated calls with the same cinemaID return the same row.
	Ensure(ctx context.Context, cinemaID string, name string) (*Theater, error)
	GetByID(ctx context.Context, id int64) (*Theater, error)
	GetByCinemaID(ctx context.Context, cinemaID string) (*Theater, error)
}
