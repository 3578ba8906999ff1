package alert

import "context"

// Repository defines the operations for persisting and retrieving alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id int64) (*Alert, error)
	ListAll(ctx context.Context) ([]*Alert, error) // Full scan for the showtime checker
	ListByOwner(ctx context.Context, ownerID int64) ([]*Alert, error)
	// Delete removes an alert. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	// DeleteOwned removes an alert only if it belongs to ownerID.
	DeleteOwned(ctx context.Context, id int64, ownerID int64) error
}
