package push

import "context"

// Sender defines an interface for delivering a push message to one device.
// This keeps the checker independent of the push provider's API.
type Sender interface {
	Send(ctx context.Context, playerID, title, body string) error
}
