package movieglu

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is wrapped by a ProviderError when a body exceeds the read limit.
var ErrResponseTooLarge = errors.New("response too large")

// ProviderError reports a failed or unusable response from MovieGlu.
// StatusCode is 0 when no response was received.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("movieglu %s: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("movieglu %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("movieglu %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
