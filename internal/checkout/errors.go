package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when no valid session is present at a
	// protected operation.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrEmptyCart is returned when checkout is attempted with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrBusy is returned for a re-entrant checkout attempt while a remote
	// request is already in flight.
	ErrBusy = errors.New("checkout already in progress")

	// ErrNoPendingOrder is returned when payment confirmation is attempted
	// without a matching order awaiting payment.
	ErrNoPendingOrder = errors.New("no matching order awaiting payment")

	// ErrValidationFailed marks a malformed order payload caught before
	// transmission.
	ErrValidationFailed = errors.New("order payload validation failed")
)

// RemoteRejectedError reports a 4xx from the order store with the reason the
// store gave.
type RemoteRejectedError struct {
	Status int
	Reason string
}

func (e RemoteRejectedError) Error() string {
	return fmt.Sprintf("order store rejected request (%d): %s", e.Status, e.Reason)
}

// RemoteUnavailableError covers network failures, timeouts and 5xx responses.
type RemoteUnavailableError struct {
	Status int
	Err    error
}

func (e RemoteUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order store unavailable: %v", e.Err)
	}
	return fmt.Sprintf("order store unavailable (%d)", e.Status)
}

func (e RemoteUnavailableError) Unwrap() error {
	return e.Err
}
