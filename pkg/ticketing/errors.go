package ticketing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Platform when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTicketNotFound is returned when an operation targets a channel that is not a ticket.
	ErrTicketNotFound = errors.New("channel is not a ticket")

	// ErrUnauthorized is returned when the actor may not manage the ticket.
	ErrUnauthorized = errors.New("not authorized to manage this ticket")

	// ErrPlatformUnavailable matches every PlatformError.
	ErrPlatformUnavailable = errors.New("platform unavailable")

	// ErrCategoryNotFound is returned when no category has the given label.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCategoryExists is returned when a category with the label already exists.
	ErrCategoryExists = errors.New("category already exists")

	// ErrNoSupportChannel is returned when the guild has no support channel configured or named support.
	ErrNoSupportChannel = errors.New("no support channel")
)

// AlreadyClaimedError is returned when claiming a ticket that is already claimed.
type AlreadyClaimedError struct {
	// ClaimedBy is the user holding the ticket.
	ClaimedBy string
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("ticket already claimed by %s", e.ClaimedBy)
}

// DuplicateTicketError is returned when a user who already has an open ticket tries to open another one.
type DuplicateTicketError struct {
	// ChannelID is the user's open ticket.
	ChannelID string
}

func (e *DuplicateTicketError) Error() string {
	return fmt.Sprintf("user already has an open ticket in channel %s", e.ChannelID)
}

// PlatformError is returned when a platform call needed by the operation failed. The operation is aborted and not
// retried.
type PlatformError struct {
	// Op is the call that failed.
	Op string

	// Err is the cause.
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPlatformUnavailable, e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPlatformUnavailable) hold for every PlatformError.
func (e *PlatformError) Is(target error) bool {
	return target == ErrPlatformUnavailable
}

func platformError(op string, err error) error {
	platformFailures.WithLabelValues(op).Inc()
	return &PlatformError{Op: op, Err: err}
}
