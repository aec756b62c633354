package domain

import (
	"errors"
	"fmt"
)

// State sentinels. Services wrap them in a StateError carrying a message
// suitable for the member who triggered the operation.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoActiveHand        = errors.New("no active hand")
	ErrHandInProgress      = errors.New("hand already in progress")
	ErrWagerPending        = errors.New("wager already waiting for a reply")
)

// ErrPrivilegeDenied is wrapped by privilege directories when the platform
// refuses a role change.
var ErrPrivilegeDenied = errors.New("privilege change denied")

// ValidationError rejects input before anything is mutated
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError formats a ValidationError
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StateError rejects an operation the current state does not allow. Nothing
// is mutated.
type StateError struct {
	Reason string
	Err    error
}

func (e *StateError) Error() string {
	return e.Reason
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// NewStateError wraps sentinel with a user-facing reason
func NewStateError(sentinel error, format string, args ...any) error {
	return &StateError{Reason: fmt.Sprintf(format, args...), Err: sentinel}
}

// InsufficientBalanceError carries the balance that fell short so callers can
// render it with the guild's currency symbol.
type InsufficientBalanceError struct {
	Balance int64
	Needed  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Balance, e.Needed)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// IsUserFacing reports errors whose message can be shown to a member as is
func IsUserFacing(err error) bool {
	var validationErr *ValidationError
	var stateErr *StateError
	var balanceErr *InsufficientBalanceError
	return errors.As(err, &validationErr) || errors.As(err, &stateErr) || errors.As(err, &balanceErr)
}
