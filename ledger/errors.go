package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrSoldOut             = errors.New("sold out")
	ErrUnauthorized        = errors.New("unauthorized")
)

// Error is a rejected ledger operation. It unwraps to one of the Err* kinds.
type Error struct {
	Kind   error
	Entity string
	ID     uint64
	Reason string
}

func (e *Error) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s %d: %s", e.Kind, e.Entity, e.ID, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func eventError(kind error, id uint64, reason string) *Error {
	return &Error{Kind: kind, Entity: "event", ID: id, Reason: reason}
}

func ticketError(kind error, id uint64, reason string) *Error {
	return &Error{Kind: kind, Entity: "ticket", ID: id, Reason: reason}
}
