// Package apperr defines the typed failures returned by the services and
// translated to client responses by the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	InvalidRequest
	Unauthorized
	NotFound
	Conflict
	InsufficientStock
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidRequest:
		return "invalid_request"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InsufficientStock:
		return "insufficient_stock"
	case Unavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a failure with a kind and a message that is safe to show to clients.
// Err keeps the underlying cause for logs.
type Error struct {
	Kind      Kind
	Msg       string
	ProductID string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Stock reports an InsufficientStock failure for the given product.
func Stock(productID, name string) *Error {
	return &Error{
		Kind:      InsufficientStock,
		Msg:       fmt.Sprintf("insufficient stock for product %s", name),
		ProductID: productID,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
