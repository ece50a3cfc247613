// Package errors defines the domain error taxonomy shared by the services
// and the HTTP boundary.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DomainError for the boundary layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInsufficientFunds
	KindForbidden
	KindAlreadyCancelled
	KindAlreadyWinner
	KindInvalidArgument
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindForbidden:
		return "forbidden"
	case KindAlreadyCancelled:
		return "already_cancelled"
	case KindAlreadyWinner:
		return "already_winner"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	}
	return "internal"
}

// DomainError is a typed failure raised where a rule is violated.
// Two DomainErrors match under errors.Is when their codes match, so a
// sentinel with extra detail attached still compares equal to the sentinel.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Withf returns a copy of e with a more specific message.
func (e *DomainError) Withf(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// Wrap returns a copy of e carrying cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Err:     cause,
	}
}

// KindOf reports the kind of the first DomainError in err's chain.
// Anything else is internal.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Internal wraps an unexpected failure.
func Internal(err error) *DomainError {
	return ErrInternal.Wrap(err)
}

var ErrInternal = &DomainError{
	Kind:    KindInternal,
	Code:    "INTERNAL",
	Message: "internal error",
}
