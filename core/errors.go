package core

import (
	"errors"

	"dualpane/protocols"
)

var (
	ErrUserCancelled      = errors.New("cancelled by user")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrPathTooLong        = errors.New("path too long")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Kind is the class of failure reported to the caller for display.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindAlreadyExists
	KindUserCancelled
	KindResourceExhausted
	KindStorageFailure
	KindInvalidOperation
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindUserCancelled:
		return "user_cancelled"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindInvalidOperation:
		return "invalid_operation"
	default:
		return "storage_failure"
	}
}

// KindOf classifies err. Unrecognised volume errors are storage failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUserCancelled):
		return KindUserCancelled
	case errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrPathTooLong):
		return KindInvalidOperation
	case errors.Is(err, protocols.ErrResourceExhausted):
		return KindResourceExhausted
	case errors.Is(err, protocols.ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, protocols.ErrNotFound):
		return KindNotFound
	default:
		return KindStorageFailure
	}
}
