package api

import (
	"errors"
	"fmt"
)

// Domain error kinds. Services recover validation and credential failures
// into one of these; handlers map them to transport status codes with
// errors.Is. Anything else is treated as an infrastructure fault.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrValidation      = errors.New("invalid input")
	ErrMissingToken    = errors.New("authorization token required")
	ErrTokenInvalid    = errors.New("token is not valid")
	ErrTokenExpired    = errors.New("token has expired")
	ErrInternal        = errors.New("internal server error")
)

// ErrInvalidRole is a validation failure; errors.Is(err, ErrValidation) also
// holds for it.
var ErrInvalidRole = fmt.Errorf("%w: invalid role specified", ErrValidation)
