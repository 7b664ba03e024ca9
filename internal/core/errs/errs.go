package errs

import (
	"errors"
	"net/http"
)

var (
	ErrMissingCredential    = errors.New("missing api key")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrBackendConnectFailed = errors.New("backend connect failed")
	ErrBackendStream        = errors.New("backend stream error")
	ErrSynthesisFailed      = errors.New("synthesis failed")
	ErrDecode               = errors.New("malformed message")
)

// HTTPStatus maps an error to the status an HTTP endpoint should answer with.
// Caller input problems are 400, everything else is treated as a backend fault.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingCredential),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
