package webclient

import "errors"

var (
	// ErrNilRequest is returned by Do when called without a request.
	ErrNilRequest = errors.New("request cannot be nil")

	// ErrBodyTooLarge is returned when a response exceeds Config.MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrMethodNotSupported is returned by backends that only implement GET.
	ErrMethodNotSupported = errors.New("method not supported by backend")
)
