package tokenstore

import "errors"

var (
	// ErrIncompletePair is returned by Save when either token is empty.
	ErrIncompletePair = errors.New("token pair must carry both access and refresh tokens")
	// ErrUnknownDriver is returned for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown token store driver")
	// ErrInvalidKey is returned when the configured encryption key cannot be decoded.
	ErrInvalidKey = errors.New("invalid token encryption key")

	ErrSaveFailed  = errors.New("failed to save token pair")
	ErrLoadFailed  = errors.New("failed to load token pair")
	ErrClearFailed = errors.New("failed to clear token pair")
)
