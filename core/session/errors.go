package session

import "errors"

var (
	// ErrSessionEnded is returned when a refresh failed and the session was
	// torn down. The user has to authenticate again.
	ErrSessionEnded = errors.New("session ended, re-authentication required")
	// ErrNoRefreshToken is returned alongside ErrSessionEnded when no refresh token was stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMalformedTokenResponse is returned when the API answers without a complete token pair.
	ErrMalformedTokenResponse = errors.New("malformed token response")
	// ErrInvalidLevel is returned by UpdateLevel for an unknown level.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrRestoreIncomplete is returned by Restore when it gave up before reaching
	// a definitive answer. Stored tokens are kept.
	ErrRestoreIncomplete = errors.New("session restore did not complete")

	ErrSaveTokens  = errors.New("failed to save tokens")
	ErrClearTokens = errors.New("failed to clear tokens")
	ErrLoadTokens  = errors.New("failed to load tokens")
)
