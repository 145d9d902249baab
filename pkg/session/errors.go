package session

import "errors"

// Error kinds surfaced by the session manager and OAuth bridge. Handlers map
// these to HTTP statuses with errors.Is; internal detail stays out of
// client-visible messages.
var (
	// ErrUnauthenticated means no usable credential was presented: both
	// tokens absent, the access token invalid or expired with no refresh
	// fallback, or the token subject unknown.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidRefreshToken means the refresh token is unknown or was
	// already rotated away.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrProviderUnavailable means the identity provider could not be
	// reached (network error or timeout). Retryable by the client.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrProviderRejected means the provider answered with a non-success
	// status for the supplied token.
	ErrProviderRejected = errors.New("identity provider rejected token")

	// ErrMissingEmail means the provider payload carried no email field.
	ErrMissingEmail = errors.New("email not provided by identity provider")

	// Store error kinds.
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)
