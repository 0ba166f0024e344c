package shared

import "errors"

// Sentinels shared by the feature packages. httpx.RespondError and the page
// handlers translate them into status codes and flash messages.
var (
	// ErrNotFound is wrapped when the backend has no record for an id.
	ErrNotFound = errors.New("record not found")
	// ErrNotImplemented marks actions the backend exposes no endpoint for
	// (order status changes, supplier deletion).
	ErrNotImplemented = errors.New("action not implemented by backend")
	// ErrSessionMissing means the session middleware did not run.
	ErrSessionMissing = errors.New("session: not loaded")
	// ErrCSRFTokenMissing is returned when no token was posted or none was issued.
	ErrCSRFTokenMissing = errors.New("csrf: token missing")
	// ErrCSRFTokenMismatch is returned when the posted token is not the session's.
	ErrCSRFTokenMismatch = errors.New("csrf: token mismatch")
)
