package testutil

import (
	"net/http"
	"time"

	"formbridge/pkg/requestcontext"
)

// WithUserID stamps an authenticated user ID onto the request context,
// simulating what RequireAuth does for handler tests that bypass the
// middleware chain.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithRequestTime pins the request-scoped clock, so assertions on stored
// timestamps are exact.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
