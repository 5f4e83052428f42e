package testutil

import (
	"net/http"

	"canopy/pkg/domain"
	"canopy/pkg/requestcontext"
)

// WithCaller stamps a caller principal onto the request context, simulating
// what the auth middleware does for an authenticated request.
func WithCaller(req *http.Request, caller domain.UserID) *http.Request {
	return req.WithContext(requestcontext.WithCallerID(req.Context(), caller))
}

// WithHeight stamps a ledger height onto the request context, simulating the
// height middleware.
func WithHeight(req *http.Request, h domain.Height) *http.Request {
	return req.WithContext(requestcontext.WithHeight(req.Context(), h))
}

// AsCall stamps both caller and height, the typical state of an authenticated
// mutating request.
func AsCall(req *http.Request, caller domain.UserID, h domain.Height) *http.Request {
	return WithHeight(WithCaller(req, caller), h)
}
