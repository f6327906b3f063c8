package api

import "errors"

// Sentinel errors for the crew API error taxonomy. Anything not wrapped in
// one of these is a network-class failure.
var (
	// ErrNotFound indicates the requested resource id is unknown to the server.
	ErrNotFound = errors.New("crew api: not found")
	// ErrUnauthorized indicates missing or expired credentials.
	ErrUnauthorized = errors.New("crew api: unauthorized")
)
