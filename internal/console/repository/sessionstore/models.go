package sessionstore

import "errors"

// Keys a browser profile keeps between page loads.
const (
	TokenKey = "token"
	UserKey  = "user"
)

var ErrNotFound = errors.New("session entry not found")
