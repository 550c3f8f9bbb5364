package auth

import "errors"

// ErrUnknownUser is returned when a username is not on the allow-list.
var ErrUnknownUser = errors.New("unknown user")
