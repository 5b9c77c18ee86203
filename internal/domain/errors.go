package domain

import "errors"

var (
	// ErrMissingCredentials signals a source configured without its API
	// credentials.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrBadStatus signals a non-2xx response from an upstream source.
	ErrBadStatus = errors.New("bad upstream status")
)
